package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"

	logger "github.com/sirupsen/logrus"
)

type specStore interface {
	ListActive(ctx context.Context, userID uint) ([]model.ContractSpecification, error)
	Upsert(ctx context.Context, spec *model.ContractSpecification) error
}

// ListContractSpecsHandler returns the specifications visible to the user:
// system defaults plus their own overrides.
func ListContractSpecsHandler(specs specStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		list, err := specs.ListActive(r.Context(), user.ID)
		if err != nil {
			logger.WithError(err).Error("failed to list contract specifications")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(list); err != nil {
			logger.WithError(err).Error("failed to encode contract specifications")
		}
	}
}

type upsertSpecPayload struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Exchange          string   `json:"exchange"`
	Multiplier        float64  `json:"multiplier"`
	TickSize          float64  `json:"tick_size"`
	TickValue         float64  `json:"tick_value"`
	InitialMargin     *float64 `json:"initial_margin,omitempty"`
	MaintenanceMargin *float64 `json:"maintenance_margin,omitempty"`
	ContractMonths    string   `json:"contract_months"`
	FeesPerContract   float64  `json:"fees_per_contract"`
}

// UpsertContractSpecHandler creates or replaces the user's override for one
// symbol. System defaults are never modified through this endpoint.
func UpsertContractSpecHandler(specs specStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload upsertSpecPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if payload.Symbol == "" {
			http.Error(w, "symbol is required", http.StatusBadRequest)
			return
		}
		if payload.Multiplier <= 0 || payload.TickSize <= 0 || payload.TickValue <= 0 {
			http.Error(w, "multiplier, tick_size and tick_value must be positive", http.StatusBadRequest)
			return
		}

		userID := user.ID
		spec := &model.ContractSpecification{
			UserID:            &userID,
			Symbol:            payload.Symbol,
			Name:              payload.Name,
			Exchange:          payload.Exchange,
			Multiplier:        payload.Multiplier,
			TickSize:          payload.TickSize,
			TickValue:         payload.TickValue,
			InitialMargin:     payload.InitialMargin,
			MaintenanceMargin: payload.MaintenanceMargin,
			ContractMonths:    payload.ContractMonths,
			FeesPerContract:   payload.FeesPerContract,
			IsActive:          true,
		}

		if err := specs.Upsert(r.Context(), spec); err != nil {
			logger.WithField("symbol", payload.Symbol).
				WithError(err).Error("failed to upsert contract specification")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(spec); err != nil {
			logger.WithError(err).Error("failed to encode contract specification")
		}
	}
}

// DefaultContractSpecHandlers wires the spec endpoints to the production
// repository.
func DefaultContractSpecHandlers() (list, upsert http.HandlerFunc) {
	specs := repository.NewContractSpecRepository()

	return ListContractSpecsHandler(specs), UpsertContractSpecHandler(specs)
}
