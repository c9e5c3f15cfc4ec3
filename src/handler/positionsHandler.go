package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tradejournal/src/auth"
	"tradejournal/src/contracts"
	"tradejournal/src/model"
	"tradejournal/src/repository"
	"tradejournal/src/snapshot"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

type positionSearcher interface {
	Search(ctx context.Context, options repository.PositionSearchOptions) ([]model.Position, error)
	FindByID(ctx context.Context, id uint) (*model.Position, error)
	Create(ctx context.Context, position *model.Position) error
	Close(ctx context.Context, id uint) error
}

type quoteReader interface {
	GetMap(ctx context.Context, symbols []string) (map[string]float64, error)
}

type specResolver interface {
	ResolveForUser(ctx context.Context, userID uint, symbol string) (*model.ContractSpecification, error)
}

// positionError surfaces a snapshot domain error for one malformed stored
// position without aborting the rest of the listing.
type positionError struct {
	PositionID uint   `json:"position_id"`
	Error      string `json:"error"`
}

type positionListResponse struct {
	Positions []snapshot.Snapshot `json:"positions"`
	Errors    []positionError     `json:"errors,omitempty"`
}

// SearchPositionsHandler lists the authenticated user's positions enriched
// with live valuation snapshots. Positions without a cached quote fall back
// to their opening price and show zero unrealized P&L.
func SearchPositionsHandler(repo positionSearcher, quotes quoteReader, specs specResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		options := repository.PositionSearchOptions{UserID: user.ID}

		if assetParam := r.URL.Query().Get("assetType"); assetParam != "" {
			switch assetParam {
			case model.AssetTypeStock, model.AssetTypeOption, model.AssetTypeCrypto, model.AssetTypeFutures:
				options.AssetType = &assetParam
			default:
				http.Error(w, "invalid assetType", http.StatusBadRequest)
				return
			}
		}
		if statusParam := r.URL.Query().Get("status"); statusParam != "" {
			options.Status = &statusParam
		}
		if symbolParam := r.URL.Query().Get("symbol"); symbolParam != "" {
			options.Symbol = &symbolParam
		}

		page := 1
		if pageParam := r.URL.Query().Get("page"); pageParam != "" {
			parsedPage, err := strconv.Atoi(pageParam)
			if err != nil || parsedPage <= 0 {
				http.Error(w, "invalid page", http.StatusBadRequest)
				return
			}
			page = parsedPage
		}

		pageSize := 50
		if sizeParam := r.URL.Query().Get("pageSize"); sizeParam != "" {
			parsedSize, err := strconv.Atoi(sizeParam)
			if err != nil || parsedSize <= 0 {
				http.Error(w, "invalid pageSize", http.StatusBadRequest)
				return
			}
			pageSize = parsedSize
		}

		options.Limit = pageSize
		options.Offset = (page - 1) * pageSize

		positions, err := repo.Search(r.Context(), options)
		if err != nil {
			logger.WithError(err).Error("failed to search positions")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		symbols := make([]string, 0, len(positions))
		for _, p := range positions {
			symbols = append(symbols, p.Symbol)
		}

		quoteMap, err := quotes.GetMap(r.Context(), symbols)
		if err != nil {
			// Degraded mode: render positions without live prices rather than
			// failing the whole page.
			logger.WithError(err).Warn("quote lookup failed, rendering without live prices")
			quoteMap = map[string]float64{}
		}

		response := positionListResponse{Positions: make([]snapshot.Snapshot, 0, len(positions))}
		for _, p := range positions {
			s, err := buildSnapshot(r.Context(), p, quoteMap, specs, user.ID)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"position_id": p.ID,
					"asset_type":  p.AssetType,
				}).WithError(err).Error("malformed stored position")
				response.Errors = append(response.Errors, positionError{PositionID: p.ID, Error: err.Error()})
				continue
			}
			response.Positions = append(response.Positions, *s)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.WithError(err).Error("failed to encode position list response")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
}

// GetPositionHandler returns a single position snapshot. Malformed stored
// positions yield 422 so the client can surface the data problem.
func GetPositionHandler(repo positionSearcher, quotes quoteReader, specs specResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid position id", http.StatusBadRequest)
			return
		}

		position, err := repo.FindByID(r.Context(), uint(id))
		if err != nil {
			logger.WithError(err).Error("failed to fetch position")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if position == nil || position.UserID != user.ID {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}

		quoteMap, err := quotes.GetMap(r.Context(), []string{position.Symbol})
		if err != nil {
			logger.WithError(err).Warn("quote lookup failed, rendering without live price")
			quoteMap = map[string]float64{}
		}

		s, err := buildSnapshot(r.Context(), *position, quoteMap, specs, user.ID)
		if err != nil {
			logger.WithField("position_id", position.ID).
				WithError(err).Error("malformed stored position")
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s); err != nil {
			logger.WithError(err).Error("failed to encode position response")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
}

func buildSnapshot(
	ctx context.Context,
	p model.Position,
	quoteMap map[string]float64,
	specs specResolver,
	userID uint,
) (*snapshot.Snapshot, error) {

	var livePrice *float64
	if price, ok := quoteMap[p.Symbol]; ok {
		livePrice = &price
	}

	var spec *model.ContractSpecification
	if p.AssetType == model.AssetTypeFutures && specs != nil {
		root := p.Symbol
		if parsed, ok := contracts.ParseContractSymbol(p.Symbol); ok {
			root = parsed.Base
		}
		resolved, err := specs.ResolveForUser(ctx, userID, root)
		if err != nil {
			logger.WithField("symbol", root).
				WithError(err).Warn("contract spec lookup failed, using position overrides only")
		} else {
			spec = resolved
		}
	}

	return snapshot.Build(p, livePrice, spec)
}

type createPositionPayload struct {
	AssetType           string      `json:"asset_type"`
	Symbol              string      `json:"symbol"`
	Side                string      `json:"side"`
	Quantity            float64     `json:"quantity"`
	AverageOpeningPrice float64     `json:"average_opening_price"`
	TotalCostBasis      float64     `json:"total_cost_basis"`
	QuantityMultiplier  float64     `json:"quantity_multiplier"`
	OptionType          *string     `json:"option_type,omitempty"`
	StrikePrice         *float64    `json:"strike_price,omitempty"`
	ExpirationDate      *string     `json:"expiration_date,omitempty"`
	StrategyName        *string     `json:"strategy_name,omitempty"`
	ContractMonth       *string     `json:"contract_month,omitempty"`
	TickSize            *float64    `json:"tick_size,omitempty"`
	TickValue           *float64    `json:"tick_value,omitempty"`
	MarginRequirement   *float64    `json:"margin_requirement,omitempty"`
	Legs                []model.Leg `json:"legs,omitempty"`
	OpenedAt            *time.Time  `json:"opened_at,omitempty"`
}

// CreatePositionHandler opens a new position for the authenticated user.
func CreatePositionHandler(repo positionSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload createPositionPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid create position payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		if err := validateCreatePosition(payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		openedAt := time.Now()
		if payload.OpenedAt != nil {
			openedAt = *payload.OpenedAt
		}
		multiplier := payload.QuantityMultiplier
		if multiplier <= 0 {
			multiplier = 1
		}

		position := &model.Position{
			UserID:              user.ID,
			AssetType:           payload.AssetType,
			Symbol:              payload.Symbol,
			Side:                payload.Side,
			Quantity:            payload.Quantity,
			AverageOpeningPrice: payload.AverageOpeningPrice,
			TotalCostBasis:      payload.TotalCostBasis,
			Status:              model.PositionStatusOpen,
			QuantityMultiplier:  multiplier,
			OptionType:          payload.OptionType,
			StrikePrice:         payload.StrikePrice,
			ExpirationDate:      payload.ExpirationDate,
			StrategyName:        payload.StrategyName,
			ContractMonth:       payload.ContractMonth,
			TickSize:            payload.TickSize,
			TickValue:           payload.TickValue,
			MarginRequirement:   payload.MarginRequirement,
			Legs:                payload.Legs,
			OpenedAt:            openedAt,
		}

		if err := repo.Create(r.Context(), position); err != nil {
			logger.WithError(err).Error("failed to create position")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(position); err != nil {
			logger.WithError(err).Error("failed to encode created position")
		}
	}
}

// validateCreatePosition enforces at write time the invariants the snapshot
// builder will later rely on, so strict read-side errors stay rare.
func validateCreatePosition(payload createPositionPayload) error {
	if payload.Symbol == "" {
		return errBadRequest("symbol is required")
	}
	if payload.Side != model.SideLong && payload.Side != model.SideShort {
		return errBadRequest("side must be long or short")
	}

	switch payload.AssetType {
	case model.AssetTypeStock, model.AssetTypeCrypto:
		return nil
	case model.AssetTypeOption:
		if len(payload.Legs) > 0 {
			for _, leg := range payload.Legs {
				if leg.Direction != model.SideLong && leg.Direction != model.SideShort {
					return errBadRequest("leg direction must be long or short")
				}
				if leg.Quantity <= 0 || leg.StrikePrice <= 0 {
					return errBadRequest("leg quantity and strike must be positive")
				}
			}
			return nil
		}
		if payload.OptionType == nil || payload.StrikePrice == nil || payload.ExpirationDate == nil {
			return errBadRequest("option positions require option_type, strike_price and expiration_date")
		}
		return nil
	case model.AssetTypeFutures:
		if payload.ExpirationDate == nil && payload.ContractMonth == nil {
			if _, ok := contracts.ParseContractSymbol(payload.Symbol); !ok {
				return errBadRequest("futures positions require a contract month, an expiration date or a parseable symbol")
			}
		}
		return nil
	default:
		return errBadRequest("invalid asset_type")
	}
}

type errBadRequest string

func (e errBadRequest) Error() string { return string(e) }

// ClosePositionHandler marks a position closed; rows are never deleted.
func ClosePositionHandler(repo positionSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid position id", http.StatusBadRequest)
			return
		}

		position, err := repo.FindByID(r.Context(), uint(id))
		if err != nil {
			logger.WithError(err).Error("failed to fetch position for close")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if position == nil || position.UserID != user.ID {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}

		if err := repo.Close(r.Context(), uint(id)); err != nil {
			logger.WithError(err).Error("failed to close position")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DefaultPositionHandlers wires the handlers to the production repositories.
func DefaultPositionHandlers() (list, get, create, closer http.HandlerFunc) {
	positions := repository.NewPositionRepository()
	quotes := repository.NewQuoteRepository()
	specs := repository.NewContractSpecRepository()

	return SearchPositionsHandler(positions, quotes, specs),
		GetPositionHandler(positions, quotes, specs),
		CreatePositionHandler(positions),
		ClosePositionHandler(positions)
}
