package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

type transactionReader interface {
	Create(ctx context.Context, tx *model.Transaction) error
	ListByPosition(ctx context.Context, userID uint, positionID uint) ([]model.Transaction, error)
	SumRealizedPL(ctx context.Context, userID uint) (decimal.Decimal, error)
}

type createTransactionPayload struct {
	PositionID *uint           `json:"position_id,omitempty"`
	Type       string          `json:"type"`
	AssetType  string          `json:"asset_type"`
	Symbol     string          `json:"symbol"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Fees       decimal.Decimal `json:"fees"`
	Amount     decimal.Decimal `json:"amount"`
	RealizedPL decimal.Decimal `json:"realized_pl"`
	ExecutedAt *time.Time      `json:"executed_at,omitempty"`
	Notes      string          `json:"notes"`
}

// CreateTransactionHandler books one manual transaction for the user.
func CreateTransactionHandler(transactions transactionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload createTransactionPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		switch payload.Type {
		case model.TransactionTypeBuy, model.TransactionTypeSell,
			model.TransactionTypeDeposit, model.TransactionTypeWithdrawal,
			model.TransactionTypeFee, model.TransactionTypeDividend:
		default:
			http.Error(w, "unknown transaction type", http.StatusBadRequest)
			return
		}

		executedAt := time.Now()
		if payload.ExecutedAt != nil {
			executedAt = *payload.ExecutedAt
		}

		tx := &model.Transaction{
			UserID:     user.ID,
			PositionID: payload.PositionID,
			Type:       payload.Type,
			AssetType:  payload.AssetType,
			Symbol:     payload.Symbol,
			Quantity:   payload.Quantity,
			Price:      payload.Price,
			Fees:       payload.Fees,
			Amount:     payload.Amount,
			RealizedPL: payload.RealizedPL,
			ExecutedAt: executedAt,
			Notes:      payload.Notes,
		}

		if err := transactions.Create(r.Context(), tx); err != nil {
			logger.WithError(err).Error("failed to create transaction")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(tx); err != nil {
			logger.WithError(err).Error("failed to encode transaction")
		}
	}
}

// ListPositionTransactionsHandler returns the fills booked against one of the
// user's positions, oldest first.
func ListPositionTransactionsHandler(transactions transactionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		positionID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid position id", http.StatusBadRequest)
			return
		}

		rows, err := transactions.ListByPosition(r.Context(), user.ID, uint(positionID))
		if err != nil {
			logger.WithError(err).Error("failed to list transactions")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			logger.WithError(err).Error("failed to encode transactions")
		}
	}
}

type realizedPLResponse struct {
	RealizedPL decimal.Decimal `json:"realized_pl"`
}

// RealizedPLHandler returns the user's lifetime realized P&L.
func RealizedPLHandler(transactions transactionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		total, err := transactions.SumRealizedPL(r.Context(), user.ID)
		if err != nil {
			logger.WithError(err).Error("failed to sum realized P&L")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(realizedPLResponse{RealizedPL: total}); err != nil {
			logger.WithError(err).Error("failed to encode realized P&L")
		}
	}
}

// DefaultTransactionHandlers wires the transaction endpoints to the
// production repository.
func DefaultTransactionHandlers() (create, listByPosition, realized http.HandlerFunc) {
	transactions := repository.NewTransactionRepository()

	return CreateTransactionHandler(transactions),
		ListPositionTransactionsHandler(transactions),
		RealizedPLHandler(transactions)
}
