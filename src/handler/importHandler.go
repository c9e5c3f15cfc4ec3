package handler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"tradejournal/src/auth"
	"tradejournal/src/contracts"
	"tradejournal/src/model"
	"tradejournal/src/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

type transactionWriter interface {
	CreateBatch(ctx context.Context, rows []model.Transaction) error
}

// importRowError reports one rejected CSV line by its physical file line
// number, header included, so users can find it in their broker export.
type importRowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importResponse struct {
	BatchID  string           `json:"batch_id"`
	Imported int              `json:"imported"`
	Skipped  []importRowError `json:"skipped,omitempty"`
}

// expected broker CSV columns, in order.
var importColumns = []string{"date", "type", "symbol", "quantity", "price", "fees"}

// ImportTransactionsHandler ingests a broker CSV export. Rows that cannot be
// parsed are reported back with their line number; the valid rows still land,
// all inside one database transaction tagged with a fresh batch id.
func ImportTransactionsHandler(transactions transactionWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		reader := csv.NewReader(r.Body)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true

		header, err := reader.Read()
		if err != nil {
			http.Error(w, "empty or unreadable CSV", http.StatusBadRequest)
			return
		}
		if err := validateImportHeader(header); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		batchID := uuid.NewString()
		response := importResponse{BatchID: batchID}

		var rows []model.Transaction
		line := 1
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			line++
			if err != nil {
				response.Skipped = append(response.Skipped, importRowError{Line: line, Error: "unparseable CSV row"})
				continue
			}

			tx, rowErr := parseImportRow(record, user.ID, batchID)
			if rowErr != "" {
				response.Skipped = append(response.Skipped, importRowError{Line: line, Error: rowErr})
				continue
			}
			rows = append(rows, tx)
		}

		if err := transactions.CreateBatch(r.Context(), rows); err != nil {
			logger.WithField("batch_id", batchID).
				WithError(err).Error("failed to persist import batch")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		response.Imported = len(rows)

		logger.WithFields(map[string]interface{}{
			"batch_id": batchID,
			"imported": response.Imported,
			"skipped":  len(response.Skipped),
			"user_id":  user.ID,
		}).Info("broker import finished")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.WithError(err).Error("failed to encode import response")
		}
	}
}

func validateImportHeader(header []string) error {
	if len(header) < len(importColumns) {
		return errBadRequest("CSV header must contain: " + strings.Join(importColumns, ","))
	}
	for i, want := range importColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return errBadRequest("CSV header must contain: " + strings.Join(importColumns, ","))
		}
	}
	return nil
}

// parseImportRow converts one CSV record into a transaction. The returned
// string is empty on success, otherwise a human-readable rejection reason.
func parseImportRow(record []string, userID uint, batchID string) (model.Transaction, string) {
	if len(record) < len(importColumns) {
		return model.Transaction{}, "too few columns"
	}

	executedAt, err := parseImportDate(strings.TrimSpace(record[0]))
	if err != nil {
		return model.Transaction{}, "invalid date"
	}

	txType := strings.ToLower(strings.TrimSpace(record[1]))
	switch txType {
	case model.TransactionTypeBuy, model.TransactionTypeSell,
		model.TransactionTypeDeposit, model.TransactionTypeWithdrawal,
		model.TransactionTypeFee, model.TransactionTypeDividend:
	default:
		return model.Transaction{}, "unknown transaction type"
	}

	symbol := strings.ToUpper(strings.TrimSpace(record[2]))

	quantity, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return model.Transaction{}, "invalid quantity"
	}
	price, err := decimal.NewFromString(strings.TrimSpace(record[4]))
	if err != nil {
		return model.Transaction{}, "invalid price"
	}
	fees, err := decimal.NewFromString(strings.TrimSpace(record[5]))
	if err != nil {
		return model.Transaction{}, "invalid fees"
	}

	// Classify the instrument from the symbol shape. Contract symbols like
	// ESH25 become futures rows; anything else defaults to stock. Brokers
	// exporting other asset types carry an explicit column we may consume
	// later, so misclassification here only affects display grouping.
	assetType := model.AssetTypeStock
	if _, ok := contracts.ParseContractSymbol(symbol); ok {
		assetType = model.AssetTypeFutures
	}

	amount := price.Mul(quantity).Neg().Sub(fees)
	if txType == model.TransactionTypeSell || txType == model.TransactionTypeDeposit ||
		txType == model.TransactionTypeDividend {
		amount = price.Mul(quantity).Sub(fees)
	}

	id := batchID
	return model.Transaction{
		UserID:        userID,
		Type:          txType,
		AssetType:     assetType,
		Symbol:        symbol,
		Quantity:      quantity,
		Price:         price,
		Fees:          fees,
		Amount:        amount,
		ImportBatchID: &id,
		ExecutedAt:    executedAt,
	}, ""
}

func parseImportDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "01/02/2006"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errBadRequest("unrecognized date format")
}

// DefaultImportHandler wires the import endpoint to the production repository.
func DefaultImportHandler() http.HandlerFunc {
	return ImportTransactionsHandler(repository.NewTransactionRepository())
}
