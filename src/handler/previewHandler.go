package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tradejournal/src/auth"
	"tradejournal/src/contracts"
	"tradejournal/src/model"
	"tradejournal/src/repository"
	"tradejournal/src/valuation"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

// contractPreview is a pre-trade what-if for a futures contract: notional,
// margin, leverage and fees for a hypothetical fill, before any position
// exists.
type contractPreview struct {
	Symbol            string  `json:"symbol"`
	ContractMonth     string  `json:"contract_month,omitempty"`
	ContractMonthName string  `json:"contract_month_name,omitempty"`
	ExpirationDate    string  `json:"expiration_date,omitempty"`
	Price             float64 `json:"price"`
	Quantity          float64 `json:"quantity"`
	valuation.Calculation
}

func buildContractPreview(
	symbol string,
	price float64,
	quantity float64,
	spec *model.ContractSpecification,
) contractPreview {

	preview := contractPreview{
		Symbol:   symbol,
		Price:    price,
		Quantity: quantity,
	}

	terms := valuation.ContractTerms{Multiplier: 1}
	if spec != nil {
		terms.Multiplier = spec.Multiplier
		terms.TickSize = spec.TickSize
		terms.TickValue = spec.TickValue
		terms.MarginPerLot = spec.InitialMargin
		terms.FeesPerContract = spec.FeesPerContract
	}
	preview.Calculation = valuation.Calculate(terms, price, quantity)

	if parsed, ok := contracts.ParseContractSymbol(symbol); ok {
		label := string(parsed.Code) + strconv.Itoa(parsed.Year%100)
		preview.ContractMonth = label
		if month, _, ok := contracts.MonthFromLabel(label); ok {
			preview.ContractMonthName = month.String()
		}
		if expiration, ok := contracts.ExpirationDate(label, parsed.Base); ok {
			preview.ExpirationDate = expiration
		}
	}

	return preview
}

// ContractPreviewHandler computes a pre-trade preview for a contract symbol.
// Query params: price (required), quantity (defaults to 1, negative = short).
func ContractPreviewHandler(specs specResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		symbol := chi.URLParam(r, "symbol")

		price, err := strconv.ParseFloat(r.URL.Query().Get("price"), 64)
		if err != nil || price < 0 {
			http.Error(w, "price must be a non-negative number", http.StatusBadRequest)
			return
		}

		quantity := 1.0
		if quantityParam := r.URL.Query().Get("quantity"); quantityParam != "" {
			quantity, err = strconv.ParseFloat(quantityParam, 64)
			if err != nil {
				http.Error(w, "invalid quantity", http.StatusBadRequest)
				return
			}
		}

		spec, err := resolveSpecForSymbol(r, specs, user.ID, symbol)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		preview := buildContractPreview(symbol, price, quantity, spec)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(preview); err != nil {
			logger.WithError(err).Error("failed to encode contract preview")
		}
	}
}

func resolveSpecForSymbol(
	r *http.Request,
	specs specResolver,
	userID uint,
	symbol string,
) (*model.ContractSpecification, error) {

	root := symbol
	if parsed, ok := contracts.ParseContractSymbol(symbol); ok {
		root = parsed.Base
	}

	spec, err := specs.ResolveForUser(r.Context(), userID, root)
	if err != nil {
		logger.WithField("symbol", root).
			WithError(err).Error("contract spec lookup failed")
		return nil, err
	}
	return spec, nil
}

var previewUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin from the journal frontend.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamContractPreviewHandler upgrades to a websocket and pushes a refreshed
// preview whenever the cached quote for the symbol moves, polling the quote
// cache once per interval. The client closes the socket when done.
func StreamContractPreviewHandler(
	specs specResolver,
	quotes quoteReader,
	interval time.Duration,
) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		symbol := chi.URLParam(r, "symbol")

		quantity := 1.0
		if quantityParam := r.URL.Query().Get("quantity"); quantityParam != "" {
			parsed, err := strconv.ParseFloat(quantityParam, 64)
			if err != nil {
				http.Error(w, "invalid quantity", http.StatusBadRequest)
				return
			}
			quantity = parsed
		}

		spec, err := resolveSpecForSymbol(r, specs, user.ID, symbol)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		conn, err := previewUpgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Warn("websocket upgrade failed")
			return
		}
		defer conn.Close()

		logger.WithFields(map[string]interface{}{
			"symbol":  symbol,
			"user_id": user.ID,
		}).Info("preview stream opened")

		// Drain client frames so close messages are processed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		lastPrice := -1.0
		for {
			quoteMap, err := quotes.GetMap(r.Context(), []string{symbol})
			if err != nil {
				logger.WithError(err).Warn("quote cache read failed during stream")
			} else if price, ok := quoteMap[symbol]; ok && price != lastPrice {
				preview := buildContractPreview(symbol, price, quantity, spec)
				if err := conn.WriteJSON(preview); err != nil {
					logger.WithField("symbol", symbol).
						WithError(err).Info("preview stream closed")
					return
				}
				lastPrice = price
			}

			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}
		}
	}
}

// DefaultPreviewHandlers wires the preview endpoints to the production
// repositories.
func DefaultPreviewHandlers() (preview, stream http.HandlerFunc) {
	specs := repository.NewContractSpecRepository()
	quotes := repository.NewQuoteRepository()

	return ContractPreviewHandler(specs),
		StreamContractPreviewHandler(specs, quotes, 2*time.Second)
}
