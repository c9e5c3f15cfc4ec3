package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"

	logger "github.com/sirupsen/logrus"
)

type exceptionLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.Exception, error)
}

// ListExceptionsHandler exposes recent persisted system errors, newest first.
// Mainly consumed by the ops dashboard to spot failing quote sources.
func ListExceptionsHandler(exceptions exceptionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		limit := 50
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		rows, err := exceptions.ListRecent(r.Context(), limit)
		if err != nil {
			logger.WithError(err).Error("failed to list exceptions")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			logger.WithError(err).Error("failed to encode exceptions")
		}
	}
}

// DefaultExceptionsHandler wires the listing to the production repository.
func DefaultExceptionsHandler() http.HandlerFunc {
	return ListExceptionsHandler(repository.NewExceptionRepository())
}
