package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"
	"tradejournal/src/sessions"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

type journalStore interface {
	Create(ctx context.Context, entry *model.JournalEntry) error
	FindByID(ctx context.Context, id uint) (*model.JournalEntry, error)
	ListByUser(ctx context.Context, userID uint, limit int, offset int) ([]model.JournalEntry, error)
	Update(ctx context.Context, entry *model.JournalEntry) error
	Delete(ctx context.Context, userID uint, id uint) error
}

type journalEntryPayload struct {
	PositionID *uint  `json:"position_id,omitempty"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Tags       string `json:"tags"`
}

// journalEntryResponse decorates an entry with the trading session it was
// written in, so the journal can be filtered by session later.
type journalEntryResponse struct {
	model.JournalEntry
	Session string `json:"session"`
}

func decorateEntry(entry model.JournalEntry) journalEntryResponse {
	return journalEntryResponse{
		JournalEntry: entry,
		Session:      string(sessions.Classify(entry.CreatedAt)),
	}
}

// CreateJournalEntryHandler records a new trade note.
func CreateJournalEntryHandler(store journalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload journalEntryPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if payload.Title == "" {
			http.Error(w, "title is required", http.StatusBadRequest)
			return
		}

		entry := &model.JournalEntry{
			UserID:     user.ID,
			PositionID: payload.PositionID,
			Title:      payload.Title,
			Body:       payload.Body,
			Tags:       payload.Tags,
		}

		if err := store.Create(r.Context(), entry); err != nil {
			logger.WithError(err).Error("failed to create journal entry")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(decorateEntry(*entry)); err != nil {
			logger.WithError(err).Error("failed to encode journal entry")
		}
	}
}

// ListJournalEntriesHandler lists the user's notes, newest first.
func ListJournalEntriesHandler(store journalStore) http.HandlerFunc {
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

		offset := 0
		if offsetParam := r.URL.Query().Get("offset"); offsetParam != "" {
			parsed, err := strconv.Atoi(offsetParam)
			if err != nil || parsed < 0 {
				http.Error(w, "invalid offset", http.StatusBadRequest)
				return
			}
			offset = parsed
		}

		entries, err := store.ListByUser(r.Context(), user.ID, limit, offset)
		if err != nil {
			logger.WithError(err).Error("failed to list journal entries")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		response := make([]journalEntryResponse, 0, len(entries))
		for _, entry := range entries {
			response = append(response, decorateEntry(entry))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.WithError(err).Error("failed to encode journal entries")
		}
	}
}

// UpdateJournalEntryHandler replaces the editable fields of one note.
func UpdateJournalEntryHandler(store journalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid entry id", http.StatusBadRequest)
			return
		}

		entry, err := store.FindByID(r.Context(), uint(id))
		if err != nil {
			logger.WithError(err).Error("failed to fetch journal entry")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if entry == nil || entry.UserID != user.ID {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}

		var payload journalEntryPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if payload.Title == "" {
			http.Error(w, "title is required", http.StatusBadRequest)
			return
		}

		entry.PositionID = payload.PositionID
		entry.Title = payload.Title
		entry.Body = payload.Body
		entry.Tags = payload.Tags

		if err := store.Update(r.Context(), entry); err != nil {
			logger.WithError(err).Error("failed to update journal entry")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(decorateEntry(*entry)); err != nil {
			logger.WithError(err).Error("failed to encode journal entry")
		}
	}
}

// DeleteJournalEntryHandler removes one of the user's notes.
func DeleteJournalEntryHandler(store journalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid entry id", http.StatusBadRequest)
			return
		}

		entry, err := store.FindByID(r.Context(), uint(id))
		if err != nil {
			logger.WithError(err).Error("failed to fetch journal entry")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if entry == nil || entry.UserID != user.ID {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}

		if err := store.Delete(r.Context(), user.ID, uint(id)); err != nil {
			logger.WithError(err).Error("failed to delete journal entry")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DefaultJournalHandlers wires the journal endpoints to the production
// repository.
func DefaultJournalHandlers() (create, list, update, remove http.HandlerFunc) {
	store := repository.NewJournalRepository()

	return CreateJournalEntryHandler(store),
		ListJournalEntriesHandler(store),
		UpdateJournalEntryHandler(store),
		DeleteJournalEntryHandler(store)
}
