package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tradejournal/src/model"
)

type mockJournalStore struct {
	entries []model.JournalEntry
	found   *model.JournalEntry
	created *model.JournalEntry
	err     error
}

func (m *mockJournalStore) Create(ctx context.Context, entry *model.JournalEntry) error {
	entry.ID = 11
	entry.CreatedAt = time.Date(2025, time.March, 4, 15, 0, 0, 0, time.UTC)
	m.created = entry
	return m.err
}

func (m *mockJournalStore) FindByID(ctx context.Context, id uint) (*model.JournalEntry, error) {
	return m.found, m.err
}

func (m *mockJournalStore) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]model.JournalEntry, error) {
	return m.entries, m.err
}

func (m *mockJournalStore) Update(ctx context.Context, entry *model.JournalEntry) error {
	return m.err
}

func (m *mockJournalStore) Delete(ctx context.Context, userID uint, id uint) error {
	return m.err
}

func TestCreateJournalEntryHandler_RequiresTitle(t *testing.T) {
	handler := CreateJournalEntryHandler(&mockJournalStore{})

	req := authenticated(httptest.NewRequest(http.MethodPost, "/journal", strings.NewReader(`{"body":"no title"}`)), 7)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCreateJournalEntryHandler_TagsSession(t *testing.T) {
	store := &mockJournalStore{}
	handler := CreateJournalEntryHandler(store)

	body := `{"title":"ES scalp recap","body":"took the open drive","tags":"futures,es"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/journal", strings.NewReader(body)), 7)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if store.created == nil || store.created.UserID != 7 {
		t.Fatalf("entry not created for the authenticated user")
	}

	var response map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("response not decodable: %v", err)
	}
	// 2025-03-04 15:00 UTC is 10:00 in New York: the US session.
	if response["session"] != "us_session" {
		t.Fatalf("expected us_session tag, got %v", response["session"])
	}
}

func TestDeleteJournalEntryHandler_ForeignEntryHidden(t *testing.T) {
	store := &mockJournalStore{found: &model.JournalEntry{ID: 3, UserID: 8}}
	handler := DeleteJournalEntryHandler(store)

	req := authenticated(httptest.NewRequest(http.MethodDelete, "/journal/3", nil), 7)
	req = withURLParam(req, "id", "3")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}
