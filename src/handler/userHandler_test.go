package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tradejournal/src/auth"
	"tradejournal/src/model"

	"golang.org/x/crypto/bcrypt"
)

type mockUserSaver struct {
	saved *model.User
	err   error
}

func (m *mockUserSaver) Save(ctx context.Context, u *model.User) error {
	m.saved = u
	return m.err
}

func TestChangePasswordHandler_WrongCurrentPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	user := &model.User{ID: 7, Password: string(hash)}

	handler := ChangePasswordHandler(&mockUserSaver{})

	body := `{"current_password":"wrong","new_password":"battery-staple"}`
	req := httptest.NewRequest(http.MethodPost, "/me/password", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), auth.UserKey, user))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rr.Code)
	}
}

func TestChangePasswordHandler_TooShort(t *testing.T) {
	handler := ChangePasswordHandler(&mockUserSaver{})

	body := `{"current_password":"correct-horse","new_password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/me/password", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), auth.UserKey, &model.User{ID: 7}))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestChangePasswordHandler_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	user := &model.User{ID: 7, Password: string(hash)}

	saver := &mockUserSaver{}
	handler := ChangePasswordHandler(saver)

	body := `{"current_password":"correct-horse","new_password":"battery-staple"}`
	req := httptest.NewRequest(http.MethodPost, "/me/password", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), auth.UserKey, user))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if saver.saved == nil {
		t.Fatalf("expected the user to be saved")
	}
	if err := bcrypt.CompareHashAndPassword(
		[]byte(saver.saved.Password), []byte("battery-staple")); err != nil {
		t.Fatalf("stored hash does not match the new password: %v", err)
	}
}

func TestUpdateProfileHandler_PartialUpdate(t *testing.T) {
	user := &model.User{ID: 7, Email: "old@example.com", FirstName: "Sam", Bio: "keeps"}

	saver := &mockUserSaver{}
	handler := UpdateProfileHandler(saver)

	body := `{"email":"new@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/me", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), auth.UserKey, user))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if saver.saved.Email != "new@example.com" {
		t.Fatalf("email not updated, got %q", saver.saved.Email)
	}
	if saver.saved.FirstName != "Sam" || saver.saved.Bio != "keeps" {
		t.Fatalf("untouched fields must survive a partial update")
	}
}
