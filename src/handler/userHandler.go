package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type userSaver interface {
	Save(ctx context.Context, u *model.User) error
}

// GetProfileHandler returns the authenticated user's profile.
func GetProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(user); err != nil {
			logger.WithError(err).Error("failed to encode profile")
		}
	}
}

// UpdateProfileHandler applies a partial profile update; nil payload fields
// leave the stored value untouched.
func UpdateProfileHandler(users userSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload model.UpdateUserPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		if payload.Email != nil {
			user.Email = *payload.Email
		}
		if payload.FirstName != nil {
			user.FirstName = *payload.FirstName
		}
		if payload.LastName != nil {
			user.LastName = *payload.LastName
		}
		if payload.Bio != nil {
			user.Bio = *payload.Bio
		}
		if payload.AvatarURL != nil {
			user.AvatarURL = *payload.AvatarURL
		}

		if err := users.Save(r.Context(), user); err != nil {
			logger.WithError(err).Error("failed to update profile")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(user); err != nil {
			logger.WithError(err).Error("failed to encode profile")
		}
	}
}

// ChangePasswordHandler verifies the current password and stores a bcrypt
// hash of the new one.
func ChangePasswordHandler(users userSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload model.ChangePasswordPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if len(payload.NewPassword) < 8 {
			http.Error(w, "new password must be at least 8 characters", http.StatusBadRequest)
			return
		}

		if err := bcrypt.CompareHashAndPassword(
			[]byte(user.Password), []byte(payload.CurrentPassword)); err != nil {
			http.Error(w, "current password is incorrect", http.StatusForbidden)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			logger.WithError(err).Error("failed to hash password")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		user.Password = string(hash)
		if err := users.Save(r.Context(), user); err != nil {
			logger.WithError(err).Error("failed to store new password")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DefaultUserHandlers wires the profile endpoints to the production
// repository.
func DefaultUserHandlers() (profile, update, password http.HandlerFunc) {
	users := repository.NewUserRepository()

	return GetProfileHandler(), UpdateProfileHandler(users), ChangePasswordHandler(users)
}
