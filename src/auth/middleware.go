package auth

import (
	"context"
	"net/http"
	"strings"

	"tradejournal/src/model"

	logger "github.com/sirupsen/logrus"
)

type userResolver interface {
	GetUserByAPIToken(ctx context.Context, token string) (*model.User, error)
}

// TokenMiddleware resolves the Authorization bearer token to a user and puts
// it on the request context. Requests without a valid token get a 401.
func TokenMiddleware(resolver userResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" || token == header {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := resolver.GetUserByAPIToken(r.Context(), token)
			if err != nil {
				logger.WithError(err).Error("failed to resolve API token")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
