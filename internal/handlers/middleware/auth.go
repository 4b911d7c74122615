package middleware

import (
	"context"
	"net/http"

	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/render"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/userctx"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
)

type authService interface {
	GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error)
}

func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.GetUserFromRequest(r.Context(), r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
