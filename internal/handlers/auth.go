package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/render"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/userctx"
	"github.com/SmoothTransact/smooth-transact-api/internal/logger"
)

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func handleSignup(authService authService, l logger.Logger, m authMetrics) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		FullName string `json:"full_name" validate:"required,min=2,max=100"`
		Password string `json:"password" validate:"required,min=8"`
	}
	type response struct {
		Message string       `json:"message"`
		User    UserResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := authService.Signup(r.Context(), data.Email, data.FullName, data.Password)
		if err != nil {
			m.RecordAuthEvent("signup", "fail")
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			case errors.Is(err, apperrors.ErrEmailInvalid):
				render.ServiceError(w, "Email is not valid", http.StatusBadRequest)
			default:
				l.Error("Failed to sign user up", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		m.RecordAuthEvent("signup", "ok")
		render.JSONWithStatus(w, response{
			Message: "User registered successfully",
			User: UserResponse{
				ID:        user.ID,
				Email:     user.Email,
				FullName:  user.FullName,
				Role:      user.Role,
				CreatedAt: user.CreatedAt,
			},
		}, http.StatusCreated)
	})
}

func handleSignin(authService authService, l logger.Logger, m authMetrics) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Message      string `json:"message"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, cookie, err := authService.Signin(r.Context(), data.Email, data.Password)
		if err != nil {
			m.RecordAuthEvent("signin", "fail")
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrEmailInvalid):
				render.ServiceError(w, "Email is not valid", http.StatusBadRequest)
			default:
				l.Error("Failed to sign user in", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		m.RecordAuthEvent("signin", "ok")
		w.Header().Add("Set-Cookie", cookie)
		w.Header().Set("Authorization", "Bearer "+pair.Access.Value)
		render.JSON(w, response{
			Message:      "User signed in successfully",
			AccessToken:  pair.Access.Value,
			RefreshToken: pair.Refresh.Value,
		})
	})
}

func handleSignout(authService authService, l logger.Logger, m authMetrics) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		accessToken, err := authService.ReadAccessToken(r)
		if err != nil {
			render.ServiceError(w, "Token not found", http.StatusUnauthorized)
			return
		}

		err = authService.Signout(r.Context(), user.ID, accessToken)
		if err != nil {
			m.RecordAuthEvent("signout", "fail")
			switch {
			case errors.Is(err, apperrors.ErrTokenNotFound):
				render.ServiceError(w, "Token not found", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				l.Error("Failed to sign user out", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		m.RecordAuthEvent("signout", "ok")
		render.JSON(w, response{Message: "User signed out successfully"})
	})
}

func handleTokenRefresh(authService authService, l logger.Logger, m authMetrics) http.Handler {
	type request struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	type response struct {
		Message     string `json:"message"`
		AccessToken string `json:"access_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		access, err := authService.AccessFromRefresh(r.Context(), data.RefreshToken)
		if err != nil {
			m.RecordAuthEvent("refresh", "fail")
			switch {
			case errors.Is(err, apperrors.ErrTokenNotFound), errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
			default:
				l.Error("Failed to refresh access token", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		m.RecordAuthEvent("refresh", "ok")
		w.Header().Set("Authorization", "Bearer "+access.Value)
		render.JSON(w, response{
			Message:     "Access token refreshed successfully",
			AccessToken: access.Value,
		})
	})
}

func handleForgotPassword(authService authService, l logger.Logger, m authMetrics) http.Handler {
	type request struct {
		Email string `json:"email" validate:"required,email"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		// The code is meant for the user's mailbox, never for the response
		_, err = authService.ForgotPassword(r.Context(), data.Email)
		if err != nil {
			m.RecordAuthEvent("forgot_password", "fail")
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound), errors.Is(err, apperrors.ErrEmailInvalid):
				// Do not reveal whether the email is registered
				render.JSON(w, response{Message: "If the email is registered a reset code was sent"})
			default:
				l.Error("Failed to create password reset code", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		m.RecordAuthEvent("forgot_password", "ok")
		render.JSON(w, response{Message: "If the email is registered a reset code was sent"})
	})
}

func handleResetPassword(authService authService, l logger.Logger, m authMetrics) http.Handler {
	type request struct {
		Email       string `json:"email" validate:"required,email"`
		Code        string `json:"code" validate:"required,len=6"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = authService.ResetPassword(r.Context(), data.Email, data.Code, data.NewPassword)
		if err != nil {
			m.RecordAuthEvent("reset_password", "fail")
			switch {
			case errors.Is(err, apperrors.ErrOTPInvalid):
				render.ServiceError(w, "Invalid or expired code", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrUserNotFound), errors.Is(err, apperrors.ErrEmailInvalid):
				render.ServiceError(w, "Invalid or expired code", http.StatusUnauthorized)
			default:
				l.Error("Failed to reset password", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		m.RecordAuthEvent("reset_password", "ok")
		render.JSON(w, response{Message: "Password reset successfully"})
	})
}

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		render.JSON(w, UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		})
	})
}
