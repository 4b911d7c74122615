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
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository"
)

type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toClientResponse(c models.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		FullName:  c.FullName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

type clientRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Address  string `json:"address" validate:"omitempty,max=200"`
}

func handleCreateClient(clientService clientService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[clientRequest](w, r)
		if err != nil {
			return
		}

		client, err := clientService.Create(r.Context(), user.ID, repository.ClientParams{
			FullName: data.FullName,
			Email:    data.Email,
			Phone:    data.Phone,
			Address:  data.Address,
		})
		if err != nil {
			l.Error("Failed to create client", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, toClientResponse(client), http.StatusCreated)
	})
}

func handleGetClient(clientService clientService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		clientID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Client not found", http.StatusNotFound)
			return
		}

		client, err := clientService.Get(r.Context(), clientID, user.ID)
		switch {
		case err == nil:
			render.JSON(w, toClientResponse(client))
		case errors.Is(err, apperrors.ErrClientNotFound):
			render.ServiceError(w, "Client not found", http.StatusNotFound)
		default:
			l.Error("Failed to get client", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListClients(clientService clientService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		clients, err := clientService.List(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list clients", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]ClientResponse, 0, len(clients))
		for _, c := range clients {
			response = append(response, toClientResponse(c))
		}
		render.JSON(w, response)
	})
}

func handleUpdateClient(clientService clientService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		clientID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Client not found", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[clientRequest](w, r)
		if err != nil {
			return
		}

		client, err := clientService.Update(r.Context(), clientID, user.ID, repository.ClientParams{
			FullName: data.FullName,
			Email:    data.Email,
			Phone:    data.Phone,
			Address:  data.Address,
		})
		switch {
		case err == nil:
			render.JSON(w, toClientResponse(client))
		case errors.Is(err, apperrors.ErrClientNotFound):
			render.ServiceError(w, "Client not found", http.StatusNotFound)
		default:
			l.Error("Failed to update client", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteClient(clientService clientService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		clientID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Client not found", http.StatusNotFound)
			return
		}

		err = clientService.Delete(r.Context(), clientID, user.ID)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrClientNotFound):
			render.ServiceError(w, "Client not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete client", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
