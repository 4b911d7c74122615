package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/SmoothTransact/smooth-transact-api/internal/models"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository"
)

// ClientService manages the user's saved billing recipients
type ClientService struct {
	clientRepo repository.ClientRepo
}

func NewService(clientRepo repository.ClientRepo) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
	}
}

func (s *ClientService) Create(ctx context.Context, userID uuid.UUID, arg repository.ClientParams) (models.Client, error) {
	return s.clientRepo.CreateClient(ctx, userID, arg)
}

func (s *ClientService) Get(ctx context.Context, clientID uuid.UUID, userID uuid.UUID) (models.Client, error) {
	return s.clientRepo.GetClient(ctx, clientID, userID)
}

func (s *ClientService) List(ctx context.Context, userID uuid.UUID) ([]models.Client, error) {
	return s.clientRepo.ListClients(ctx, userID)
}

func (s *ClientService) Update(ctx context.Context, clientID uuid.UUID, userID uuid.UUID, arg repository.ClientParams) (models.Client, error) {
	return s.clientRepo.UpdateClient(ctx, clientID, userID, arg)
}

func (s *ClientService) Delete(ctx context.Context, clientID uuid.UUID, userID uuid.UUID) error {
	return s.clientRepo.DeleteClient(ctx, clientID, userID)
}
