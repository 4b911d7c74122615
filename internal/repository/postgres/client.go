package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository"
)

type ClientRepo struct {
	DB DBTX
}

const createClient = `-- name: CreateClient
INSERT INTO clients (id, user_id, full_name, email, phone, address)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, created_at, full_name, email, phone, address
`

func (r *ClientRepo) CreateClient(ctx context.Context, userID uuid.UUID, arg repository.ClientParams) (models.Client, error) {
	rows, _ := r.DB.Query(ctx, createClient, uuid.New(), userID, arg.FullName, arg.Email, arg.Phone, arg.Address)
	client, err := pgx.CollectOneRow(rows, rowToClient)
	if err != nil {
		return client, fmt.Errorf("db error: %w", err)
	}

	return client, nil
}

const getClient = `-- name: GetClient
SELECT id, user_id, created_at, full_name, email, phone, address
FROM clients
WHERE id = $1 AND user_id = $2
`

func (r *ClientRepo) GetClient(ctx context.Context, clientID uuid.UUID, userID uuid.UUID) (models.Client, error) {
	rows, _ := r.DB.Query(ctx, getClient, clientID, userID)
	client, err := pgx.CollectOneRow(rows, rowToClient)

	switch {
	case err == nil:
		return client, nil
	case errors.Is(err, pgx.ErrNoRows):
		return client, apperrors.ErrClientNotFound
	default:
		return client, fmt.Errorf("db error: %w", err)
	}
}

const listClients = `-- name: ListClients
SELECT id, user_id, created_at, full_name, email, phone, address
FROM clients
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *ClientRepo) ListClients(ctx context.Context, userID uuid.UUID) ([]models.Client, error) {
	rows, _ := r.DB.Query(ctx, listClients, userID)
	clients, err := pgx.CollectRows(rows, rowToClient)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return clients, nil
}

const updateClient = `-- name: UpdateClient
UPDATE clients
SET full_name = $3, email = $4, phone = $5, address = $6
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, created_at, full_name, email, phone, address
`

func (r *ClientRepo) UpdateClient(ctx context.Context, clientID uuid.UUID, userID uuid.UUID, arg repository.ClientParams) (models.Client, error) {
	rows, _ := r.DB.Query(ctx, updateClient, clientID, userID, arg.FullName, arg.Email, arg.Phone, arg.Address)
	client, err := pgx.CollectOneRow(rows, rowToClient)

	switch {
	case err == nil:
		return client, nil
	case errors.Is(err, pgx.ErrNoRows):
		return client, apperrors.ErrClientNotFound
	default:
		return client, fmt.Errorf("db error: %w", err)
	}
}

const deleteClient = `-- name: DeleteClient
DELETE FROM clients
WHERE id = $1 AND user_id = $2
`

func (r *ClientRepo) DeleteClient(ctx context.Context, clientID uuid.UUID, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteClient, clientID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrClientNotFound
	}

	return nil
}

func rowToClient(row pgx.CollectableRow) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.FullName, &c.Email, &c.Phone, &c.Address)
	return c, err
}
