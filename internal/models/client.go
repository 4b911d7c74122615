package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer profile invoices are issued against
type Client struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	FullName  string
	Email     string
	Phone     string
	Address   string
}
