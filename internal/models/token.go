package models

import (
	"time"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenIssuer, AuthService
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
