// Package admin authenticates administrators and manages their sessions.
package admin

import (
	"errors"
	"time"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("administrator not found")
)

type Administrator struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is an issued administrator token.
type Session struct {
	Token     string
	TokenID   string
	AdminID   int64
	ExpiresAt time.Time
}
