// Package users is the credential store: user records keyed by an internal
// UUID and looked up by RUT, the national identifier players log in with.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BirthLayout is the date format used by the registration form and profile page.
const BirthLayout = "2006-01-02"

var (
	ErrNotFound         = errors.New("user not found")
	ErrDuplicateKey     = errors.New("rut or mail already registered")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrMissingField     = errors.New("rut, mail and password are required")
	ErrInvalidBirth     = errors.New("invalid birth date")
)

// User is a registered player.
type User struct {
	ID           uuid.UUID
	Name         string
	Surname      string
	DisplayName  string
	Birth        *time.Time
	RUT          string
	Mail         string
	PasswordHash string
	CreatedAt    time.Time
}

// Store persists users. Rut and mail are each unique; Create reports a
// collision on either as ErrDuplicateKey. Lookups report ErrNotFound.
type Store interface {
	Create(ctx context.Context, user *User) error
	FindByRUT(ctx context.Context, rut string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// NormalizeRUT trims whitespace, drops thousands separators and uppercases
// the check digit, so "12.345.678-k" and "12345678-K" are the same key.
func NormalizeRUT(rut string) string {
	rut = strings.TrimSpace(rut)
	rut = strings.ReplaceAll(rut, ".", "")
	return strings.ToUpper(rut)
}

// NormalizeMail trims and lowercases an email address.
func NormalizeMail(mail string) string {
	return strings.ToLower(strings.TrimSpace(mail))
}

// ParseBirth parses an optional birth date. An empty string yields nil.
func ParseBirth(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(BirthLayout, value)
	if err != nil {
		return nil, ErrInvalidBirth
	}
	return &t, nil
}
