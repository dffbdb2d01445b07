package admin

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("admin account not found")

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Account is an operator of the admin API. Admins may manage any user's
// secret key; plain accounts only the key of the site user they map to.
type Account struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         Role
	// SiteUserID links the account to a row in the users table. Zero for
	// pure operator accounts.
	SiteUserID int64
}

type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
}
