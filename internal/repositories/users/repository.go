// Package users provides the remote record store adapter for the User kind.
package users

import (
	"context"

	"github.com/adboardapp/adboard/internal/models"
)

type Repository interface {
	// GetByPhone returns the user registered with phone.
	// Returns common.ErrNotFound when no such user exists.
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	// GetByID returns the user for id.
	// Returns common.ErrNotFound when no such user exists.
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// UpdateName sets the user's name and refreshes updated_at.
	UpdateName(ctx context.Context, id, name string) (*models.User, error)
}
