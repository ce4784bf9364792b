// Package ads provides the remote record store adapter for the Ad kind.
package ads

import (
	"context"

	"github.com/adboardapp/adboard/internal/models"
)

// SortOrder selects how a feed query orders its results.
type SortOrder string

const (
	// SortNewest orders by creation time, newest first.
	SortNewest SortOrder = "newest"
	// SortCheapest orders by price ascending. Ads without a price sort last.
	SortCheapest SortOrder = "cheapest"
)

// Query describes a remote feed query. Zero values mean "no constraint";
// Limit 0 means no cap.
type Query struct {
	OnlyActive bool
	Category   string
	MinPrice   *float64
	MaxPrice   *float64
	Sort       SortOrder
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, ad *models.Ad) (*models.Ad, error)
	// GetByID returns common.ErrNotFound when no such ad exists.
	GetByID(ctx context.Context, id string) (*models.Ad, error)
	// SetActive flips the visibility flag of an ad.
	// Returns common.ErrNotFound when no row was updated.
	SetActive(ctx context.Context, id string, active bool) error
	// Delete removes the ad. Returns common.ErrNotFound when no row was deleted.
	Delete(ctx context.Context, id string) error
	// ListByOwner returns all ads of userID, active and inactive, newest first.
	ListByOwner(ctx context.Context, userID string) ([]models.Ad, error)
	// Select runs a feed query.
	Select(ctx context.Context, q Query) ([]models.Ad, error)
}
