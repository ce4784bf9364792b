// Package repomanager wires together the record store repositories and the
// database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/adboardapp/adboard/internal/repositories/ads"
	"github.com/adboardapp/adboard/internal/repositories/users"
)

// RepositoryManager vends the record store repositories backed by a single
// database connection and exposes a schema migration hook.
type RepositoryManager interface {
	Conn() *sql.DB
	Users() users.Repository
	Ads() ads.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}
