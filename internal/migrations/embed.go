// Package migrations embeds the goose SQL migrations for the remote
// Postgres record store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
