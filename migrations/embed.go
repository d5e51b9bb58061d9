// Package migrations embeds the Postgres schema migrations applied by
// cmd/migrate.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
