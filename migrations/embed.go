// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql migration
//
//go:embed *.sql
var FS embed.FS
