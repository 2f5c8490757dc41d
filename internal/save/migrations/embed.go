package migrations

import "embed"

// FS contains embedded SQLite migrations for save storage.
//
//go:embed *.sql
var FS embed.FS
