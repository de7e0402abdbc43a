package migrations

import "embed"

// FS contains embedded SQLite migrations for activity storage.
//
//go:embed *.sql
var FS embed.FS
