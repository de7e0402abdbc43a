package migrations

import "embed"

// FS contains embedded Postgres migrations for activity storage.
//
//go:embed *.sql
var FS embed.FS
