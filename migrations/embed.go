// Package migrations embeds the goose SQL migrations so the binary and the tests share one source.
package migrations

import "embed"

//go:embed goose_sql/*.sql
var FS embed.FS

// Dir is the directory inside FS that holds the migration files.
const Dir = "goose_sql"
