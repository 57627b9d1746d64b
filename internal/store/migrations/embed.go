package migrations

import "embed"

// FS holds the SQL migrations applied to disa.db.
//
//go:embed *.sql
var FS embed.FS
