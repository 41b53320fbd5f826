// Package migrations holds the SQL schema of the service.
package migrations

import "embed"

// FS contains the numbered *.up.sql / *.down.sql files.
//
//go:embed *.sql
var FS embed.FS
