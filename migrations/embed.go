// Package migrations embeds the versioned PostgreSQL schema so binaries
// can migrate without a migrations directory on disk.
package migrations

import "embed"

// FS holds every NNNNNN_name.{up,down}.sql file.
//
//go:embed *.sql
var FS embed.FS
