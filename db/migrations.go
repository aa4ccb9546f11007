// Package db embeds the SQL migrations so the binary can run them without a
// migrations directory on disk.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
