// Package db embeds the goose SQL migrations so binaries can migrate
// without the source tree.
package db

import "embed"

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS
