// Package migrations embeds the SQLite schema migrations into the binary.
// Importing it for side effects registers them with the database package.
package migrations

import (
	"embed"

	"github.com/nerrad567/pressure-logger/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
