package migrations

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var migrationFS embed.FS

// QuietMode suppresses goose output (set by the CLI for clean startup)
var QuietMode bool

// Run applies all pending migrations to the database.
func Run(db *sql.DB) error {
	goose.SetBaseFS(migrationFS)
	if QuietMode {
		goose.SetLogger(goose.NopLogger())
	}
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
