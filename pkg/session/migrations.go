package session

import (
	"embed"
	"io/fs"
)

//go:embed migrations
var migrations embed.FS

// PostgresMigrations returns the goose migrations creating the PostgresStore table.
func PostgresMigrations() fs.FS { return sub("migrations/postgres") }

// SQLiteMigrations returns the goose migrations creating the SQLiteStore table.
func SQLiteMigrations() fs.FS { return sub("migrations/sqlite") }

func sub(dir string) fs.FS {
	f, err := fs.Sub(migrations, dir)
	if err != nil {
		// dir is a constant inside the embedded tree
		panic(err)
	}
	return f
}
