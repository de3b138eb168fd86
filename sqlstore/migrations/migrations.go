// Package migrations embeds the catalog schema for each supported driver.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// ForDriver returns the migration scripts for a database/sql driver name.
func ForDriver(driver string) (fs.FS, error) {
	switch driver {
	case "sqlite3":
		return fs.Sub(files, "sqlite")
	case "postgres":
		return fs.Sub(files, "postgres")
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
}
