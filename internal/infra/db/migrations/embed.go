// Package migrations embeds the failure-log schema for every supported driver.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed mysql/*.sql postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dir returns the migration directory for a database driver.
func Dir(driver string) (fs.FS, error) {
	switch driver {
	case "mysql", "postgres", "sqlite":
		return fs.Sub(FS, driver)
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
}
