package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var Files embed.FS

// GetFS returns the migration set for the given database driver. The two
// dialects carry the same tables; only the DDL differs.
func GetFS(driver string) fs.FS {
	dir := "sqlite"
	if driver == "postgres" {
		dir = "postgres"
	}
	sub, err := fs.Sub(Files, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
