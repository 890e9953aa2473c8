package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/coderozzy/daily-habits-final/internal/storage/postgres"
	"github.com/coderozzy/daily-habits-final/internal/storage/sqlite"
)

// NewProvider selects a storage backend from the config value: PostgreSQL
// connection strings get the postgres store, everything else is treated as a
// SQLite database path.
func NewProvider(config string) Provider {
	if strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://") {
		return postgres.New(config)
	}
	return sqlite.New(ExpandPath(config))
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
