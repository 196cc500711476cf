package database

import (
	"fmt"
	"path/filepath"

	"gsc-go/internal/config"
	"gsc-go/internal/gsc"
)

// NewDatabaseFromConfig opens the catalog database described by the config
// and applies all pending schema migrations before returning the handle, so
// callers always see an up-to-date schema. Repeated startups against the
// same location skip already-applied migrations.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, hostID string) (gsc.Database, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		path = filepath.Join(cfg.DataDir, hostID+".db")
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}

	db, err := NewSQLiteDatabase(path)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	return db, nil
}
