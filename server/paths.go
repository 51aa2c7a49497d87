package server

import (
	"path/filepath"
	"strings"

	"github.com/kbukum/riv/database"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/sink"
)

// resolvePath joins a relative request path to base and rejects any path
// that ends up outside base. base must be absolute and clean.
func resolvePath(base, field, p string) (string, error) {
	if p == "" {
		return p, nil
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(base, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.InvalidInput(field+" is outside the base directory").WithDetail("field", field)
	}
	return p, nil
}

// resolveSinkPaths confines the file locations of a sink config to base.
func resolveSinkPaths(base string, cfg *sink.Config) error {
	var err error
	if cfg.Path, err = resolvePath(base, "sink.path", cfg.Path); err != nil {
		return err
	}
	if cfg.Driver == database.DriverSQLite {
		if cfg.Database, err = resolvePath(base, "sink.database", cfg.Database); err != nil {
			return err
		}
	}
	return nil
}
