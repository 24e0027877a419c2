// Package record stores flat key/value documents such as the persisted spawn
// location. Keys are dotted paths ("spawn.world").
package record

import (
	"fmt"
	"strings"
)

// Store is a flat key/value document. Set only changes the in-memory view;
// Save makes it durable and Reload re-reads the backing medium.
type Store interface {
	Contains(key string) bool
	Get(key string) (string, bool)
	Set(key, value string)
	Save() error
	Reload() error
	Close() error
}

const (
	DriverYAML   = "yaml"
	DriverSQLite = "sqlite"
)

// Open returns the store for the given driver.
func Open(driver, path string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", DriverYAML:
		return OpenYAMLFile(path)
	case DriverSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown record driver %q", driver)
	}
}
