package store

import (
	"fmt"
	"path/filepath"

	"github.com/amishk599/jobscout/internal/model"
)

// Drivers accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open builds the store selected by driver. An empty sqlitePath defaults to
// jobscout.db inside dataDir.
func Open(driver, dataDir, sqlitePath string) (model.JobStore, error) {
	switch driver {
	case "", DriverFile:
		s, err := NewFileStore(dataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverSQLite:
		if sqlitePath == "" {
			sqlitePath = filepath.Join(dataDir, "jobscout.db")
		}
		s, err := NewSQLiteStore(sqlitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
