package coredb

import (
	"encoding/json"
	"os"

	"github.com/coredb/coredb/internal/migrate"
)

// appendMigrationLog appends m as one JSON line to the database's
// migration log, the optional third file spec.md §6's filesystem layout
// names alongside the config and the embedded B+ tree file.
func appendMigrationLog(rootDir string, m *migrate.Migration) error {
	data, err := json.Marshal(m)
	if err != nil {
		return newErr(KindCorruption, m.ID, "failed to encode migration record", err)
	}

	f, err := os.OpenFile(migrationLogPath(rootDir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return newErr(KindIO, rootDir, "failed to open migration log", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return newErr(KindIO, rootDir, "failed to append migration record", err)
	}
	return nil
}

// ReadMigrationLog returns every migration recorded for this database, in
// application order.
func ReadMigrationLog(rootDir string) ([]*migrate.Migration, error) {
	f, err := os.Open(migrationLogPath(rootDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, newErr(KindIO, rootDir, "failed to read migration log", err)
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	var migrations []*migrate.Migration
	for decoder.More() {
		var m migrate.Migration
		if err := decoder.Decode(&m); err != nil {
			return nil, newErr(KindCorruption, rootDir, "malformed migration log entry", err)
		}
		migrations = append(migrations, &m)
	}
	return migrations, nil
}
