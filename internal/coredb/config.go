package coredb

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coredb/coredb/internal/model"
)

// reservedDir is the one reserved subdirectory a database directory
// holds, per spec.md §6's filesystem layout: a config file, the
// embedded B+ tree file, and an optional migration log.
const (
	reservedDir  = ".coredb"
	configFile   = "config"
	dataDir      = "data"
	migrationLog = "migrations.log"
)

// FormatVersion is stamped into every newly created database's config.
const FormatVersion = 1

// Config is the on-disk database configuration: name, format version,
// creation time, and an optional bucket URL recorded once the database
// has been pushed to (or opened from) a remote mirror.
//
// Grounded on original_source's DatabaseConfig{name, version,
// created_at, bucket_url}, but serialized per spec.md §6/§8 as a
// line-delimited key=value file rather than the original's TOML —
// introducing a YAML/TOML library here would fight the spec's pinned
// textual dialect rather than serve it.
type Config struct {
	Name      string
	Version   uint32
	CreatedAt model.Timestamp
	BucketURL string // empty means "no bucket configured"
}

func configPath(rootDir string) string {
	return filepath.Join(rootDir, reservedDir, configFile)
}

func dataPath(rootDir string) string {
	return filepath.Join(rootDir, reservedDir, dataDir)
}

func migrationLogPath(rootDir string) string {
	return filepath.Join(rootDir, reservedDir, migrationLog)
}

// writeConfig serializes cfg as line-delimited key=value pairs.
func writeConfig(rootDir string, cfg *Config) error {
	var b strings.Builder
	fmt.Fprintf(&b, "name=%s\n", cfg.Name)
	fmt.Fprintf(&b, "version=%d\n", cfg.Version)
	fmt.Fprintf(&b, "created_at=%d\n", int64(cfg.CreatedAt))
	if cfg.BucketURL != "" {
		fmt.Fprintf(&b, "bucket_url=%s\n", cfg.BucketURL)
	}
	if err := os.WriteFile(configPath(rootDir), []byte(b.String()), 0o644); err != nil {
		return newErr(KindIO, rootDir, "failed to write database config", err)
	}
	return nil
}

// readConfig parses the line-delimited key=value config file written by
// writeConfig. Unknown keys are ignored so the format can gain fields
// without breaking older databases.
func readConfig(rootDir string) (*Config, error) {
	f, err := os.Open(configPath(rootDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newErr(KindConfig, rootDir, "not a coredb database (missing config)", err)
		}
		return nil, newErr(KindIO, rootDir, "failed to read database config", err)
	}
	defer f.Close()

	cfg := &Config{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, newErr(KindCorruption, rootDir, "malformed config line: "+line, nil)
		}
		switch key {
		case "name":
			cfg.Name = value
		case "version":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return nil, newErr(KindCorruption, rootDir, "malformed version field", err)
			}
			cfg.Version = uint32(v)
		case "created_at":
			v, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, newErr(KindCorruption, rootDir, "malformed created_at field", err)
			}
			cfg.CreatedAt = model.Timestamp(v)
		case "bucket_url":
			cfg.BucketURL = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, newErr(KindIO, rootDir, "failed to scan database config", err)
	}
	if cfg.Name == "" {
		return nil, newErr(KindConfig, rootDir, "config missing required field: name", nil)
	}
	return cfg, nil
}
