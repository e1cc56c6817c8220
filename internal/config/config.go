// Package config reads airportcore settings from AIRPORTCORE_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"airportcore/internal/blob"
)

// Prefix is prepended to every variable name.
const Prefix = "AIRPORTCORE_"

// ArchiveDriver selects the report archive sink.
type ArchiveDriver string

const (
	ArchiveNone     ArchiveDriver = "none"
	ArchiveSQLite   ArchiveDriver = "sqlite"
	ArchivePostgres ArchiveDriver = "postgres"
)

// Config is the resolved process configuration.
//
//	AIRPORTCORE_LOG_LEVEL: debug|info|warn|error (default info)
//	AIRPORTCORE_DATA_DIR: dataset key prefix (default data)
//	AIRPORTCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	AIRPORTCORE_BLOB_FS_ROOT: root when driver=fs (default ./blobdata)
//	AIRPORTCORE_BLOB_S3_BUCKET, _REGION, _ENDPOINT, _ACCESS_KEY_ID,
//	_SECRET_ACCESS_KEY, _SESSION_TOKEN, _PATH_STYLE: S3 settings
//	AIRPORTCORE_ARCHIVE_DRIVER: none|sqlite|postgres (default none)
//	AIRPORTCORE_SQLITE_PATH: archive file (default ./airportcore.db)
//	AIRPORTCORE_POSTGRES_DSN: archive DSN when driver=postgres
//	AIRPORTCORE_METRICS_NAMESPACE: Prometheus namespace (default airportcore)
type Config struct {
	LogLevel         string
	DataDir          string
	Blob             blob.Options
	Archive          ArchiveDriver
	SQLitePath       string
	PostgresDSN      string
	MetricsNamespace string
}

// Load reads envFile (when it exists) into the environment without
// overriding variables already set, then resolves the configuration. An
// empty envFile means ".env".
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv resolves the configuration through getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(Prefix + key)); v != "" {
			return v
		}
		return def
	}
	pathStyle, err := strconv.ParseBool(get("BLOB_S3_PATH_STYLE", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("%sBLOB_S3_PATH_STYLE: %w", Prefix, err)
	}
	cfg := Config{
		LogLevel: get("LOG_LEVEL", "info"),
		DataDir:  strings.TrimSuffix(get("DATA_DIR", "data"), "/"),
		Blob: blob.Options{
			Driver: blob.Driver(get("BLOB_DRIVER", string(blob.DriverFilesystem))),
			FSRoot: get("BLOB_FS_ROOT", "./blobdata"),
			S3: blob.S3Config{
				Bucket:          get("BLOB_S3_BUCKET", ""),
				Region:          get("BLOB_S3_REGION", "us-east-1"),
				Endpoint:        get("BLOB_S3_ENDPOINT", ""),
				AccessKeyID:     get("BLOB_S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: get("BLOB_S3_SECRET_ACCESS_KEY", ""),
				SessionToken:    get("BLOB_S3_SESSION_TOKEN", ""),
				PathStyle:       pathStyle,
			},
		},
		Archive:          ArchiveDriver(get("ARCHIVE_DRIVER", string(ArchiveNone))),
		SQLitePath:       get("SQLITE_PATH", "./airportcore.db"),
		PostgresDSN:      get("POSTGRES_DSN", ""),
		MetricsNamespace: get("METRICS_NAMESPACE", "airportcore"),
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated settings and driver prerequisites.
func (c Config) Validate() error {
	switch c.Blob.Driver {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3.Bucket == "" {
			return fmt.Errorf("%sBLOB_S3_BUCKET is required when the blob driver is s3", Prefix)
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	switch c.Archive {
	case ArchiveNone, ArchiveSQLite, ArchivePostgres:
	default:
		return fmt.Errorf("unknown archive driver %q", c.Archive)
	}
	return nil
}

// DatasetKey returns the blob key of the dataset file for name, e.g.
// "data/flights.json".
func (c Config) DatasetKey(name string) string {
	if c.DataDir == "" {
		return name + ".json"
	}
	return c.DataDir + "/" + name + ".json"
}
