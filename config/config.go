// Package config collects the settings of a run from an optional .env file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvBackingStore = "VMMGR_BACKING_STORE"
	EnvTrace        = "VMMGR_TRACE"
	EnvTraceFile    = "VMMGR_TRACE_FILE"
	EnvTraceDB      = "VMMGR_TRACE_DB"
	EnvLogLevel     = "VMMGR_LOG_LEVEL"
	EnvRunID        = "VMMGR_RUN_ID"
)

// Trace formats.
const (
	TraceText = "text"
	TraceCSV  = "csv"
	TraceNone = "none"
)

// Run ID schemes for database traces. Sequential IDs repeat across runs, which
// makes two recordings of the same input comparable row by row.
const (
	RunIDUnique     = "unique"
	RunIDSequential = "sequential"
)

// Config holds the settings of a run.
type Config struct {
	BackingStore string
	Trace        string
	TraceFile    string
	TraceDB      string
	LogLevel     string
	RunID        string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		BackingStore: "BACKING_STORE.bin",
		Trace:        TraceText,
		LogLevel:     "INFO",
		RunID:        RunIDUnique,
	}
}

// Load reads envFile into the environment, if it exists, and returns the
// defaults overridden by the VMMGR_* variables. Variables already set in the
// environment win over the file. An empty envFile skips the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	c := Default()

	overrideFromEnv(&c.BackingStore, EnvBackingStore)
	overrideFromEnv(&c.Trace, EnvTrace)
	overrideFromEnv(&c.TraceFile, EnvTraceFile)
	overrideFromEnv(&c.TraceDB, EnvTraceDB)
	overrideFromEnv(&c.LogLevel, EnvLogLevel)
	overrideFromEnv(&c.RunID, EnvRunID)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func overrideFromEnv(field *string, name string) {
	if value, ok := os.LookupEnv(name); ok && value != "" {
		*field = value
	}
}

// Validate checks that the settings can be used.
func (c Config) Validate() error {
	switch c.Trace {
	case TraceText, TraceCSV, TraceNone:
	default:
		return fmt.Errorf("unknown trace format %q", c.Trace)
	}

	switch c.RunID {
	case RunIDUnique, RunIDSequential:
	default:
		return fmt.Errorf("unknown run id scheme %q", c.RunID)
	}

	if c.BackingStore == "" {
		return errors.New("backing store path is empty")
	}

	return nil
}
