package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	InputPath    string // normalized record .json file or directory
	MappingsPath string // mapping table .hcl file or directory
	OutputDir    string // where transpiled packages are written

	EnrichURL     string // description generator endpoint, empty disables
	EnrichTimeout time.Duration

	// AnnotateRun stamps each package manifest with its run id.
	AnnotateRun bool

	Workers   int
	LogFormat string
	LogLevel  string
}

// NewConfig validates a raw configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}
	if cfg.MappingsPath == "" {
		return nil, errors.New("MappingsPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OutputDir is a required configuration field and cannot be empty")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &cfg, nil
}
