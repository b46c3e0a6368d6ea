package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScanDir string // root holding Build.hcl and the frameworks directory
	OutDir  string // overrides the project's out_dir when set

	CompilerName    string
	CompilerVersion string

	LogFormat string
	LogLevel  string

	Workers         int
	Strict          bool
	Clean           bool
	SkipFetchBuilds bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScanDir == "" {
		return nil, errors.New("ScanDir is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 1 {
		return nil, errors.New("Workers must be at least 1")
	}
	if cfg.CompilerName == "" {
		cfg.CompilerName = "unknown"
	}
	if cfg.CompilerVersion == "" {
		cfg.CompilerVersion = "unknown"
	}

	return &cfg, nil
}
