// Package config provides centralized configuration management for twxcli.
// It handles loading configuration from multiple sources, validation, and
// resolving the directories the tools write to.
//
// # Configuration Sources
//
// Configuration is built in layers, later layers overriding earlier ones:
//
//  1. Default values (Default)
//  2. YAML configuration file (TWX_CONFIG_FILE or config.yaml)
//  3. Environment variables (highest priority)
//
// A .env file in the working directory is loaded into the environment first
// when present.
//
// # Environment Variables
//
// All environment variables follow the pattern TWX_<SECTION>_<FIELD>:
//
//	TWX_SERVER_PORT=8080
//	TWX_LOGGING_LEVEL=debug
//	TWX_SCRAPER_REQUESTS_PER_SEC=1
//	TWX_RANGE_MAX_DAYS=62
//	TWX_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Path Management
//
// Relative directories are resolved against Paths.BaseDir, which defaults to
// the directory holding the executable:
//
//	paths, err := config.ResolvePaths(cfg.Paths)
//	file := paths.ExportFile("twse-margin-transactions", "2024-01-02", "2024-01-31", "csv")
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
