package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"twxcli/internal/app"
	"twxcli/internal/config"
)

func main() {
	configFile := flag.String("config", "", "YAML configuration file; TWX_* environment variables still apply")
	showVersion := flag.Bool("version", false, "print the build version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (commit %s, built %s)\n", app.AppName, app.Version, app.Commit, app.BuildTime)
		return
	}

	load := config.Load
	if *configFile != "" {
		load = func() (*config.Config, error) { return config.LoadFrom(*configFile) }
	}
	cfg, err := load()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
