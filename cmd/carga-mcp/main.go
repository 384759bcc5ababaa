package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/carga/internal/config"
	cargamcp "github.com/claude/carga/internal/mcp"
	"github.com/claude/carga/internal/report"
	"github.com/claude/carga/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "carga server URL for remote mode (e.g. http://carga.tail1234.ts.net)")
	configPath := flag.String("config", "", "path to config file for local database mode")
	bodyweight := flag.Float64("bodyweight", 70, "fallback bodyweight in kg for remote mode")
	tz := flag.String("tz", "UTC", "timezone for week boundaries in remote mode")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var (
		ds       cargamcp.DataSource
		defaults report.Defaults
	)

	switch {
	case *serverURL != "":
		loc, err := time.LoadLocation(*tz)
		if err != nil {
			log.Error("invalid timezone", "tz", *tz, "error", err)
			os.Exit(1)
		}
		ds = cargamcp.NewHTTPClient(*serverURL)
		defaults = report.Defaults{BodyweightKg: *bodyweight, Location: loc}
		log.Info("remote mode", "server", *serverURL)

	case *configPath != "":
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		defaults = report.Defaults{BodyweightKg: cfg.Training.DefaultBodyweightKg, Location: cfg.Location()}
		log.Info("local mode", "database", cfg.Database.Name)

	default:
		fmt.Fprintf(os.Stderr, "Usage: carga-mcp (-server <URL> | -config config.yaml)\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := cargamcp.New(ds, defaults, Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
