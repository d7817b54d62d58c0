package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jroosing/bindzone/internal/api"
	"github.com/jroosing/bindzone/internal/config"
	"github.com/jroosing/bindzone/internal/database"
	"github.com/jroosing/bindzone/internal/logging"
	"github.com/jroosing/bindzone/internal/zones"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var (
		configPath    = flag.String("config", "", "Path to YAML configuration file (or set BINDZONE_CONFIG)")
		host          = flag.String("host", "", "Override API bind host")
		port          = flag.Int("port", 0, "Override API bind port")
		zonesPath     = flag.String("zones", "", "Override the local zones directory")
		importServers = flag.String("import-servers", "", "Import a servers.config.json document before starting")
		exportServers = flag.String("export-servers", "", "Write the registry, passwords included, to this file and exit")
		jsonLogs      = flag.Bool("json-logs", false, "Enable JSON structured logging")
		debug         = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(config.ResolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *host != "" {
		cfg.API.Host = *host
	}
	if *port != 0 {
		cfg.API.Port = *port
	}
	if *zonesPath != "" {
		cfg.Zones.LocalPath = *zonesPath
	}
	if *importServers != "" {
		cfg.Registry.ImportJSON = *importServers
	}
	if *jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if *debug {
		cfg.Logging.Level = "DEBUG"
	}

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger, *exportServers); err != nil {
		logger.Error("bindzone exited with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, exportPath string) error {
	db, err := database.Open(cfg.Registry.Path)
	if err != nil {
		return fmt.Errorf("open registry %s: %w", cfg.Registry.Path, err)
	}
	defer db.Close()

	if exportPath != "" {
		return exportRegistry(ctx, db, exportPath, logger)
	}

	if cfg.Registry.ImportJSON != "" {
		if err := importRegistry(ctx, db, cfg.Registry.ImportJSON, logger); err != nil {
			return err
		}
	}

	svc := zones.New(zones.Config{
		Open: zones.NewOpener(zones.SSHSettings{
			ConnectTimeout:   cfg.SSH.ConnectTimeoutDuration,
			OperationTimeout: cfg.SSH.OperationTimeoutDuration,
			KnownHostsPath:   cfg.SSH.KnownHosts,
		}, logger),
		Logger:            logger,
		DefaultNameServer: cfg.Zones.DefaultNameServer,
		DefaultAddress:    cfg.Zones.DefaultAddress,
	})

	if cfg.SSH.KnownHosts == "" {
		logger.Warn("ssh host keys are not verified; set ssh.known_hosts to enable verification")
	}
	if cfg.API.APIKey == "" {
		logger.Warn("api key not configured; the API is open to anyone who can reach it")
	}

	srv := api.New(cfg, db, svc, logger)
	logger.Info("bindzone starting",
		"addr", srv.Addr(),
		"local_zones", cfg.Zones.LocalPath,
		"registry", cfg.Registry.Path,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func importRegistry(ctx context.Context, db *database.DB, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("servers document not found, skipping import", "path", path)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := db.ImportServersJSON(ctx, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	logger.Info("servers imported", "path", path, "added", n)
	return nil
}

func exportRegistry(ctx context.Context, db *database.DB, path string, logger *slog.Logger) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := db.ExportServersJSON(ctx, f, true); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("servers exported", "path", path)
	return nil
}
