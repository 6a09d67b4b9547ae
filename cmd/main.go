package main

//
//  @title           brokerfees API
//  @version         1.0
//  @description     Broker fee calculation and comparison-table validation service.
//  @termsOfService  https://github.com/guttosm/brokerfees
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/brokerfees
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        fees
//  @tag.description Fee lookup with explanations
//
//  @tag.name        comparison
//  @tag.description Ground-truth comparison tables and persona rankings
//
//  @tag.name        tables
//  @tag.description Validation, patching and reconciliation of generated tables
//
//  @tag.name        validations
//  @tag.description History of validation runs
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/guttosm/brokerfees/config"
	_ "github.com/guttosm/brokerfees/docs" // swagger docs
	"github.com/guttosm/brokerfees/internal/app"
	"github.com/guttosm/brokerfees/internal/ingestion"
	"github.com/guttosm/brokerfees/internal/logger"
	"github.com/guttosm/brokerfees/internal/service"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router: The HTTP handler to serve.
//   - port: Port to listen on.
//
// Returns:
//   - *http.Server: The running server, for graceful shutdown.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx: Parent context of the shutdown deadline.
//   - server: The server returned by startServer.
//   - cleanup: Releases application resources after shutdown.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// printTable writes the ground-truth comparison table for brokers as JSON.
func printTable(w io.Writer, svc service.FeeService, brokers string) error {
	var list []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			list = append(list, b)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(svc.Comparison(list))
}

// fileSummary is one line of validate-mode output.
type fileSummary struct {
	File    string `json:"file"`
	RunID   string `json:"run_id,omitempty"`
	Valid   bool   `json:"valid"`
	Checked int    `json:"checked"`
	Passed  int    `json:"passed"`
	Errors  int    `json:"errors"`
	Patched int    `json:"patched,omitempty"`
	Output  string `json:"output,omitempty"`
}

// runValidate validates every table file in dir and writes one JSON line per
// file to w. It returns the number of invalid tables.
func runValidate(ctx context.Context, w io.Writer, svc service.FeeService, dir string, opts ingestion.Options) (int, error) {
	results, err := ingestion.ProcessDirectory(ctx, dir, svc, opts)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	invalid := 0
	for _, r := range results {
		if !r.Result.Valid {
			invalid++
		}
		if err := enc.Encode(fileSummary{
			File:    r.File,
			RunID:   r.RunID,
			Valid:   r.Result.Valid,
			Checked: r.Result.Checked,
			Passed:  r.Result.Passed,
			Errors:  len(r.Result.Errors),
			Patched: r.Patched,
			Output:  r.Output,
		}); err != nil {
			return invalid, fmt.Errorf("write summary: %w", err)
		}
	}
	return invalid, nil
}

// main is the entry point of the brokerfees application.
//
// Modes (selected via --mode flag):
//   - api:      Starts the REST API.
//   - validate: Validates every *.json comparison table in --dir; exits 1 when any table is invalid.
//   - table:    Prints the ground-truth comparison table as JSON.
//   - migrate:  Applies the database migrations.
//
// Flags:
//   - --mode:     Execution mode. Default: "api".
//   - --dir:      Directory containing table files. Default: "./data/tables".
//   - --patch:    Write <name>.patched.json for invalid tables (validate mode).
//   - --parallel: Files validated concurrently, capped at 8 (0 = config VALIDATION_PARALLEL).
//   - --brokers:  Comma-separated brokers for table mode (all when empty).
//   - --port:     Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	mode := flag.String("mode", "api", "Mode: api, validate, table or migrate")
	dir := flag.String("dir", "./data/tables", "Directory with comparison table files")
	patch := flag.Bool("patch", false, "Write <name>.patched.json for invalid tables")
	parallel := flag.Int("parallel", 0, "How many files to validate concurrently, at most 8 (0=config)")
	brokers := flag.String("brokers", "", "Comma-separated brokers for table mode")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	case "validate":
		// stdout carries the per-file summaries.
		logger.SetOutput(os.Stderr)
		c, cleanup, err := app.Build(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}
		if *parallel == 0 {
			*parallel = config.AppConfig.Validation.Parallel
		}
		invalid, err := runValidate(ctx, os.Stdout, c.Service, *dir, ingestion.Options{Parallel: *parallel, Patch: *patch})
		cleanup()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("validation failed")
		}
		logger.L().Info().Int("invalid", invalid).Msg("validation completed")
		if invalid > 0 && !*patch {
			os.Exit(1)
		}

	case "table":
		logger.SetOutput(os.Stderr)
		cfg := config.AppConfig
		cfg.Validation.History = false
		c, cleanup, err := app.Build(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}
		defer cleanup()
		if err := printTable(os.Stdout, c.Service, *brokers); err != nil {
			logger.L().Fatal().Err(err).Msg("print table")
		}

	case "migrate":
		db, err := app.InitPostgres(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()
		if err := app.Migrate(ctx, db); err != nil {
			logger.L().Fatal().Err(err).Msg("migration failed")
		}
		logger.L().Info().Msg("migrations applied")

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
