package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/brokerfees/config"
	"github.com/guttosm/brokerfees/internal/api"
	"github.com/guttosm/brokerfees/internal/fees"
	"github.com/guttosm/brokerfees/internal/logger"
	"github.com/guttosm/brokerfees/internal/middleware"
	"github.com/guttosm/brokerfees/internal/service"
	"github.com/guttosm/brokerfees/internal/storage"
	"github.com/guttosm/brokerfees/internal/validation"
)

// Components are the wired domain services shared by the HTTP server and
// the CLI modes.
type Components struct {
	Calculator *fees.Calculator
	Service    service.FeeService
	Reconciler *service.Reconciler
	// DB is nil when validation history is disabled.
	DB *sql.DB
}

// Build loads the fee rules, connects to PostgreSQL when validation history
// is enabled and wires the service layer. The returned cleanup closes the
// database connection.
func Build(cfg config.Config) (*Components, func(), error) {
	reg, err := loadRegistry(cfg.Fees.RulesPath)
	if err != nil {
		return nil, nil, err
	}
	calc := fees.NewCalculator(reg)

	c := &Components{
		Calculator: calc,
		Reconciler: service.NewReconciler(validation.NewValidator(calc), cfg.Validation.MaxRetries),
	}
	cleanup := func() {}

	var repo storage.ValidationRepository
	if cfg.Validation.History {
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		if cfg.Postgres.AutoMigrate {
			if err := Migrate(context.Background(), db); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		c.DB = db
		repo = storage.NewValidationRepository(db)
		cleanup = func() { _ = db.Close() }
	} else {
		logger.L().Warn().Msg("validation history disabled; runs are not persisted")
	}

	c.Service = service.NewFeeService(calc, repo)
	return c, cleanup, nil
}

// loadRegistry reads the rule file at path, or returns the built-in Belgian
// rule set when path is empty.
func loadRegistry(path string) (*fees.Registry, error) {
	if path == "" {
		reg := fees.DefaultRegistry()
		logger.L().Info().Int("rules", reg.Len()).Msg("using built-in fee rules")
		return reg, nil
	}
	reg, err := fees.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee rules: %w", err)
	}
	if changes := fees.Diff(fees.DefaultRegistry(), reg); len(changes) > 0 {
		for _, ch := range changes {
			logger.L().Info().Str("change", ch).Msg("fee rules differ from built-in set")
		}
	}
	return reg, nil
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Wires fee rules, services and (optionally) PostgreSQL through Build().
//   - Applies the configured rate limit.
//   - Creates the HTTP handler layer and the Gin router.
//   - Registers health and readiness probes.
//
// Returns:
//   - *gin.Engine: The router with every route mounted.
//   - func(): Cleanup that closes the database connection, if any.
//   - error: If fee rules, the database or migrations fail.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	c, cleanup, err := Build(cfg)
	if err != nil {
		return nil, nil, err
	}

	middleware.SetRateLimit(cfg.Server.RateLimitPerMinute)

	handler := api.NewHandler(c.Service, c.Reconciler)
	router := api.NewRouter(handler)

	var ping func(ctx context.Context) error
	if c.DB != nil {
		ping = c.DB.PingContext
	}
	api.NewHealthHandler(ping, c.Calculator.Registry().Len()).Register(router)

	return router, cleanup, nil
}
