package app

import (
	"context"
	"database/sql"
	"fmt"

	"occupancy_backend/internal/config"
	"occupancy_backend/internal/database"
	"occupancy_backend/internal/repositories"
	"occupancy_backend/internal/services"
	"occupancy_backend/pkg/utils"
)

// App holds the wired repositories and services shared by the server and the CLI.
type App struct {
	DB        *sql.DB
	Snapshots repositories.SnapshotRepository

	Metrics services.MetricsService
	Reports services.ReportService
	Auth    services.AuthService
	Tokens  *utils.TokenManager
}

// Options toggles the optional parts of the wiring.
type Options struct {
	// WithAuth requires JWT_SECRET and builds the auth service.
	WithAuth bool
	// SnapshotDBPath overrides cfg.SnapshotDBPath when set.
	SnapshotDBPath string
}

// New connects to PostgreSQL, opens the snapshot store and wires the services.
func New(cfg *config.Config, opts Options) (*App, error) {
	db, err := database.Open(cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}

	if err := database.ApplySchema(context.Background(), db, cfg.DBSchemaPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	snapshotPath := cfg.SnapshotDBPath
	if opts.SnapshotDBPath != "" {
		snapshotPath = opts.SnapshotDBPath
	}
	snapshots, err := repositories.OpenSnapshotRepository(snapshotPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	catalog := repositories.NewPropertyRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	commissionRepo := repositories.NewCommissionRepository(db)

	commissionService := services.NewCommissionService(commissionRepo, cfg.DefaultCommissionPercent)
	metricsService := services.NewMetricsService(catalog, bookingRepo, commissionService)
	reportService := services.NewReportService(catalog, bookingRepo, metricsService,
		services.WithSnapshotRepository(snapshots),
		services.WithLimitNights(cfg.LimitNightsPerYear),
	)

	a := &App{
		DB:        db,
		Snapshots: snapshots,
		Metrics:   metricsService,
		Reports:   reportService,
	}

	if opts.WithAuth {
		tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("JWT_SECRET: %w", err)
		}
		a.Tokens = tokens
		a.Auth = services.NewAuthService(repositories.NewAuthRepository(db), tokens)
	}

	utils.LogInfo("Application wired", map[string]interface{}{
		"snapshot_db":     snapshotPath,
		"limit_nights":    cfg.LimitNightsPerYear,
		"default_percent": cfg.DefaultCommissionPercent.String(),
		"auth":            opts.WithAuth,
	})
	return a, nil
}

// Close releases the database handles.
func (a *App) Close() error {
	var firstErr error
	if a.Snapshots != nil {
		if err := a.Snapshots.Close(); err != nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
