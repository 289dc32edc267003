package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nhisverify/nhisverify/internal/config"
	"github.com/nhisverify/nhisverify/internal/domain/catalog"
	"github.com/nhisverify/nhisverify/internal/domain/claim"
	"github.com/nhisverify/nhisverify/internal/domain/encounter"
	"github.com/nhisverify/nhisverify/internal/domain/member"
	"github.com/nhisverify/nhisverify/internal/domain/visit"
	"github.com/nhisverify/nhisverify/internal/platform/auth"
	"github.com/nhisverify/nhisverify/internal/platform/db"
	"github.com/nhisverify/nhisverify/internal/platform/facematch"
	"github.com/nhisverify/nhisverify/internal/platform/imagestore"
	"github.com/nhisverify/nhisverify/internal/platform/middleware"
	"github.com/nhisverify/nhisverify/internal/platform/oracle"
	"github.com/nhisverify/nhisverify/internal/worker/adjudicator"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "verify-server",
		Short: "NHIS member verification and claims API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Start the claims adjudication worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENV") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newImageStore picks S3 when a bucket is configured, otherwise the
// in-memory store for local development.
func newImageStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (imagestore.Store, error) {
	if cfg.ImageBucket == "" {
		logger.Warn().Msg("IMAGE_BUCKET not set, using in-memory image store")
		return imagestore.NewMemoryStore(), nil
	}
	awsCfg, err := imagestore.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return imagestore.NewS3Store(awsCfg, cfg.ImageBucket, cfg.ImageBaseURL, cfg.ImageKMSKeyID), nil
}

func newScorer(cfg *config.Config, logger zerolog.Logger) facematch.Scorer {
	if cfg.FacematchURL == "" {
		logger.Warn().Msg("FACEMATCH_URL not set, using static face comparison")
		return facematch.StaticScorer{Result: facematch.Result{IsMatch: true, Confidence: 1}}
	}
	return facematch.NewHTTPScorer(cfg.FacematchURL, cfg.FacematchAPIKey, 15*time.Second)
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	store, err := newImageStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize image store")
	}
	scorer := newScorer(cfg, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M", "12M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

	e.GET("/health", db.HealthHandler(pool))

	// Repositories and services
	memberRepo := member.NewRepo(pool)
	catalogRepo := catalog.NewRepo(pool)
	visitRepo := visit.NewRepo(pool)
	tokenRepo := encounter.NewRepo(pool)
	claimRepo := claim.NewRepo(pool)

	catalogSvc := catalog.NewService(catalogRepo)
	visitSvc := visit.NewService(visitRepo)
	encounterSvc := encounter.NewService(tokenRepo, memberRepo, visitSvc, catalogSvc, store, scorer, pool)
	claimSvc := claim.NewService(claimRepo, tokenRepo)

	apiV1 := e.Group("/api/v1")
	member.NewHandler(member.NewService(memberRepo)).RegisterRoutes(apiV1)
	catalog.NewHandler(catalogSvc).RegisterRoutes(apiV1)
	encounter.NewHandler(encounterSvc).RegisterRoutes(apiV1)
	visit.NewHandler(visitSvc).RegisterRoutes(apiV1)
	claim.NewHandler(claimSvc).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func runWorker() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	var assessor oracle.Assessor
	if cfg.AnthropicAPIKey == "" {
		logger.Warn().Msg("ANTHROPIC_API_KEY not set, flagging every claim for manual review")
		assessor = oracle.StaticAssessor{Verdict: oracle.Verdict{
			Status:      oracle.StatusFlagged,
			FinalPayout: 0,
			Reason:      "Automated assessment is not configured. Manual review required.",
		}}
	} else {
		assessor = oracle.NewAnthropicAssessor(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	}

	w := adjudicator.New(
		claim.NewRepo(pool),
		catalog.NewService(catalog.NewRepo(pool)),
		assessor,
		cfg.WorkerPollInterval,
		logger,
	)

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
