package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hospital/hms/internal/config"
	"github.com/hospital/hms/internal/domain/admin"
	"github.com/hospital/hms/internal/domain/billing"
	"github.com/hospital/hms/internal/domain/clinical"
	"github.com/hospital/hms/internal/domain/dashboard"
	"github.com/hospital/hms/internal/domain/identity"
	"github.com/hospital/hms/internal/domain/scheduling"
	"github.com/hospital/hms/internal/platform/auth"
	"github.com/hospital/hms/internal/platform/db"
	"github.com/hospital/hms/internal/platform/httpx"
	"github.com/hospital/hms/internal/platform/logging"
	"github.com/hospital/hms/internal/platform/metrics"
	"github.com/hospital/hms/internal/platform/middleware"
	"github.com/hospital/hms/migrations"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0-dev"

const (
	shutdownTimeout = 15 * time.Second
	requestTimeout  = 30 * time.Second
	maxBodySize     = "1M"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hms-server",
		Short:         "Hospital management API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
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

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// openPool loads the config and connects to the database.
func openPool(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrations.FS).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrations.FS).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}

	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a user with the admin role",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}

			ctx := cmd.Context()
			cfg, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := admin.NewService(
				admin.NewDepartmentRepo(pool),
				admin.NewRoleRepo(pool),
				admin.NewUserRepo(pool),
				auth.NewTokenManager(cfg.SigningKey(), cfg.JWTTTL),
				cfg.BcryptCost,
				nil,
				zerolog.Nop(),
			)
			u, err := svc.CreateAdmin(ctx, username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin user %q (id %d).\n", u.Username, u.ID)
			return nil
		},
	}
	createAdmin.Flags().String("username", "", "Login name of the new admin")
	createAdmin.Flags().String("password", "", "Password of the new admin")
	cmd.AddCommand(createAdmin)

	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser := logging.New(cfg)
	defer logCloser.Close()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}
	tokens := auth.NewTokenManager(cfg.SigningKey(), cfg.JWTTTL)

	e := newEcho(cfg, logger, m, tokens)
	e.GET("/health/db", db.PoolHealthHandler(pool))
	registerDomains(e.Group("/api"), pool, cfg, logger, m, tokens)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newEcho builds the server with the global middleware chain and the routes
// that need no database. m may be nil when metrics are disabled.
func newEcho(cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics, tokens *auth.TokenManager) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpx.ErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if m != nil {
		e.Use(m.Middleware())
	}
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	e.Use(echomw.BodyLimit(maxBodySize))
	e.Use(middleware.RequestTimeout(requestTimeout))

	authCfg := auth.JWTConfig{Tokens: tokens}
	if cfg.IsDev() {
		logger.Warn().Str("env", cfg.Env).
			Msg("development mode: requests without a token run as admin; set ENV=production to enforce authentication")
		e.Use(auth.DevAuthMiddleware(authCfg))
	} else {
		e.Use(auth.JWTMiddleware(authCfg))
	}
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	return e
}

// registerDomains wires repositories, services and handlers onto api.
func registerDomains(api *echo.Group, pool *pgxpool.Pool, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics, tokens *auth.TokenManager) {
	tx := db.NewTransactor(pool)

	patientRepo := identity.NewPatientRepo(pool)
	staffRepo := identity.NewStaffRepo(pool)
	appointmentRepo := scheduling.NewAppointmentRepo(pool)
	recordRepo := clinical.NewMedicalRecordRepo(pool)
	billingRepo := billing.NewBillingRepo(pool)

	identitySvc := identity.NewService(patientRepo, staffRepo, identity.Dependents{
		Appointments:   appointmentRepo,
		MedicalRecords: recordRepo,
		Billing:        billingRepo,
	}, tx, m, logger.With().Str("domain", "identity").Logger())

	schedulingSvc := scheduling.NewService(appointmentRepo, identitySvc, recordRepo, tx, m,
		logger.With().Str("domain", "scheduling").Logger())
	clinicalSvc := clinical.NewService(recordRepo, identitySvc, schedulingSvc)
	billingSvc := billing.NewService(billingRepo, identitySvc)
	adminSvc := admin.NewService(
		admin.NewDepartmentRepo(pool),
		admin.NewRoleRepo(pool),
		admin.NewUserRepo(pool),
		tokens,
		cfg.BcryptCost,
		m,
		logger.With().Str("domain", "admin").Logger(),
	)
	dashboardSvc := dashboard.NewService(dashboard.NewMeasureRepo(pool), logger)

	loginLimit := middleware.DefaultRateLimitConfig()
	if cfg.LoginRateLimitRPS > 0 {
		loginLimit.RequestsPerSecond = cfg.LoginRateLimitRPS
	}
	if cfg.LoginRateLimitBurst > 0 {
		loginLimit.BurstSize = cfg.LoginRateLimitBurst
	}

	admin.NewHandler(adminSvc).RegisterRoutes(api, middleware.RateLimit(loginLimit))
	identity.NewHandler(identitySvc).RegisterRoutes(api)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(api)
	clinical.NewHandler(clinicalSvc).RegisterRoutes(api)
	billing.NewHandler(billingSvc).RegisterRoutes(api)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(api)
}
