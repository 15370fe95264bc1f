package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/collection-management/internal"
	"github.com/frahmantamala/collection-management/internal/auth"
	authPostgres "github.com/frahmantamala/collection-management/internal/auth/postgres"
	"github.com/frahmantamala/collection-management/internal/cases"
	casesPostgres "github.com/frahmantamala/collection-management/internal/cases/postgres"
	"github.com/frahmantamala/collection-management/internal/core/events"
	"github.com/frahmantamala/collection-management/internal/delegation"
	delegationPostgres "github.com/frahmantamala/collection-management/internal/delegation/postgres"
	"github.com/frahmantamala/collection-management/internal/employee"
	employeePostgres "github.com/frahmantamala/collection-management/internal/employee/postgres"
	"github.com/frahmantamala/collection-management/internal/notification"
	"github.com/frahmantamala/collection-management/internal/permission"
	permissionPostgres "github.com/frahmantamala/collection-management/internal/permission/postgres"
	"github.com/frahmantamala/collection-management/internal/report"
	reportPostgres "github.com/frahmantamala/collection-management/internal/report/postgres"
	"github.com/frahmantamala/collection-management/internal/transport/rest"
	"github.com/frahmantamala/collection-management/internal/transport/swagger"
	"github.com/frahmantamala/collection-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Logger   *slog.Logger
	Handlers rest.Handlers
	Authz    *auth.Authorizer
	Sweeper  *delegation.Sweeper
	AMQPConn *amqp.Connection
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid OpenAPI spec: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Authz,
		deps.Config.Server.AllowedOriginsList(), deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// The sweeper shares the process with the API. A dedicated worker can run
	// it instead via the sweeper subcommand.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go deps.Sweeper.Run(sweepCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		stopSweeper()

		ctx, cancel := internal.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if deps.AMQPConn != nil {
			if err := deps.AMQPConn.Close(); err != nil {
				deps.Logger.Error("amqp close error", "error", err)
			}
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		stopSweeper()
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	sink, amqpConn, err := initNotificationSink(config.Notification, eventBus, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notification sink: %w", err)
	}

	// auth
	authRepo := authPostgres.NewRepository(gormDB)
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	resolver := auth.NewResolver(authRepo, lg)
	authz := auth.NewAuthorizer(resolver, lg)
	scopeFilter := auth.NewScopeFilter(auth.DefaultScopeExceptions())

	// delegation
	delegationRepo := delegationPostgres.NewDelegationRepository(gormDB)
	delegationService := delegation.NewService(
		delegationRepo,
		delegationPostgres.NewCaseOwnershipSource(gormDB),
		delegationPostgres.NewPartySource(gormDB),
		sink,
		eventBus,
		lg,
	)
	delegationHandler := delegation.NewHandler(delegationService)
	sweeper := delegation.NewSweeper(delegationService, config.Sweeper.Interval, lg)

	// cases
	caseRepo := casesPostgres.NewCaseRepository(gormDB)
	caseService := cases.NewService(caseRepo, scopeFilter, delegationService,
		casesPostgres.NewDirectorySource(gormDB), lg)
	caseHandler := cases.NewHandler(caseService)

	// employees
	employeeService := employee.NewService(employeePostgres.NewEmployeeRepository(gormDB))
	employeeHandler := employee.NewHandler(employeeService)

	// permissions
	permissionService := permission.NewService(permissionPostgres.NewPermissionRepository(gormDB), lg)
	permissionHandler := permission.NewHandler(permissionService)

	// reports
	reportService := report.NewService(
		reportPostgres.NewReportRepository(gormDB),
		reportPostgres.NewAllowlistRepository(gormDB),
		scopeFilter,
		lg,
	)
	reportHandler := report.NewHandler(reportService)

	return &Dependencies{
		Config: config,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
		Logger: lg,
		Handlers: rest.Handlers{
			Auth:       authHandler,
			Employee:   employeeHandler,
			Cases:      caseHandler,
			Delegation: delegationHandler,
			Report:     reportHandler,
			Permission: permissionHandler,
		},
		Authz:    authz,
		Sweeper:  sweeper,
		AMQPConn: amqpConn,
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already-pooled pgx connection.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
}

// initNotificationSink connects the AMQP sink when a DSN is configured and
// falls back to the in-process event bus otherwise, so a missing broker never
// blocks delegation work.
func initNotificationSink(cfg internal.NotificationConfig, bus *events.EventBus, lg *slog.Logger) (notification.Sink, *amqp.Connection, error) {
	if cfg.AMQPDSN == "" {
		lg.Info("no AMQP DSN configured, using in-process notification sink")
		return notification.NewEventBusSink(bus), nil, nil
	}

	conn, err := amqp.Dial(cfg.AMQPDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	sink, err := notification.NewAMQPSink(conn, cfg.Queue, cfg.PublishTimeout, lg)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to set up AMQP sink: %w", err)
	}
	return sink, conn, nil
}
