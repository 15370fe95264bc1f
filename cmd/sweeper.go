package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/collection-management/internal/core/events"
	"github.com/frahmantamala/collection-management/internal/delegation"
	delegationPostgres "github.com/frahmantamala/collection-management/internal/delegation/postgres"
	"github.com/frahmantamala/collection-management/pkg/logger"
	"github.com/spf13/cobra"
)

// sweeperCmd runs the delegation expiry sweep as a dedicated worker, for
// deployments that keep periodic work off the API instances.
var sweeperCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Start the delegation expiry sweeper",
	Long:  `Run the periodic sweep that expires overdue delegations and notifies affected delegatees.`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweeper()
	},
}

func startSweeper() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize orm: %v\n", err)
		os.Exit(1)
	}

	eventBus := events.NewEventBus(lg)
	sink, amqpConn, err := initNotificationSink(config.Notification, eventBus, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize notification sink: %v\n", err)
		os.Exit(1)
	}

	service := delegation.NewService(
		delegationPostgres.NewDelegationRepository(gormDB),
		delegationPostgres.NewCaseOwnershipSource(gormDB),
		delegationPostgres.NewPartySource(gormDB),
		sink,
		eventBus,
		lg,
	)
	sweeper := delegation.NewSweeper(service, config.Sweeper.Interval, lg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	lg.Info("received signal, shutting down sweeper", "signal", sig)
	cancel()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		lg.Warn("shutdown timeout reached, forcing exit")
	}

	if amqpConn != nil {
		_ = amqpConn.Close()
	}
	_ = db.Close()
	lg.Info("sweeper stopped")
}
