package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-autotransfer/internal/schedule"
	"github.com/rezonia/invoice-autotransfer/internal/server"
)

var (
	serverAddr     string
	serverDebug    bool
	readTimeout    time.Duration
	writeTimeout   time.Duration
	withSchedule   bool
	scheduleTZ     string
	scheduledLimit time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server exposing the auto-transfer engine.

Endpoints:
  - POST /api/v1/auto-transfer  - Run one auto-transfer pass
  - GET  /api/v1/notes          - Inspect candidate notes (read-only)
  - GET  /health                - Health check

With --schedule the built-in production windows also trigger runs:
weekday evenings, Saturday noon, a 72-hour sweep, and month-end evenings,
all in the configured business timezone.

Examples:
  invoice-autotransfer serve
  invoice-autotransfer serve --address :8080 --schedule
  invoice-autotransfer serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 35*time.Minute, "HTTP write timeout")
	serveCmd.Flags().BoolVar(&withSchedule, "schedule", false, "Enable the built-in run schedule")
	serveCmd.Flags().StringVar(&scheduleTZ, "timezone", schedule.DefaultTimezone, "Timezone for scheduled runs")
	serveCmd.Flags().DurationVar(&scheduledLimit, "scheduled-run-timeout", 30*time.Minute, "Timeout for scheduled runs")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.Host == "" {
		return fmt.Errorf("SAP_HOST is not set")
	}

	log := newLogger()
	engine := newEngine(cfg, log)

	if withSchedule {
		loc, err := time.LoadLocation(scheduleTZ)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", scheduleTZ, err)
		}

		sched, err := schedule.NewScheduler(loc, schedule.DefaultWindows(), log, func(ctx context.Context) {
			ctx, cancel := context.WithTimeout(ctx, scheduledLimit)
			defer cancel()
			engine.RunAutoTransfer(ctx)
		})
		if err != nil {
			return fmt.Errorf("building schedule: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		log.WithField("timezone", scheduleTZ).Info("run schedule enabled")
	}

	srv := server.NewServer(&server.Config{
		Address:      serverAddr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		RunTimeout:   scheduledLimit,
		Debug:        serverDebug,
	}, engine)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	log.WithField("address", serverAddr).Info("starting server")
	return srv.Run()
}
