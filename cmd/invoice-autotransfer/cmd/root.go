package cmd

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-autotransfer/internal/config"
	"github.com/rezonia/invoice-autotransfer/internal/report"
	"github.com/rezonia/invoice-autotransfer/internal/sapclient"
	"github.com/rezonia/invoice-autotransfer/internal/transfer"
)

var (
	version = "1.0.0"

	// Global flags
	verbose   bool
	envFile   string
	companies []string
)

var rootCmd = &cobra.Command{
	Use:   "invoice-autotransfer",
	Short: "Convert open delivery notes into invoices via the SAP Service Layer",
	Long: `invoice-autotransfer walks the configured company databases, fetches open
delivery notes for the allowed customers, and converts the eligible ones into
A/R invoices against the Service Layer.

Connection settings come from the environment (SAP_HOST, SAP_USER,
SAP_PASSWORD), optionally loaded from a .env file.

Examples:
  # One-shot run over all configured companies
  invoice-autotransfer run

  # Restrict to a single company database
  invoice-autotransfer run --companies SBO_Alianza

  # Inspect candidate notes without creating anything
  invoice-autotransfer find --card-code 04166

  # Start the HTTP API with the built-in schedule
  invoice-autotransfer serve --schedule`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file before reading config")
	rootCmd.PersistentFlags().StringSliceVar(&companies, "companies", nil, "Restrict the run to these company databases")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if envFile != "" {
		// Missing explicit file is a user error worth surfacing later; the
		// implicit .env is best effort.
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func loadConfig() config.Config {
	cfg := config.FromEnv()
	if len(companies) > 0 {
		var selected []config.Tenant
		for _, name := range companies {
			if t, ok := cfg.Tenant(name); ok {
				selected = append(selected, t)
			} else {
				selected = append(selected, config.Tenant{CompanyDB: name})
			}
		}
		cfg.Tenants = selected
	}
	return cfg
}

func newEngine(cfg config.Config, log *logrus.Logger) *transfer.Engine {
	client := sapclient.New(sapclient.Config{
		Host:               cfg.Host,
		Username:           cfg.Username,
		Password:           cfg.Password,
		Timeout:            cfg.CallTimeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, log)

	sink := report.NewFileSink(cfg.ReportsDir, cfg.GenerateReports, log)
	return transfer.NewEngine(cfg, client, log, transfer.WithSink(sink))
}
