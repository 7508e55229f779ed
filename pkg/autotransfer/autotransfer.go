// Package autotransfer provides a public API for running delivery-note
// auto-transfer against a SAP Business One Service Layer.
//
// Example usage:
//
//	engine := autotransfer.New(autotransfer.Options{
//	    Host:     "https://sap.example.com:50000/b1s/v1",
//	    Username: "manager",
//	    Password: "secret",
//	    Tenants:  autotransfer.DefaultTenants(),
//	})
//	summary := engine.RunAutoTransfer(ctx)
//	fmt.Println(summary.TotalSucceeded)
package autotransfer

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rezonia/invoice-autotransfer/internal/config"
	"github.com/rezonia/invoice-autotransfer/internal/model"
	"github.com/rezonia/invoice-autotransfer/internal/report"
	"github.com/rezonia/invoice-autotransfer/internal/sapclient"
	"github.com/rezonia/invoice-autotransfer/internal/series"
	"github.com/rezonia/invoice-autotransfer/internal/transfer"
)

// Re-export core types for the public API
type (
	Tenant          = config.Tenant
	DeliveryNote    = model.DeliveryNote
	InvoiceRequest  = model.InvoiceRequest
	DiagnosticEntry = model.DiagnosticEntry
	RunSummary      = report.RunSummary
	CompanyStats    = report.CompanyStats
	NotesQuery      = transfer.NotesQuery
	Engine          = transfer.Engine
	SeriesMap       = series.Map
)

// Re-export error types
type (
	AuthError  = model.AuthError
	FetchError = model.FetchError
)

// Options configures a standalone engine.
type Options struct {
	Host     string
	Username string
	Password string

	// Tenants defaults to the built-in company tables when empty.
	Tenants []Tenant

	// CallTimeout bounds each Service Layer call. Defaults to 30s.
	CallTimeout time.Duration

	// MaxConcurrentTenants defaults to 1 (sequential).
	MaxConcurrentTenants int

	InsecureSkipVerify bool

	// Logger defaults to a silent logger.
	Logger *logrus.Logger

	// SeriesMap defaults to the built-in production mapping.
	SeriesMap SeriesMap

	// ReportSink receives the finished report of every run. Optional.
	ReportSink report.Sink
}

// DefaultTenants returns the built-in production company tables.
func DefaultTenants() []Tenant {
	return config.FromEnv().Tenants
}

// DefaultSeriesMap returns the built-in delivery-to-invoice series mapping.
func DefaultSeriesMap() SeriesMap {
	return series.Default()
}

// New assembles an engine from the options. The zero value of most fields is
// usable; only Host, Username, Password and Tenants are required for real runs.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	cfg := config.Config{
		Host:                 opts.Host,
		Username:             opts.Username,
		Password:             opts.Password,
		Tenants:              opts.Tenants,
		CallTimeout:          opts.CallTimeout,
		MaxConcurrentTenants: opts.MaxConcurrentTenants,
		InsecureSkipVerify:   opts.InsecureSkipVerify,
	}
	if len(cfg.Tenants) == 0 {
		cfg.Tenants = DefaultTenants()
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.MaxConcurrentTenants == 0 {
		cfg.MaxConcurrentTenants = 1
	}

	client := sapclient.New(sapclient.Config{
		Host:               cfg.Host,
		Username:           cfg.Username,
		Password:           cfg.Password,
		Timeout:            cfg.CallTimeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, log)

	engineOpts := []transfer.Option{}
	if opts.SeriesMap != nil {
		engineOpts = append(engineOpts, transfer.WithSeriesMap(opts.SeriesMap))
	}
	if opts.ReportSink != nil {
		engineOpts = append(engineOpts, transfer.WithSink(opts.ReportSink))
	}

	return transfer.NewEngine(cfg, client, log, engineOpts...)
}
