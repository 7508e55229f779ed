// Package report accumulates per-tenant statistics and success/error records
// for one auto-transfer run. A TenantReport is owned by exactly one worker;
// merging into the run-level Report is the only synchronized operation.
package report

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-autotransfer/internal/classify"
	"github.com/rezonia/invoice-autotransfer/internal/filter"
)

// Internal report codes, carried over from the legacy report format.
const (
	CodeCreateFailed    = -5000
	CodeCooldown        = -5001
	CodeAlreadyInvoiced = -5002
	CodeValidation      = -5003
	CodeBadFormat       = -5004
	CodeAuth            = -5005
	CodeConnection      = -5006
	CodeSeries          = -5007
	CodeCustomer        = -5008
	CodeItems           = -5009
	CodeQuantities      = -5010
	CodeMixedRates      = -5011
)

// CodeForReason maps a filter reason to its report code.
func CodeForReason(r filter.Reason) int {
	switch r {
	case filter.ReasonCooldownPending:
		return CodeCooldown
	case filter.ReasonMixedExchangeRates:
		return CodeMixedRates
	case filter.ReasonMissingDocDate, filter.ReasonMissingCurrency:
		return CodeBadFormat
	default:
		return CodeValidation
	}
}

// CodeForClassified maps a classified submission error to its report code.
func CodeForClassified(c classify.Result) int {
	switch c.Kind {
	case classify.KindAlreadyInvoiced:
		return CodeAlreadyInvoiced
	case classify.KindQuantityExceeded:
		return CodeQuantities
	case classify.KindNetwork:
		return CodeConnection
	case classify.KindValidation:
		switch c.SubReason {
		case classify.SubSeries:
			return CodeSeries
		case classify.SubCustomer:
			return CodeCustomer
		case classify.SubItems:
			return CodeItems
		case classify.SubQuantity:
			return CodeQuantities
		default:
			return CodeValidation
		}
	default:
		return CodeCreateFailed
	}
}

// CompanyStats is the per-tenant accumulator.
type CompanyStats struct {
	TotalFound      int `json:"totalFound"`
	AlreadyInvoiced int `json:"alreadyInvoiced"`
	Ineligible      int `json:"ineligible"`
	Errors          int `json:"errors"`
	Succeeded       int `json:"succeeded"`
}

// ErrorRecord is one recorded failure or skip.
type ErrorRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	Company       string    `json:"company"`
	DocEntry      int       `json:"docEntry,omitempty"`
	Code          int       `json:"code"`
	Message       string    `json:"message"`
	RemoteMessage string    `json:"remoteMessage,omitempty"`
	Detail        string    `json:"detail,omitempty"`
}

// SuccessRecord is one created invoice.
type SuccessRecord struct {
	Timestamp       time.Time       `json:"timestamp"`
	Company         string          `json:"company"`
	InvoiceDocEntry int             `json:"invoiceDocEntry"`
	BaseEntry       int             `json:"baseEntry"`
	CardCode        string          `json:"cardCode"`
	DocDate         time.Time       `json:"docDate"`
	TotalLines      int             `json:"totalLines"`
	DocTotal        decimal.Decimal `json:"docTotal"`
}

// TenantReport accumulates one tenant's outcomes. Not safe for concurrent
// use; each worker owns its own and merges it once at the end.
type TenantReport struct {
	Company   string
	Stats     CompanyStats
	Errors    []ErrorRecord
	Successes []SuccessRecord
}

// NewTenantReport creates an empty accumulator for one company.
func NewTenantReport(company string) *TenantReport {
	return &TenantReport{Company: company}
}

// AddFound counts fetched notes.
func (tr *TenantReport) AddFound(n int) {
	tr.Stats.TotalFound += n
}

// AddIneligible records a failed filter verdict.
func (tr *TenantReport) AddIneligible(docEntry int, reason filter.Reason, detail string) {
	tr.Stats.Ineligible++
	tr.Errors = append(tr.Errors, ErrorRecord{
		Timestamp: time.Now(),
		Company:   tr.Company,
		DocEntry:  docEntry,
		Code:      CodeForReason(reason),
		Message:   string(reason),
		Detail:    detail,
	})
}

// AddAlreadyInvoiced records an idempotency short-circuit. Not an error.
func (tr *TenantReport) AddAlreadyInvoiced(docEntry int) {
	tr.Stats.AlreadyInvoiced++
	tr.Errors = append(tr.Errors, ErrorRecord{
		Timestamp: time.Now(),
		Company:   tr.Company,
		DocEntry:  docEntry,
		Code:      CodeAlreadyInvoiced,
		Message:   "already invoiced",
	})
}

// AddError records a tenant- or note-level failure.
func (tr *TenantReport) AddError(docEntry, code int, message, remoteMessage, detail string) {
	tr.Stats.Errors++
	tr.Errors = append(tr.Errors, ErrorRecord{
		Timestamp:     time.Now(),
		Company:       tr.Company,
		DocEntry:      docEntry,
		Code:          code,
		Message:       message,
		RemoteMessage: remoteMessage,
		Detail:        detail,
	})
}

// AddSuccess records a created invoice.
func (tr *TenantReport) AddSuccess(rec SuccessRecord) {
	rec.Timestamp = time.Now()
	rec.Company = tr.Company
	tr.Stats.Succeeded++
	tr.Successes = append(tr.Successes, rec)
}

// Report is the run-level aggregate.
type Report struct {
	mu        sync.Mutex
	startedAt time.Time
	tenants   map[string]*TenantReport
}

// New creates a fresh report. One per RunAutoTransfer invocation.
func New() *Report {
	return &Report{
		startedAt: time.Now(),
		tenants:   make(map[string]*TenantReport),
	}
}

// StartedAt returns the run start time.
func (r *Report) StartedAt() time.Time {
	return r.startedAt
}

// Merge folds one tenant's accumulator into the run report. Safe to call from
// concurrent workers.
func (r *Report) Merge(tr *TenantReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[tr.Company] = tr
}

// RunSummary is what RunAutoTransfer returns to its caller.
type RunSummary struct {
	StartedAt            time.Time               `json:"startedAt"`
	Duration             time.Duration           `json:"duration"`
	TotalFound           int                     `json:"totalFound"`
	TotalSucceeded       int                     `json:"totalSucceeded"`
	TotalErrors          int                     `json:"totalErrors"`
	TotalAlreadyInvoiced int                     `json:"totalAlreadyInvoiced"`
	TotalIneligible      int                     `json:"totalIneligible"`
	PerTenant            map[string]CompanyStats `json:"perTenant"`
}

// Summary aggregates all tenant stats into the run-level totals.
func (r *Report) Summary() RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := RunSummary{
		StartedAt: r.startedAt,
		Duration:  time.Since(r.startedAt),
		PerTenant: make(map[string]CompanyStats, len(r.tenants)),
	}
	for name, tr := range r.tenants {
		s.PerTenant[name] = tr.Stats
		s.TotalFound += tr.Stats.TotalFound
		s.TotalSucceeded += tr.Stats.Succeeded
		s.TotalErrors += tr.Stats.Errors
		s.TotalAlreadyInvoiced += tr.Stats.AlreadyInvoiced
		s.TotalIneligible += tr.Stats.Ineligible
	}
	return s
}

// AllErrors returns every recorded error, grouped by company name.
func (r *Report) AllErrors() []ErrorRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ErrorRecord
	for _, name := range r.sortedCompanies() {
		out = append(out, r.tenants[name].Errors...)
	}
	return out
}

// AllSuccesses returns every recorded success, grouped by company name.
func (r *Report) AllSuccesses() []SuccessRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []SuccessRecord
	for _, name := range r.sortedCompanies() {
		out = append(out, r.tenants[name].Successes...)
	}
	return out
}

// sortedCompanies must be called with r.mu held.
func (r *Report) sortedCompanies() []string {
	names := make([]string, 0, len(r.tenants))
	for name := range r.tenants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sink receives the finished report at the end of a run. Implementations own
// persistence; the engine only hands the report over.
type Sink interface {
	Write(ctx context.Context, r *Report) error
}
