// Package transfer drives the per-tenant, per-document auto-transfer flow:
// open a session, page through candidate delivery notes, filter, check
// idempotency, build and submit invoices, and aggregate the run report.
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/invoice-autotransfer/internal/classify"
	"github.com/rezonia/invoice-autotransfer/internal/config"
	"github.com/rezonia/invoice-autotransfer/internal/filter"
	"github.com/rezonia/invoice-autotransfer/internal/model"
	"github.com/rezonia/invoice-autotransfer/internal/money"
	"github.com/rezonia/invoice-autotransfer/internal/report"
	"github.com/rezonia/invoice-autotransfer/internal/sapclient"
	"github.com/rezonia/invoice-autotransfer/internal/series"
)

// ServiceLayer is the remote surface the engine drives. Implemented by
// sapclient.Client; faked in tests.
type ServiceLayer interface {
	Login(ctx context.Context, companyDB string) (model.Session, error)
	Logout(ctx context.Context, sess model.Session) error
	DeliveryNotes(ctx context.Context, sess model.Session, cardCodes []string, before time.Time, page int) ([]model.DeliveryNote, error)
	InvoiceExistsForBase(ctx context.Context, sess model.Session, baseEntry int) (bool, error)
	CreateInvoice(ctx context.Context, sess model.Session, req model.InvoiceRequest) (int, error)
}

// Engine is the run orchestrator.
type Engine struct {
	cfg      config.Config
	sl       ServiceLayer
	series   series.Map
	pipeline *filter.Pipeline
	sink     report.Sink
	log      *logrus.Logger
	now      func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithSink sets the report persistence collaborator.
func WithSink(sink report.Sink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithSeriesMap overrides the default series remap table.
func WithSeriesMap(m series.Map) Option {
	return func(e *Engine) {
		e.series = m
	}
}

// WithClock overrides the engine's notion of "now". Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine with the given configuration and remote client.
func NewEngine(cfg config.Config, sl ServiceLayer, log *logrus.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		sl:     sl,
		series: series.Default(),
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pipeline = filter.NewPipeline(filter.WithClock(e.now))
	return e
}

// RunAutoTransfer executes one full run across all configured tenants and
// returns the summary. Partial failures never abort the run; every failure is
// converted into a report entry. Cancellation stops further remote work but
// still closes any open session before returning.
func (e *Engine) RunAutoTransfer(ctx context.Context) report.RunSummary {
	r := report.New()

	limit := e.cfg.MaxConcurrentTenants
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for _, tenant := range e.cfg.Tenants {
		tenant := tenant
		g.Go(func() error {
			r.Merge(e.processTenant(ctx, tenant))
			return nil
		})
	}
	g.Wait()

	if e.sink != nil {
		if err := e.sink.Write(ctx, r); err != nil {
			e.log.WithError(err).Error("writing run report failed")
		}
	}

	summary := r.Summary()
	e.log.WithFields(logrus.Fields{
		"found":     summary.TotalFound,
		"succeeded": summary.TotalSucceeded,
		"errors":    summary.TotalErrors,
		"duration":  summary.Duration.String(),
	}).Info("auto-transfer run finished")
	return summary
}

// processTenant handles one tenant's full cycle. The returned accumulator is
// owned by this call until merged.
func (e *Engine) processTenant(ctx context.Context, tenant config.Tenant) (tr *report.TenantReport) {
	tr = report.NewTenantReport(tenant.CompanyDB)
	log := e.log.WithField("company", tenant.DisplayName())
	log.Info("processing company")

	sess, err := e.sl.Login(ctx, tenant.CompanyDB)
	if err != nil {
		log.WithError(err).Warn("login failed, skipping company")
		tr.AddError(0, report.CodeAuth, "login failed", err.Error(), "")
		return tr
	}

	// Logout runs on every exit path, including panics below. Uses a fresh
	// context so a cancelled run still releases the session.
	defer e.closeSession(sess, log)
	defer func() {
		if p := recover(); p != nil {
			log.WithField("panic", p).Error("company processing panicked")
			tr.AddError(0, report.CodeCreateFailed, "processing panicked", fmt.Sprint(p), "")
		}
	}()

	// Pages advance by $skip while submissions close notes and shrink the
	// open result set, so later pages can step over still-open notes.
	// Those are picked up by the next scheduled run.
	today := e.now()
	for page := 0; ; page++ {
		if ctx.Err() != nil {
			log.Warn("run cancelled, stopping company")
			tr.AddError(0, report.CodeConnection, "run cancelled", ctx.Err().Error(), "")
			break
		}

		notes, err := e.sl.DeliveryNotes(ctx, sess, tenant.AllowedCardCodes, today, page)
		if err != nil {
			// A failed page is treated as empty; other tenants are unaffected.
			log.WithError(err).Error("fetching delivery notes failed")
			tr.AddError(0, report.CodeConnection, "fetching delivery notes failed", err.Error(), fmt.Sprintf("page %d", page))
			break
		}

		tr.AddFound(len(notes))
		for _, note := range notes {
			e.processNote(ctx, tenant, sess, note, tr, log)
		}

		if len(notes) < sapclient.PageSize {
			break
		}
	}
	return tr
}

// processNote runs filter, idempotency check, build and submit for one note.
// Notes within a tenant are strictly sequential.
func (e *Engine) processNote(ctx context.Context, tenant config.Tenant, sess model.Session, note model.DeliveryNote, tr *report.TenantReport, log *logrus.Entry) {
	verdict := e.pipeline.Evaluate(tenant, note)
	if !verdict.Eligible {
		log.WithFields(logrus.Fields{
			"docEntry": note.DocEntry,
			"reason":   verdict.Reason,
		}).Info("note ineligible")
		tr.AddIneligible(note.DocEntry, verdict.Reason, verdict.Detail)
		return
	}

	exists, err := e.sl.InvoiceExistsForBase(ctx, sess, note.DocEntry)
	if err != nil {
		// Lookup failure means "unknown"; proceed as not yet invoiced.
		log.WithError(err).WithField("docEntry", note.DocEntry).
			Warn("idempotency lookup failed, assuming not invoiced")
	}
	if exists {
		log.WithField("docEntry", note.DocEntry).Info("note already invoiced, skipping")
		tr.AddAlreadyInvoiced(note.DocEntry)
		return
	}

	req := BuildInvoice(e.series, tenant, note, e.now())
	invoiceEntry, err := e.sl.CreateInvoice(ctx, sess, req)
	if err != nil {
		cls := classify.Classify(err)
		if cls.Kind == classify.KindAlreadyInvoiced {
			// The remote confirmed the note is closed; same outcome as the
			// idempotency short-circuit.
			tr.AddAlreadyInvoiced(note.DocEntry)
			return
		}
		log.WithFields(logrus.Fields{
			"docEntry": note.DocEntry,
			"kind":     cls.Kind,
			"code":     cls.Code,
		}).Error("invoice creation failed")
		tr.AddError(note.DocEntry, report.CodeForClassified(cls), cls.Message, cls.RemoteMessage,
			fmt.Sprintf("CardCode: %s", note.CardCode))
		return
	}

	log.WithFields(logrus.Fields{
		"docEntry": note.DocEntry,
		"invoice":  invoiceEntry,
		"cardCode": note.CardCode,
	}).Info("invoice created")
	tr.AddSuccess(report.SuccessRecord{
		InvoiceDocEntry: invoiceEntry,
		BaseEntry:       note.DocEntry,
		CardCode:        note.CardCode,
		DocDate:         req.DocDate,
		TotalLines:      len(req.Lines),
		DocTotal:        docTotal(req),
	})
}

// closeSession logs the session out, best-effort. A short fresh context keeps
// the logout alive even when the run context is already cancelled.
func (e *Engine) closeSession(sess model.Session, log *logrus.Entry) {
	timeout := e.cfg.CallTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := e.sl.Logout(ctx, sess); err != nil {
		log.WithError(err).Warn("logout failed")
		return
	}
	log.Info("session closed")
}

func docTotal(req model.InvoiceRequest) decimal.Decimal {
	totals := make([]decimal.Decimal, 0, len(req.Lines))
	for _, l := range req.Lines {
		totals = append(totals, money.LineTotal(l.Quantity, l.Price))
	}
	return money.Sum(totals)
}

// NotesQuery narrows the diagnostic view to one document or one customer.
// Zero values match everything.
type NotesQuery struct {
	DocEntry *int
	CardCode string
}

// FindNotesMatching is a read-only dry run of the same pipeline: fetch,
// filter and idempotency check, without submitting anything.
func (e *Engine) FindNotesMatching(ctx context.Context, q NotesQuery) []model.DiagnosticEntry {
	entries := []model.DiagnosticEntry{}
	for _, tenant := range e.cfg.Tenants {
		entries = append(entries, e.findTenantNotes(ctx, tenant, q)...)
	}
	return entries
}

func (e *Engine) findTenantNotes(ctx context.Context, tenant config.Tenant, q NotesQuery) []model.DiagnosticEntry {
	log := e.log.WithField("company", tenant.DisplayName())

	sess, err := e.sl.Login(ctx, tenant.CompanyDB)
	if err != nil {
		log.WithError(err).Warn("login failed, skipping company in diagnostic query")
		return nil
	}
	defer e.closeSession(sess, log)

	var entries []model.DiagnosticEntry
	today := e.now()
	for page := 0; ; page++ {
		notes, err := e.sl.DeliveryNotes(ctx, sess, tenant.AllowedCardCodes, today, page)
		if err != nil {
			log.WithError(err).Error("fetching delivery notes failed in diagnostic query")
			break
		}

		for _, note := range notes {
			if q.DocEntry != nil && note.DocEntry != *q.DocEntry {
				continue
			}
			if q.CardCode != "" && note.CardCode != q.CardCode {
				continue
			}

			verdict := e.pipeline.Evaluate(tenant, note)
			reason := string(verdict.Reason)
			canInvoice := verdict.Eligible
			if canInvoice {
				exists, err := e.sl.InvoiceExistsForBase(ctx, sess, note.DocEntry)
				if err != nil {
					log.WithError(err).WithField("docEntry", note.DocEntry).
						Warn("idempotency lookup failed in diagnostic query")
				}
				if exists {
					canInvoice = false
					reason = "already_invoiced"
				}
			}

			entries = append(entries, model.DiagnosticEntry{
				Tenant:     tenant.CompanyDB,
				DocEntry:   note.DocEntry,
				CardCode:   note.CardCode,
				DocDate:    note.DocDate,
				Reason:     reason,
				CanInvoice: canInvoice,
			})
		}

		if len(notes) < sapclient.PageSize {
			break
		}
	}
	return entries
}
