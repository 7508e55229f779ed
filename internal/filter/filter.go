// Package filter decides delivery-note eligibility through an ordered,
// short-circuiting rule pipeline. The first failing rule determines the
// verdict; a note passing every rule is eligible.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-autotransfer/internal/config"
	"github.com/rezonia/invoice-autotransfer/internal/model"
)

// Cooldown is the waiting period for public-general customers between
// delivery and invoicing.
const Cooldown = 72 * time.Hour

// Reason is a stable ineligibility code, used for reporting and testing.
type Reason string

// Ineligibility reasons, in rule order.
const (
	ReasonNone               Reason = ""
	ReasonCooldownPending    Reason = "cooldown_pending"
	ReasonMissingDocDate     Reason = "missing_doc_date"
	ReasonNoLines            Reason = "no_lines"
	ReasonMissingCurrency    Reason = "missing_currency"
	ReasonMixedExchangeRates Reason = "mixed_exchange_rates"
)

// Verdict is the outcome of evaluating one note.
type Verdict struct {
	DocEntry int
	Eligible bool
	Reason   Reason
	Detail   string
}

// Pipeline evaluates notes against the fixed rule order.
type Pipeline struct {
	now func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithClock overrides the pipeline's notion of "now". Used by tests and the
// diagnostic query.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline creates a pipeline with the given options
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type rule func(tenant config.Tenant, note model.DeliveryNote, now time.Time) (Reason, string)

// Rule order is fixed. Reordering changes which reason wins when a note
// violates several rules at once.
var rules = []rule{
	publicGeneralCooldown,
	docDatePresent,
	linesPresent,
	currencyPresent,
	singleExchangeRate,
}

// Evaluate runs the rule pipeline for one note.
func (p *Pipeline) Evaluate(tenant config.Tenant, note model.DeliveryNote) Verdict {
	now := p.now()
	for _, r := range rules {
		if reason, detail := r(tenant, note, now); reason != ReasonNone {
			return Verdict{DocEntry: note.DocEntry, Reason: reason, Detail: detail}
		}
	}
	return Verdict{DocEntry: note.DocEntry, Eligible: true}
}

func publicGeneralCooldown(tenant config.Tenant, note model.DeliveryNote, now time.Time) (Reason, string) {
	if !tenant.IsPublicGeneral(note.CardCode) {
		return ReasonNone, ""
	}
	elapsed := now.Sub(note.DocDate)
	if note.DocDate.IsZero() {
		elapsed = 0
	}
	if elapsed >= Cooldown {
		return ReasonNone, ""
	}
	elapsedH := int(elapsed.Round(time.Hour).Hours())
	remainingH := int((Cooldown - elapsed).Round(time.Hour).Hours())
	return ReasonCooldownPending, fmt.Sprintf("%d of 72 hours elapsed, %d remaining", elapsedH, remainingH)
}

func docDatePresent(_ config.Tenant, note model.DeliveryNote, _ time.Time) (Reason, string) {
	if note.DocDate.IsZero() {
		return ReasonMissingDocDate, "document carries no date"
	}
	return ReasonNone, ""
}

func linesPresent(_ config.Tenant, note model.DeliveryNote, _ time.Time) (Reason, string) {
	if len(note.Lines) == 0 {
		return ReasonNoLines, "document carries no lines"
	}
	return ReasonNone, ""
}

func currencyPresent(_ config.Tenant, note model.DeliveryNote, _ time.Time) (Reason, string) {
	if note.Currency == "" {
		return ReasonMissingCurrency, "document carries no currency"
	}
	return ReasonNone, ""
}

func singleExchangeRate(tenant config.Tenant, note model.DeliveryNote, _ time.Time) (Reason, string) {
	if !tenant.RateSensitive {
		return ReasonNone, ""
	}
	var distinct []decimal.Decimal
	for _, line := range note.Lines {
		if line.ExchangeRate.IsZero() {
			continue
		}
		seen := false
		for _, d := range distinct {
			if d.Equal(line.ExchangeRate) {
				seen = true
				break
			}
		}
		if !seen {
			distinct = append(distinct, line.ExchangeRate)
		}
	}
	if len(distinct) <= 1 {
		return ReasonNone, ""
	}
	values := make([]string, 0, len(distinct))
	for _, d := range distinct {
		values = append(values, d.String())
	}
	return ReasonMixedExchangeRates, "distinct exchange rates: " + strings.Join(values, ", ")
}
