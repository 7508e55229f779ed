package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rezonia/invoice-autotransfer/internal/money"
)

// errorCodeTitles labels each internal code in the generated error report.
var errorCodeTitles = []struct {
	code  int
	title string
}{
	{CodeCreateFailed, "Invoice creation failed"},
	{CodeCooldown, "Note inside the 72-hour waiting period"},
	{CodeAlreadyInvoiced, "Note already invoiced"},
	{CodeValidation, "Invoice data validation failed"},
	{CodeBadFormat, "Malformed document data"},
	{CodeAuth, "Authorization failed"},
	{CodeConnection, "Connection to the company database failed"},
	{CodeSeries, "Invoice series validation failed"},
	{CodeCustomer, "Customer code validation failed"},
	{CodeItems, "Item validation failed"},
	{CodeQuantities, "Quantity or price validation failed"},
	{CodeMixedRates, "Note carries multiple exchange rates"},
}

// FileSink writes the formatted error and success reports as text files, one
// pair per run.
type FileSink struct {
	dir     string
	enabled bool
	log     *logrus.Logger
}

// NewFileSink creates a file sink writing into dir. A disabled sink is a
// no-op, matching the production setting where report files are off.
func NewFileSink(dir string, enabled bool, log *logrus.Logger) *FileSink {
	return &FileSink{dir: dir, enabled: enabled, log: log}
}

// Write renders and persists both report files.
func (s *FileSink) Write(_ context.Context, r *Report) error {
	if !s.enabled {
		s.log.Info("report file generation disabled")
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	endTime := time.Now()
	stamp := endTime.Format("2006-01-02T15-04-05")

	errPath := filepath.Join(s.dir, fmt.Sprintf("sap-error-report-%s.txt", stamp))
	if err := os.WriteFile(errPath, []byte(s.renderErrors(r, endTime)), 0o644); err != nil {
		return err
	}

	okPath := filepath.Join(s.dir, fmt.Sprintf("sap-success-report-%s.txt", stamp))
	if err := os.WriteFile(okPath, []byte(s.renderSuccesses(r, endTime)), 0o644); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"errors":    errPath,
		"successes": okPath,
	}).Info("run reports written")
	return nil
}

func (s *FileSink) renderErrors(r *Report, endTime time.Time) string {
	summary := r.Summary()
	errs := r.AllErrors()

	var b strings.Builder
	b.WriteString("SAP ERROR REPORT\n")
	b.WriteString("================\n\n")
	writeHeader(&b, r.StartedAt(), endTime)
	fmt.Fprintf(&b, "Documents processed: %d\n", summary.TotalFound)
	fmt.Fprintf(&b, "Errors recorded: %d\n\n", len(errs))

	b.WriteString("PER-COMPANY STATISTICS\n")
	b.WriteString("======================\n\n")
	for _, company := range orderedCompanies(summary) {
		stats := summary.PerTenant[company]
		fmt.Fprintf(&b, "%s:\n", company)
		fmt.Fprintf(&b, "  - processed: %d\n", stats.TotalFound)
		fmt.Fprintf(&b, "  - succeeded: %d\n", stats.Succeeded)
		fmt.Fprintf(&b, "  - already invoiced: %d\n", stats.AlreadyInvoiced)
		fmt.Fprintf(&b, "  - ineligible: %d\n", stats.Ineligible)
		fmt.Fprintf(&b, "  - errors: %d\n\n", stats.Errors)
	}

	b.WriteString("ERROR DETAIL\n")
	b.WriteString("============\n\n")
	for _, group := range errorCodeTitles {
		var matched []ErrorRecord
		for _, e := range errs {
			if e.Code == group.code {
				matched = append(matched, e)
			}
		}
		if len(matched) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (code %d)\n", group.title, group.code)
		b.WriteString("----------------------------------------\n\n")
		for _, e := range matched {
			fmt.Fprintf(&b, "Company: %s\n", e.Company)
			if e.DocEntry != 0 {
				fmt.Fprintf(&b, "DocEntry: %d\n", e.DocEntry)
			}
			fmt.Fprintf(&b, "Time: %s\n", e.Timestamp.Format(time.RFC3339))
			if e.RemoteMessage != "" {
				fmt.Fprintf(&b, "Remote: %s\n", e.RemoteMessage)
			}
			if e.Detail != "" {
				fmt.Fprintf(&b, "Detail: %s\n", e.Detail)
			}
			b.WriteString("-------------------\n\n")
		}
	}
	return b.String()
}

func (s *FileSink) renderSuccesses(r *Report, endTime time.Time) string {
	summary := r.Summary()
	successes := r.AllSuccesses()

	var b strings.Builder
	b.WriteString("CREATED INVOICES REPORT\n")
	b.WriteString("=======================\n\n")
	writeHeader(&b, r.StartedAt(), endTime)
	fmt.Fprintf(&b, "Documents processed: %d\n", summary.TotalFound)
	fmt.Fprintf(&b, "Invoices created: %d\n\n", len(successes))

	b.WriteString("DETAIL\n")
	b.WriteString("======\n\n")
	for _, rec := range successes {
		fmt.Fprintf(&b, "Time: %s\n", rec.Timestamp.Format(time.RFC3339))
		fmt.Fprintf(&b, "Company: %s\n", rec.Company)
		fmt.Fprintf(&b, "Invoice DocEntry: %d\n", rec.InvoiceDocEntry)
		fmt.Fprintf(&b, "Source note: %d\n", rec.BaseEntry)
		fmt.Fprintf(&b, "CardCode: %s\n", rec.CardCode)
		fmt.Fprintf(&b, "DocDate: %s\n", rec.DocDate.Format("2006-01-02"))
		fmt.Fprintf(&b, "Lines: %d\n", rec.TotalLines)
		fmt.Fprintf(&b, "Total: %s\n", money.Format(rec.DocTotal))
		b.WriteString("-------------------\n\n")
	}
	return b.String()
}

func writeHeader(b *strings.Builder, start, end time.Time) {
	fmt.Fprintf(b, "Start: %s\n", start.Format(time.RFC3339))
	fmt.Fprintf(b, "End: %s\n", end.Format(time.RFC3339))
	fmt.Fprintf(b, "Duration: %d minutes\n\n", int(end.Sub(start).Minutes()))
}

// orderedCompanies returns per-tenant stat keys in stable name order.
func orderedCompanies(s RunSummary) []string {
	names := make([]string, 0, len(s.PerTenant))
	for name := range s.PerTenant {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
