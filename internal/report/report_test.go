package report_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-autotransfer/internal/classify"
	"github.com/rezonia/invoice-autotransfer/internal/filter"
	"github.com/rezonia/invoice-autotransfer/internal/report"
)

func TestSummary_AggregatesTenants(t *testing.T) {
	r := report.New()

	a := report.NewTenantReport("SBO_Alianza")
	a.AddFound(10)
	a.AddSuccess(report.SuccessRecord{BaseEntry: 1, InvoiceDocEntry: 100})
	a.AddSuccess(report.SuccessRecord{BaseEntry: 2, InvoiceDocEntry: 101})
	a.AddIneligible(3, filter.ReasonCooldownPending, "12 of 72 hours elapsed, 60 remaining")
	a.AddAlreadyInvoiced(4)
	a.AddError(5, report.CodeCreateFailed, "create failed", "remote detail", "")

	b := report.NewTenantReport("SBO_FGE")
	b.AddFound(2)
	b.AddSuccess(report.SuccessRecord{BaseEntry: 6, InvoiceDocEntry: 200})

	r.Merge(a)
	r.Merge(b)

	s := r.Summary()
	assert.Equal(t, 12, s.TotalFound)
	assert.Equal(t, 3, s.TotalSucceeded)
	assert.Equal(t, 1, s.TotalErrors)
	assert.Equal(t, 1, s.TotalAlreadyInvoiced)
	assert.Equal(t, 1, s.TotalIneligible)

	require.Contains(t, s.PerTenant, "SBO_Alianza")
	assert.Equal(t, report.CompanyStats{
		TotalFound:      10,
		AlreadyInvoiced: 1,
		Ineligible:      1,
		Errors:          1,
		Succeeded:       2,
	}, s.PerTenant["SBO_Alianza"])
}

func TestAllErrors_StableCompanyOrder(t *testing.T) {
	r := report.New()

	b := report.NewTenantReport("SBO_FGE")
	b.AddError(1, report.CodeConnection, "fetch failed", "", "")
	r.Merge(b)

	a := report.NewTenantReport("SBO_Alianza")
	a.AddIneligible(2, filter.ReasonNoLines, "")
	r.Merge(a)

	errs := r.AllErrors()
	require.Len(t, errs, 2)
	assert.Equal(t, "SBO_Alianza", errs[0].Company)
	assert.Equal(t, "SBO_FGE", errs[1].Company)
}

func TestCodeForReason(t *testing.T) {
	assert.Equal(t, report.CodeCooldown, report.CodeForReason(filter.ReasonCooldownPending))
	assert.Equal(t, report.CodeMixedRates, report.CodeForReason(filter.ReasonMixedExchangeRates))
	assert.Equal(t, report.CodeBadFormat, report.CodeForReason(filter.ReasonMissingDocDate))
	assert.Equal(t, report.CodeValidation, report.CodeForReason(filter.ReasonNoLines))
}

func TestCodeForClassified(t *testing.T) {
	tests := []struct {
		name     string
		result   classify.Result
		expected int
	}{
		{"already invoiced", classify.Result{Kind: classify.KindAlreadyInvoiced}, report.CodeAlreadyInvoiced},
		{"quantity exceeded", classify.Result{Kind: classify.KindQuantityExceeded}, report.CodeQuantities},
		{"network", classify.Result{Kind: classify.KindNetwork}, report.CodeConnection},
		{"series validation", classify.Result{Kind: classify.KindValidation, SubReason: classify.SubSeries}, report.CodeSeries},
		{"customer validation", classify.Result{Kind: classify.KindValidation, SubReason: classify.SubCustomer}, report.CodeCustomer},
		{"item validation", classify.Result{Kind: classify.KindValidation, SubReason: classify.SubItems}, report.CodeItems},
		{"unknown", classify.Result{Kind: classify.KindUnknown}, report.CodeCreateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, report.CodeForClassified(tt.result))
		})
	}
}

func TestFileSink_Disabled(t *testing.T) {
	dir := t.TempDir()
	sink := report.NewFileSink(dir, false, logrus.New())

	require.NoError(t, sink.Write(context.Background(), report.New()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileSink_WritesBothReports(t *testing.T) {
	dir := t.TempDir()
	log := logrus.New()
	log.SetOutput(os.Stderr)

	r := report.New()
	tr := report.NewTenantReport("SBO_Alianza")
	tr.AddFound(2)
	tr.AddSuccess(report.SuccessRecord{
		BaseEntry:       7,
		InvoiceDocEntry: 70,
		CardCode:        "04166",
		DocDate:         time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		TotalLines:      2,
		DocTotal:        decimal.NewFromFloat(199.90),
	})
	tr.AddError(8, report.CodeSeries, "invoice series rejected", "Numbering series is not valid", "")
	r.Merge(tr)

	sink := report.NewFileSink(dir, true, log)
	require.NoError(t, sink.Write(context.Background(), r))

	matches, err := filepath.Glob(filepath.Join(dir, "sap-error-report-*.txt"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "SBO_Alianza")
	assert.Contains(t, string(content), "Invoice series validation failed")
	assert.Contains(t, string(content), "Numbering series is not valid")

	matches, err = filepath.Glob(filepath.Join(dir, "sap-success-report-*.txt"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	content, err = os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "Invoice DocEntry: 70")
	assert.Contains(t, string(content), "Total: 199.90")
}
