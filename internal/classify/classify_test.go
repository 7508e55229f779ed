package classify_test

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rezonia/invoice-autotransfer/internal/classify"
	"github.com/rezonia/invoice-autotransfer/internal/sapclient"
)

func remoteErr(code int, message string) error {
	return &sapclient.RemoteError{StatusCode: 400, Code: code, Message: message}
}

func TestClassify_AlreadyInvoiced(t *testing.T) {
	r := classify.Classify(remoteErr(-5002, "Document has already been closed"))
	assert.Equal(t, classify.KindAlreadyInvoiced, r.Kind)
	assert.Equal(t, -5002, r.Code)
	assert.Equal(t, "Document has already been closed", r.RemoteMessage)
}

func TestClassify_AlreadyInvoiced_MessageOnly(t *testing.T) {
	// Unfamiliar code, familiar message: still the already-invoiced family,
	// never a generic submission error.
	r := classify.Classify(remoteErr(-1102, "delivery note already closed"))
	assert.Equal(t, classify.KindAlreadyInvoiced, r.Kind)
}

func TestClassify_QuantityExceeded(t *testing.T) {
	r := classify.Classify(remoteErr(-4012, "Quantity exceeds the quantity in the base document"))
	assert.Equal(t, classify.KindQuantityExceeded, r.Kind)
}

func TestClassify_ValidationSubReasons(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		subReason classify.SubReason
	}{
		{"series", "Numbering series '999' is not valid", classify.SubSeries},
		{"customer", "Business partner not found", classify.SubCustomer},
		{"items", "Item 'X001' has no matching records", classify.SubItems},
		{"quantity", "Invalid price for row 2", classify.SubQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := classify.Classify(remoteErr(-5003, tt.message))
			assert.Equal(t, classify.KindValidation, r.Kind)
			assert.Equal(t, tt.subReason, r.SubReason)
		})
	}
}

func TestClassify_Network(t *testing.T) {
	err := &url.Error{Op: "Post", URL: "https://sap:50000/b1s/v1/Invoices", Err: errors.New("connection refused")}
	r := classify.Classify(err)
	assert.Equal(t, classify.KindNetwork, r.Kind)
}

func TestClassify_Unknown(t *testing.T) {
	r := classify.Classify(remoteErr(-9999, "internal oddity"))
	assert.Equal(t, classify.KindUnknown, r.Kind)
	assert.Equal(t, "internal oddity", r.RemoteMessage)

	r = classify.Classify(fmt.Errorf("something else entirely"))
	assert.Equal(t, classify.KindUnknown, r.Kind)
}

func TestClassify_NilError(t *testing.T) {
	r := classify.Classify(nil)
	assert.Equal(t, classify.KindUnknown, r.Kind)
}

func TestClassify_Deterministic(t *testing.T) {
	err := remoteErr(-5002, "Document has already been closed")
	assert.Equal(t, classify.Classify(err), classify.Classify(err))
}

func TestClassify_WrappedRemoteError(t *testing.T) {
	err := fmt.Errorf("creating invoice: %w", remoteErr(-5002, "already been closed"))
	r := classify.Classify(err)
	assert.Equal(t, classify.KindAlreadyInvoiced, r.Kind)
}
