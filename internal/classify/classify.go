// Package classify maps raw Service Layer errors onto a stable domain
// taxonomy. Classification is total and deterministic: any input yields
// exactly one Result, and the same input always yields the same Result.
package classify

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/rezonia/invoice-autotransfer/internal/sapclient"
)

// Kind is the stable error family.
type Kind string

// Error kinds
const (
	KindAlreadyInvoiced  Kind = "already_invoiced"
	KindQuantityExceeded Kind = "quantity_exceeded"
	KindValidation       Kind = "validation"
	KindNetwork          Kind = "network"
	KindUnknown          Kind = "unknown_remote_error"
)

// SubReason narrows a validation failure.
type SubReason string

// Validation sub-reasons
const (
	SubNone     SubReason = ""
	SubSeries   SubReason = "series"
	SubCustomer SubReason = "customer"
	SubItems    SubReason = "items"
	SubQuantity SubReason = "quantity"
)

// Result is the classified form of a remote error.
type Result struct {
	Kind          Kind
	SubReason     SubReason
	Code          int
	Message       string // stable, taxonomy-level message
	RemoteMessage string // raw remote message, for diagnostics
}

// codeAlreadyClosed is the Service Layer code for "document has already been
// closed", which for a delivery note means it was invoiced already.
const codeAlreadyClosed = -5002

// Classify maps err onto the taxonomy. Never panics; a nil error classifies
// as unknown.
func Classify(err error) Result {
	if err == nil {
		return Result{Kind: KindUnknown, Message: "no remote error"}
	}

	var remote *sapclient.RemoteError
	if errors.As(err, &remote) {
		return classifyRemote(remote)
	}

	if isNetworkError(err) {
		return Result{
			Kind:          KindNetwork,
			Message:       "service layer unreachable",
			RemoteMessage: err.Error(),
		}
	}

	return Result{
		Kind:          KindUnknown,
		Message:       "unrecognized error",
		RemoteMessage: err.Error(),
	}
}

func classifyRemote(re *sapclient.RemoteError) Result {
	msg := strings.ToLower(re.Message)

	r := Result{Code: re.Code, RemoteMessage: re.Message}

	switch {
	case re.Code == codeAlreadyClosed, strings.Contains(msg, "already been closed"), strings.Contains(msg, "already closed"):
		r.Kind = KindAlreadyInvoiced
		r.Message = "delivery note already invoiced"

	case strings.Contains(msg, "quantity") && (strings.Contains(msg, "exceed") || strings.Contains(msg, "falls below")):
		r.Kind = KindQuantityExceeded
		r.Message = "quantity exceeds available stock"

	case strings.Contains(msg, "series"):
		r.Kind = KindValidation
		r.SubReason = SubSeries
		r.Message = "invoice series rejected"

	case strings.Contains(msg, "business partner"), strings.Contains(msg, "card code"), strings.Contains(msg, "cardcode"):
		r.Kind = KindValidation
		r.SubReason = SubCustomer
		r.Message = "customer code rejected"

	case strings.Contains(msg, "item"):
		r.Kind = KindValidation
		r.SubReason = SubItems
		r.Message = "item data rejected"

	case strings.Contains(msg, "quantity"), strings.Contains(msg, "price"):
		r.Kind = KindValidation
		r.SubReason = SubQuantity
		r.Message = "quantity or price rejected"

	default:
		r.Kind = KindUnknown
		r.Message = "unrecognized service layer error"
	}
	return r
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
