// Package model holds the shared data model for the auto-transfer engine:
// read-only delivery-note snapshots fetched from the Service Layer, invoice
// submission payloads, and the per-tenant session value.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseTypeDeliveryNote is the Service Layer object type code for delivery
// notes, stamped on every invoice line as the base-document type.
const BaseTypeDeliveryNote = 15

// Session is an authenticated Service Layer session for one tenant. It is
// created by Login, passed explicitly to every call, and released exactly once
// via Logout. Never stored as shared process state.
type Session struct {
	CompanyDB string
	ID        string
	Version   string
	Timeout   int
	IssuedAt  time.Time
}

// DeliveryNote is a read-only snapshot of an open delivery note. It is never
// mutated locally.
type DeliveryNote struct {
	DocEntry  int
	CardCode  string
	DocDate   time.Time // zero when the remote document carries no date
	Currency  string
	Comments  string
	Series    int
	Status    string
	AuditFlag string
	Lines     []DocumentLine
}

// DocumentLine is one line of a delivery note. ExchangeRate is zero when the
// line carries no rate.
type DocumentLine struct {
	ItemCode      string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	WarehouseCode string
	LineNum       int
	ExchangeRate  decimal.Decimal
}

// InvoiceRequest is the payload submitted to create one invoice. Constructed
// fresh per note, never reused.
type InvoiceRequest struct {
	CardCode string
	DocDate  time.Time
	Comments string
	Series   int
	Currency string
	Lines    []InvoiceLine
}

// InvoiceLine carries the copied line data plus the base-document linkage back
// to the originating delivery note.
type InvoiceLine struct {
	ItemCode      string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	WarehouseCode string
	BaseEntry     int
	BaseType      int
	BaseLine      int
}

// DiagnosticEntry is one row of the FindNotesMatching dry-run view.
type DiagnosticEntry struct {
	Tenant     string    `json:"tenant"`
	DocEntry   int       `json:"docEntry"`
	CardCode   string    `json:"cardCode"`
	DocDate    time.Time `json:"docDate"`
	Reason     string    `json:"reason"`
	CanInvoice bool      `json:"canInvoice"`
}
