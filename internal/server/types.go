package server

import (
	"github.com/rezonia/invoice-autotransfer/internal/model"
	"github.com/rezonia/invoice-autotransfer/internal/report"
)

// TransferResponse is the response for the auto-transfer endpoint
type TransferResponse struct {
	Summary report.RunSummary `json:"summary"`
}

// NotesResponse is the response for the diagnostic notes endpoint
type NotesResponse struct {
	Count   int                     `json:"count"`
	Entries []model.DiagnosticEntry `json:"entries"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
