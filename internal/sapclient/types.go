package sapclient

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-autotransfer/internal/model"
)

// Wire DTOs for the Service Layer JSON surface. Quantities and prices travel
// as JSON numbers; conversion to decimal happens once on ingress.

type loginRequest struct {
	CompanyDB string `json:"CompanyDB"`
	UserName  string `json:"UserName"`
	Password  string `json:"Password"`
}

type loginResponse struct {
	SessionID      string `json:"SessionId"`
	Version        string `json:"Version"`
	SessionTimeout int    `json:"SessionTimeout"`
}

type deliveryNotePage struct {
	Value []deliveryNoteDTO `json:"value"`
}

type deliveryNoteDTO struct {
	DocEntry       int               `json:"DocEntry"`
	CardCode       string            `json:"CardCode"`
	DocDate        string            `json:"DocDate"`
	DocCurrency    string            `json:"DocCurrency"`
	Comments       string            `json:"Comments"`
	Series         int               `json:"Series"`
	DocumentStatus string            `json:"DocumentStatus"`
	AuditFlag      string            `json:"U_Auto_Auditoria"`
	DocumentLines  []documentLineDTO `json:"DocumentLines"`
}

type documentLineDTO struct {
	ItemCode      string  `json:"ItemCode"`
	Quantity      float64 `json:"Quantity"`
	Price         float64 `json:"Price"`
	WarehouseCode string  `json:"WarehouseCode"`
	LineNum       int     `json:"LineNum"`
	Rate          float64 `json:"Rate"`
}

func (d deliveryNoteDTO) toModel() model.DeliveryNote {
	note := model.DeliveryNote{
		DocEntry:  d.DocEntry,
		CardCode:  d.CardCode,
		DocDate:   parseDocDate(d.DocDate),
		Currency:  d.DocCurrency,
		Comments:  d.Comments,
		Series:    d.Series,
		Status:    d.DocumentStatus,
		AuditFlag: d.AuditFlag,
	}
	for _, l := range d.DocumentLines {
		line := model.DocumentLine{
			ItemCode:      l.ItemCode,
			Quantity:      decimal.NewFromFloat(l.Quantity),
			Price:         decimal.NewFromFloat(l.Price),
			WarehouseCode: l.WarehouseCode,
			LineNum:       l.LineNum,
		}
		if l.Rate != 0 {
			line.ExchangeRate = decimal.NewFromFloat(l.Rate)
		}
		note.Lines = append(note.Lines, line)
	}
	return note
}

// parseDocDate accepts the two date shapes the Service Layer emits. A zero
// time means the document carries no date.
func parseDocDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type invoicePage struct {
	Value []struct {
		DocEntry int `json:"DocEntry"`
	} `json:"value"`
}

type invoiceDTO struct {
	CardCode      string           `json:"CardCode"`
	DocDate       string           `json:"DocDate"`
	Comments      string           `json:"Comments"`
	Series        int              `json:"Series"`
	DocCurrency   string           `json:"DocCurrency"`
	DocumentLines []invoiceLineDTO `json:"DocumentLines"`
}

type invoiceLineDTO struct {
	ItemCode      string  `json:"ItemCode"`
	Quantity      float64 `json:"Quantity"`
	Price         float64 `json:"Price"`
	WarehouseCode string  `json:"WarehouseCode"`
	BaseEntry     int     `json:"BaseEntry"`
	BaseType      int     `json:"BaseType"`
	BaseLine      int     `json:"BaseLine"`
}

func toInvoiceDTO(req model.InvoiceRequest) invoiceDTO {
	dto := invoiceDTO{
		CardCode:    req.CardCode,
		DocDate:     req.DocDate.Format("2006-01-02"),
		Comments:    req.Comments,
		Series:      req.Series,
		DocCurrency: req.Currency,
	}
	for _, l := range req.Lines {
		dto.DocumentLines = append(dto.DocumentLines, invoiceLineDTO{
			ItemCode:      l.ItemCode,
			Quantity:      l.Quantity.InexactFloat64(),
			Price:         l.Price.InexactFloat64(),
			WarehouseCode: l.WarehouseCode,
			BaseEntry:     l.BaseEntry,
			BaseType:      l.BaseType,
			BaseLine:      l.BaseLine,
		})
	}
	return dto
}

type createInvoiceResponse struct {
	DocEntry int `json:"DocEntry"`
}

// RemoteError is a structured error body returned by the Service Layer.
type RemoteError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("service layer error %d (http %d): %s", e.Code, e.StatusCode, e.Message)
}

// parseRemoteError decodes the Service Layer error envelope. The envelope is
// tolerant of both shapes seen in the wild: message as {lang, value} and
// message as a plain string; code as a number or a quoted number.
func parseRemoteError(statusCode int, body []byte) *RemoteError {
	re := &RemoteError{StatusCode: statusCode}

	var env struct {
		Error struct {
			Code    json.RawMessage `json:"code"`
			Message json.RawMessage `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		re.Message = strings.TrimSpace(string(body))
		return re
	}

	if len(env.Error.Code) > 0 {
		raw := strings.Trim(string(env.Error.Code), `"`)
		if code, err := strconv.Atoi(raw); err == nil {
			re.Code = code
		}
	}

	if len(env.Error.Message) > 0 {
		var structured struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(env.Error.Message, &structured); err == nil && structured.Value != "" {
			re.Message = structured.Value
		} else {
			var plain string
			if err := json.Unmarshal(env.Error.Message, &plain); err == nil {
				re.Message = plain
			}
		}
	}

	if re.Message == "" {
		re.Message = strings.TrimSpace(string(body))
	}
	return re
}
