package transfer

import (
	"time"

	"github.com/rezonia/invoice-autotransfer/internal/config"
	"github.com/rezonia/invoice-autotransfer/internal/model"
	"github.com/rezonia/invoice-autotransfer/internal/series"
)

// BuildInvoice maps an eligible delivery note to an invoice request. Pure: no
// I/O, no mutation of the note.
//
// The invoice keeps the source note's document date; today is used only when
// the source carries none. Unmapped series pass through unchanged, and lines
// without a warehouse code get the default warehouse.
func BuildInvoice(seriesMap series.Map, tenant config.Tenant, note model.DeliveryNote, today time.Time) model.InvoiceRequest {
	docDate := note.DocDate
	if docDate.IsZero() {
		docDate = today
	}

	req := model.InvoiceRequest{
		CardCode: note.CardCode,
		DocDate:  docDate,
		Comments: note.Comments,
		Series:   seriesMap.Resolve(tenant.CompanyDB, note.Series),
		Currency: note.Currency,
	}

	for _, line := range note.Lines {
		warehouse := line.WarehouseCode
		if warehouse == "" {
			warehouse = config.DefaultWarehouse
		}
		req.Lines = append(req.Lines, model.InvoiceLine{
			ItemCode:      line.ItemCode,
			Quantity:      line.Quantity,
			Price:         line.Price,
			WarehouseCode: warehouse,
			BaseEntry:     note.DocEntry,
			BaseType:      model.BaseTypeDeliveryNote,
			BaseLine:      line.LineNum,
		})
	}
	return req
}
