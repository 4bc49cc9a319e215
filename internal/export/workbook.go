// internal/export/workbook.go
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/stock-ledger/internal/core/domain"
)

// ContentType is the MIME type of the generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var stockHeaders = []string{"Item ID", "Item Kind", "Total", "Reserved", "Available"}

// StockWorkbook renders a warehouse's stock levels as an xlsx document with
// a "Stock" sheet and a "Warehouse" summary sheet.
func StockWorkbook(w *domain.Warehouse, levels []domain.StockLevel, generatedAt time.Time) ([]byte, error) {
	file := xlsx.NewFile()

	stock, err := file.AddSheet("Stock")
	if err != nil {
		return nil, fmt.Errorf("failed to add stock sheet: %w", err)
	}
	addHeader(stock, stockHeaders)

	var total, reserved, available int64
	for _, l := range levels {
		row := stock.AddRow()
		row.AddCell().SetString(l.ItemID)
		row.AddCell().SetString(string(l.ItemKind))
		row.AddCell().SetInt64(l.Total)
		row.AddCell().SetInt64(l.Reserved)
		row.AddCell().SetInt64(l.Available)

		total += l.Total
		reserved += l.Reserved
		available += l.Available
	}
	stock.SetColWidth(1, len(stockHeaders), 16)

	summary, err := file.AddSheet("Warehouse")
	if err != nil {
		return nil, fmt.Errorf("failed to add summary sheet: %w", err)
	}
	addPair(summary, "Warehouse ID", w.ID.String())
	addPair(summary, "Branch ID", w.BranchID)
	addPair(summary, "Manager ID", w.ManagerID)
	addPair(summary, "Active", fmt.Sprintf("%t", w.IsActive))
	addPair(summary, "Address", formatAddress(w.Address))
	addPair(summary, "Last Income", formatTime(w.LastIncomeAt))
	addPair(summary, "Last Outcome", formatTime(w.LastOutcomeAt))
	addPair(summary, "Lines", fmt.Sprintf("%d", len(levels)))
	addPair(summary, "Total", fmt.Sprintf("%d", total))
	addPair(summary, "Reserved", fmt.Sprintf("%d", reserved))
	addPair(summary, "Available", fmt.Sprintf("%d", available))
	addPair(summary, "Generated At", generatedAt.UTC().Format(time.RFC3339))
	summary.SetColWidth(1, 2, 40)

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buffer.Bytes(), nil
}

// SnapshotKey names the archived snapshot of a warehouse taken at t
func SnapshotKey(warehouseID fmt.Stringer, t time.Time) string {
	return fmt.Sprintf("%s/%s.xlsx", warehouseID, t.UTC().Format("20060102T150405Z"))
}

func addHeader(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		cell := row.AddCell()
		cell.SetString(h)
		style := cell.GetStyle()
		style.Font.Bold = true
		style.Fill.PatternType = "solid"
		style.Fill.FgColor = "CCCCCC"
	}
}

func addPair(sheet *xlsx.Sheet, label, value string) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetString(value)
}

func formatAddress(a domain.Address) string {
	out := a.Line1
	for _, part := range []string{a.Line2, a.City, a.Region, a.PostalCode, a.Country} {
		if part != "" {
			out += ", " + part
		}
	}
	return out
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
