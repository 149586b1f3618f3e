package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateQuotationExcel creates an Excel workbook for a single quotation
// and returns the file contents as a byte slice.
func GenerateQuotationExcel(data *QuotationExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Determine sheet name (max 31 chars).
	sheetName := data.Code
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Quotation"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// Column references (A through H).
	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	lastCol := columns[len(columns)-1]

	widths := []float64{6, 28, 40, 16, 20, 10, 14, 14}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	itemStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header Rows (1-4) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell("Quotation "+data.Code))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
		return nil, fmt.Errorf("merge customer: %w", err)
	}
	f.SetCellValue(sheetName, "A2", sanitizeExcelCell("Customer: "+data.CustomerName))
	f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)

	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge dates: %w", err)
	}
	f.SetCellValue(sheetName, "A3", fmt.Sprintf("Date: %s    Valid until: %s", data.GeneratedDate, data.ValidUntil))
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	if data.Reference != "" {
		if err := f.MergeCell(sheetName, "A4", lastCol+"4"); err != nil {
			return nil, fmt.Errorf("merge ref: %w", err)
		}
		f.SetCellValue(sheetName, "A4", sanitizeExcelCell("Ref: "+data.Reference))
		f.SetCellStyle(sheetName, "A4", lastCol+"4", subtitleStyle)
	}

	// ── Row 6: Column Headers ───────────────────────────────────────────

	headers := []string{"#", "Product", "Description", "Part No.", "Manufacturer", "Qty", "Unit Price", "Total"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s6", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A6", lastCol+"6", headerStyle)

	// ── Item Rows (starting row 7) ──────────────────────────────────────

	rowNum := 7
	for _, it := range data.Items {
		rowStr := fmt.Sprintf("%d", rowNum)

		f.SetCellValue(sheetName, "A"+rowStr, it.Seq)
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(it.Name))
		f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(it.Description))
		f.SetCellValue(sheetName, "D"+rowStr, sanitizeExcelCell(it.PartNumber))
		f.SetCellValue(sheetName, "E"+rowStr, sanitizeExcelCell(it.Manufacturer))
		f.SetCellValue(sheetName, "F"+rowStr, it.Qty)
		f.SetCellValue(sheetName, "G"+rowStr, it.Price)
		f.SetCellValue(sheetName, "H"+rowStr, it.Total)
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, itemStyle)

		rowNum++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	rowNum++

	writeSummary := func(label, value string) {
		rowStr := fmt.Sprintf("%d", rowNum)
		f.SetCellValue(sheetName, "G"+rowStr, label)
		f.SetCellStyle(sheetName, "G"+rowStr, "G"+rowStr, summaryLabelStyle)
		f.SetCellValue(sheetName, "H"+rowStr, value)
		f.SetCellStyle(sheetName, "H"+rowStr, "H"+rowStr, summaryValueStyle)
		rowNum++
	}

	discountLabel := "Discount:"
	if data.DiscountType == DiscountPercentage {
		discountLabel = fmt.Sprintf("Discount (%s%%):", FormatQty(data.DiscountValue))
	}

	writeSummary("Subtotal:", FormatMoney(data.Subtotal, data.Currency))
	writeSummary(discountLabel, "-"+FormatMoney(data.DiscountAmount, data.Currency))
	writeSummary(fmt.Sprintf("Tax (%s%%):", FormatQty(data.TaxRate)), FormatMoney(data.TaxAmount, data.Currency))
	writeSummary("Total:", FormatMoney(data.TotalAmount, data.Currency))

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// GenerateQuotationCSV flattens a single quotation's items to CSV through
// the generic table path, so placeholder and formatting rules stay uniform.
func GenerateQuotationCSV(data *QuotationExportData) ([]byte, error) {
	records := make([]map[string]any, 0, len(data.Items))
	for _, it := range data.Items {
		records = append(records, map[string]any{
			"seq":          it.Seq,
			"name":         it.Name,
			"description":  it.Description,
			"part_number":  it.PartNumber,
			"manufacturer": it.Manufacturer,
			"qty":          it.Qty,
			"price":        it.Price,
			"total":        it.Total,
		})
	}

	return GenerateTableCSV(TableDataset{
		Title:   data.Code,
		Columns: quotationItemTableColumns(),
		Records: records,
	})
}

func quotationItemTableColumns() []TableColumn {
	return []TableColumn{
		{Key: "seq", Label: "#"},
		{Key: "name", Label: "Product"},
		{Key: "description", Label: "Description"},
		{Key: "part_number", Label: "Part No."},
		{Key: "manufacturer", Label: "Manufacturer"},
		{Key: "qty", Label: "Qty"},
		{Key: "price", Label: "Unit Price"},
		{Key: "total", Label: "Total"},
	}
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
