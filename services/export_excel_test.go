package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestGenerateQuotationExcel(t *testing.T) {
	data := sampleQuotationData()

	result, err := GenerateQuotationExcel(data)
	if err != nil {
		t.Fatalf("GenerateQuotationExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("output is not a valid xlsx: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet != data.Code {
		t.Errorf("sheet name = %q, want %q", sheet, data.Code)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}

	// Header block, item table from row 7, then the summary block.
	if v, _ := f.GetCellValue(sheet, "A6"); v != "#" {
		t.Errorf("A6 = %q, want item table header", v)
	}
	if v, _ := f.GetCellValue(sheet, "B7"); v != "Switch" {
		t.Errorf("B7 = %q, want first item name", v)
	}
	if v, _ := f.GetCellValue(sheet, "B8"); v != "Router" {
		t.Errorf("B8 = %q, want second item name", v)
	}

	var foundTotal, foundDiscount bool
	for _, r := range rows {
		for _, cell := range r {
			if strings.Contains(cell, "Discount (10%)") {
				foundDiscount = true
			}
			if cell == "Total:" {
				foundTotal = true
			}
		}
	}
	if !foundDiscount {
		t.Error("summary block missing percentage discount label")
	}
	if !foundTotal {
		t.Error("summary block missing TOTAL row")
	}
}

func TestGenerateQuotationExcel_AmountDiscountLabel(t *testing.T) {
	data := sampleQuotationData()
	data.DiscountType = DiscountAmount
	data.DiscountValue = 330

	result, err := GenerateQuotationExcel(data)
	if err != nil {
		t.Fatalf("GenerateQuotationExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("output is not a valid xlsx: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(f.GetSheetName(0))
	found := false
	for _, r := range rows {
		for _, cell := range r {
			if cell == "Discount:" {
				found = true
			}
		}
	}
	if !found {
		t.Error("flat discount label missing from summary block")
	}
}

func TestGenerateQuotationCSV(t *testing.T) {
	data := sampleQuotationData()

	result, err := GenerateQuotationCSV(data)
	if err != nil {
		t.Fatalf("GenerateQuotationCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(result)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 items:\n%s", len(lines), result)
	}
	if !strings.HasPrefix(lines[0], "#,") {
		t.Errorf("header = %q, want sequence column first", lines[0])
	}
	if !strings.Contains(lines[1], "Switch") || !strings.Contains(lines[2], "Router") {
		t.Errorf("item rows out of order:\n%s", result)
	}
}

func TestGenerateQuotationCSV_NoItems(t *testing.T) {
	data := sampleQuotationData()
	data.Items = nil

	if _, err := GenerateQuotationCSV(data); err == nil {
		t.Error("itemless CSV export succeeded, want ErrNoData")
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"formula equals", "=SUM(A1:A10)", "'=SUM(A1:A10)"},
		{"formula plus", "+A1", "'+A1"},
		{"formula minus", "-A1", "'-A1"},
		{"formula at", "@A1", "'@A1"},
		{"plain text", "Switch", "Switch"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeExcelCell(tt.input); got != tt.expect {
				t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
