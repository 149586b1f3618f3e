package services

import (
	"bytes"
	"testing"
)

func sampleQuotationData() *QuotationExportData {
	return &QuotationExportData{
		CompanyName:    "Alamba Services",
		CompanyAddress: "12 Avenue du Commerce, Kinshasa",
		CompanyEmail:   "sales@alamba.example",
		CompanyPhone:   "+243 812 345 678",
		BankDetails:    "Rawbank 0011-22334455",

		Code:          "ALM-Q9-014-2026",
		GeneratedDate: "2026-09-01",
		CreatedDate:   "2026-09-01",
		ValidUntil:    "2026-09-30",
		ETA:           "2 weeks after order confirmation",
		Status:        "sent",

		CustomerName:    "Acme Corp",
		CustomerEmail:   "purchasing@acme.example",
		CustomerAddress: "45 Industrial Road, Lubumbashi",

		Reference: "RFQ-2026-117",
		Attention: "Procurement Dept",

		Items: []QuotationExportItem{
			{Seq: 1, Name: "Switch", Description: "24-port managed switch", PartNumber: "SW-24", Manufacturer: "Cisco", Qty: 2, Price: 1200, Total: 2400},
			{Seq: 2, Name: "Router", Description: "Edge router", PartNumber: "RT-1", Manufacturer: "Juniper", Qty: 1, Price: 900, Total: 900},
		},

		Currency:       "USD",
		Subtotal:       3300,
		DiscountType:   DiscountPercentage,
		DiscountValue:  10,
		DiscountAmount: 330,
		TaxRate:        16,
		TaxAmount:      475.20,
		TotalQuantity:  3,
		TotalAmount:    3445.20,
		ExpectedIncome: 3445.20,

		Notes: "Prices valid for 30 days.",
		Terms: "Payment due within 30 days of invoice.",
	}
}

func TestGenerateQuotationPDF(t *testing.T) {
	data := sampleQuotationData()

	result, err := GenerateQuotationPDF(data, nil)
	if err != nil {
		t.Fatalf("GenerateQuotationPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateQuotationPDF() returned empty bytes")
	}
	if !bytes.HasPrefix(result, []byte("%PDF-")) {
		t.Errorf("result does not start with PDF header, got %q", result[:5])
	}
}

func TestGenerateQuotationPDF_ColumnSubset(t *testing.T) {
	data := sampleQuotationData()
	cols := SelectItemColumns([]string{"name", "qty", "total"})

	result, err := GenerateQuotationPDF(data, cols)
	if err != nil {
		t.Fatalf("GenerateQuotationPDF() error = %v", err)
	}
	if !bytes.HasPrefix(result, []byte("%PDF-")) {
		t.Error("column subset render is not a PDF")
	}
}

func TestGenerateQuotationPDF_NoItems(t *testing.T) {
	data := sampleQuotationData()
	data.Items = nil

	// An itemless quotation still renders: header, addresses, zero totals.
	result, err := GenerateQuotationPDF(data, nil)
	if err != nil {
		t.Fatalf("GenerateQuotationPDF() error = %v", err)
	}
	if !bytes.HasPrefix(result, []byte("%PDF-")) {
		t.Error("itemless render is not a PDF")
	}
}

func TestGenerateQuotationPDF_ManyItemsPaginates(t *testing.T) {
	data := sampleQuotationData()
	data.Items = nil
	for i := 1; i <= 120; i++ {
		data.Items = append(data.Items, QuotationExportItem{
			Seq:         i,
			Name:        "Bulk item",
			Description: "A reasonably long description that wraps onto multiple lines when rendered in the description column of the item table",
			Qty:         1,
			Price:       10,
			Total:       10,
		})
	}

	result, err := GenerateQuotationPDF(data, nil)
	if err != nil {
		t.Fatalf("GenerateQuotationPDF() error = %v", err)
	}
	if !bytes.HasPrefix(result, []byte("%PDF-")) {
		t.Fatal("multi-page render is not a PDF")
	}

	// The planner must have produced more pages for 120 rows than for 2.
	one := sampleQuotationData()
	short, err := GenerateQuotationPDF(one, nil)
	if err != nil {
		t.Fatalf("single-page render error = %v", err)
	}
	if len(result) <= len(short) {
		t.Errorf("120-row document (%d bytes) not larger than 2-row document (%d bytes)", len(result), len(short))
	}
}

func TestEstimateWrappedLines(t *testing.T) {
	if got := estimateWrappedLines("", 50); got != 1 {
		t.Errorf("empty text estimated at %d lines, want 1", got)
	}
	if got := estimateWrappedLines("hello", 50); got != 1 {
		t.Errorf("short text estimated at %d lines, want 1", got)
	}
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	if got := estimateWrappedLines(string(long), 50); got < 2 {
		t.Errorf("long text estimated at %d lines, want >= 2", got)
	}
}

func TestJoinNonEmpty(t *testing.T) {
	if got := joinNonEmpty("a", "", "b"); got != "a  |  b" {
		t.Errorf("joinNonEmpty = %q", got)
	}
	if got := joinNonEmpty("", ""); got != "" {
		t.Errorf("joinNonEmpty of empties = %q", got)
	}
}

func TestGenerateSummaryPDF(t *testing.T) {
	data := &SummaryData{
		From:          "2026-09-01",
		To:            "2026-09-30",
		GeneratedAt:   "2026-09-01 10:00",
		Currency:      "USD",
		Count:         2,
		GrandTotal:    4345.20,
		AverageValue:  2172.60,
		CustomerCount: 2,
		Rows: []SummaryRow{
			{Code: "ALM-Q9-014-2026", CustomerName: "Acme Corp", CreatedDate: "2026-09-01", Status: "sent", TotalAmount: 3445.20},
			{Code: "ALM-Q9-015-2026", CustomerName: "Globex", CreatedDate: "2026-09-02", Status: "draft", TotalAmount: 900},
		},
	}

	result, err := GenerateSummaryPDF(data)
	if err != nil {
		t.Fatalf("GenerateSummaryPDF() error = %v", err)
	}
	if !bytes.HasPrefix(result, []byte("%PDF-")) {
		t.Error("summary render is not a PDF")
	}
}

func TestGenerateSummaryPDF_Empty(t *testing.T) {
	data := &SummaryData{Currency: "USD"}
	if _, err := GenerateSummaryPDF(data); err == nil {
		t.Error("empty summary was rendered, want ErrNoData")
	}
}
