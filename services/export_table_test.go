package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func sampleDataset() TableDataset {
	return TableDataset{
		Title: "Customers",
		Columns: []TableColumn{
			{Key: "name", Label: "Name"},
			{Key: "city", Label: "City"},
			{Key: "balance", Label: "Balance", Format: func(v any) string {
				f, _ := v.(float64)
				return FormatMoney(f, "USD")
			}},
		},
		Records: []map[string]any{
			{"name": "Acme Corp", "city": "Kinshasa", "balance": 1250.5},
			{"name": "Globex", "city": nil, "balance": 0.0},
			{"name": "Initech", "balance": 99.99},
		},
	}
}

func TestGenerateTableExcel(t *testing.T) {
	data, err := GenerateTableExcel(sampleDataset())
	if err != nil {
		t.Fatalf("GenerateTableExcel returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3 data rows", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][2] != "Balance" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][0] != "Acme Corp" {
		t.Errorf("first data row = %v", rows[1])
	}
	if rows[2][1] != MissingValue {
		t.Errorf("nil cell rendered as %q, want %q", rows[2][1], MissingValue)
	}
	if rows[3][1] != MissingValue {
		t.Errorf("absent cell rendered as %q, want %q", rows[3][1], MissingValue)
	}
	if rows[1][2] != "$1,250.50" {
		t.Errorf("formatted cell = %q, want $1,250.50", rows[1][2])
	}
}

func TestGenerateTableCSV(t *testing.T) {
	data, err := GenerateTableCSV(sampleDataset())
	if err != nil {
		t.Fatalf("GenerateTableCSV returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "Name,City,Balance") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[2], MissingValue) {
		t.Errorf("nil cell missing placeholder: %q", lines[2])
	}
}

func TestGenerateTablePDF(t *testing.T) {
	data, err := GenerateTablePDF(sampleDataset())
	if err != nil {
		t.Fatalf("GenerateTablePDF returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with PDF magic bytes")
	}
}

func TestGenerateTablePDF_ManyColumns(t *testing.T) {
	// More data columns than grid units; the overflow is truncated instead
	// of producing rows wider than the grid.
	d := TableDataset{Title: "Wide"}
	rec := map[string]any{}
	for i := 0; i < 14; i++ {
		key := fmt.Sprintf("c%d", i)
		d.Columns = append(d.Columns, TableColumn{Key: key, Label: key})
		rec[key] = fmt.Sprintf("v%d", i)
	}
	d.Records = []map[string]any{rec}

	data, err := GenerateTablePDF(d)
	if err != nil {
		t.Fatalf("GenerateTablePDF returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with PDF magic bytes")
	}
}

func TestEvenGridSizes(t *testing.T) {
	for n := 1; n <= maxPDFTableColumns; n++ {
		sizes := evenGridSizes(n)
		sum := 0
		for _, s := range sizes {
			sum += s
		}
		if sum != 11 {
			t.Errorf("n=%d: sizes %v sum to %d, want 11", n, sizes, sum)
		}
	}
}

func TestTableExports_EmptyDataset(t *testing.T) {
	empty := sampleDataset()
	empty.Records = nil

	generators := map[string]func(TableDataset) ([]byte, error){
		"excel": GenerateTableExcel,
		"csv":   GenerateTableCSV,
		"pdf":   GenerateTablePDF,
	}

	for name, gen := range generators {
		t.Run(name, func(t *testing.T) {
			_, err := gen(empty)
			if !errors.Is(err, ErrNoData) {
				t.Errorf("empty dataset: err = %v, want ErrNoData", err)
			}
		})
	}
}

func TestTableExports_NoColumns(t *testing.T) {
	d := sampleDataset()
	d.Columns = nil

	if _, err := GenerateTableExcel(d); err == nil {
		t.Error("dataset without columns was accepted")
	}
}

func TestGenerateTableExcel_ManyColumns(t *testing.T) {
	// Column letters past Z must resolve correctly.
	d := TableDataset{Title: "Wide"}
	rec := map[string]any{}
	for i := 0; i < 30; i++ {
		key := fmt.Sprintf("c%d", i)
		d.Columns = append(d.Columns, TableColumn{Key: key, Label: key})
		rec[key] = fmt.Sprintf("v%d", i)
	}
	d.Records = []map[string]any{rec}

	data, err := GenerateTableExcel(d)
	if err != nil {
		t.Fatalf("GenerateTableExcel returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid xlsx: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(f.GetSheetName(0))
	if len(rows[0]) != 30 {
		t.Errorf("got %d header cells, want 30", len(rows[0]))
	}
	if rows[1][29] != "v29" {
		t.Errorf("cell AD2 = %q, want v29", rows[1][29])
	}
}
