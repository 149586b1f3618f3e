package services

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/xuri/excelize/v2"
)

// MissingValue is rendered for absent/null cells in every tabular export.
const MissingValue = "N/A"

// TableColumn defines one exported column of a generic dataset: the record
// key to extract, the header label, and an optional value formatter.
type TableColumn struct {
	Key    string
	Label  string
	Format func(any) string
}

// TableDataset is a generic record set for export.
type TableDataset struct {
	Title   string
	Columns []TableColumn
	Records []map[string]any
}

func (d TableDataset) cell(rec map[string]any, c TableColumn) string {
	v, ok := rec[c.Key]
	if !ok || v == nil {
		return MissingValue
	}
	if c.Format != nil {
		return c.Format(v)
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return MissingValue
		}
		return s
	}
	return fmt.Sprintf("%v", v)
}

func (d TableDataset) validate() error {
	if len(d.Records) == 0 {
		return ErrNoData
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("export: no columns configured")
	}
	return nil
}

// GenerateTableExcel writes the dataset to a styled XLSX workbook.
func GenerateTableExcel(d TableDataset) ([]byte, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := d.Title
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Export"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
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
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create body style: %w", err)
	}

	for i, c := range d.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		f.SetCellValue(sheetName, name+"1", c.Label)
		if err := f.SetColWidth(sheetName, name, name, 18); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", name, err)
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(d.Columns))
	if err != nil {
		return nil, fmt.Errorf("column name: %w", err)
	}
	f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle)

	for ri, rec := range d.Records {
		rowRef := fmt.Sprintf("%d", ri+2)
		for ci, c := range d.Columns {
			name, err := excelize.ColumnNumberToName(ci + 1)
			if err != nil {
				return nil, fmt.Errorf("column name: %w", err)
			}
			f.SetCellValue(sheetName, name+rowRef, sanitizeExcelCell(d.cell(rec, c)))
		}
		f.SetCellStyle(sheetName, "A"+rowRef, lastCol+rowRef, bodyStyle)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateTableCSV writes the dataset as a CSV file with a header row.
func GenerateTableCSV(d TableDataset) ([]byte, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		header[i] = c.Label
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	line := make([]string, len(d.Columns))
	for _, rec := range d.Records {
		for i, c := range d.Columns {
			line[i] = d.cell(rec, c)
		}
		if err := w.Write(line); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// maxPDFTableColumns is the number of data columns that fit next to the
// row-number column on the 12-unit grid at one unit minimum each.
const maxPDFTableColumns = 11

// GenerateTablePDF writes the dataset as a landscape PDF table. A row
// number column is injected as the first column; the data columns share the
// remaining grid evenly. Datasets wider than the grid allows are truncated
// to the leading columns.
func GenerateTablePDF(d TableDataset) ([]byte, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if _, err := getEngine(); err != nil {
		return nil, err
	}
	if len(d.Columns) > maxPDFTableColumns {
		d.Columns = d.Columns[:maxPDFTableColumns]
	}

	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   pdfColorGray,
		}).
		Build()

	m := maroto.New(cfg)

	if d.Title != "" {
		m.AddRows(
			row.New(10).Add(
				col.New(12).Add(text.New(d.Title, props.Text{
					Size: 14, Style: fontstyle.Bold, Align: align.Center,
				})),
			),
			row.New(3),
		)
	}

	sizes := evenGridSizes(len(d.Columns))

	headerCell := props.Cell{BackgroundColor: pdfColorDark}
	header := row.New(8).Add(
		col.New(1).Add(text.New("#", props.Text{
			Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: pdfColorWhite, Top: 2,
		})).WithStyle(&headerCell),
	)
	for i, c := range d.Columns {
		header.Add(col.New(sizes[i]).Add(text.New(c.Label, props.Text{
			Size: 8, Style: fontstyle.Bold, Align: align.Left, Color: pdfColorWhite, Top: 2, Left: 1,
		})).WithStyle(&headerCell))
	}
	m.AddRows(header)

	zebra := props.Cell{BackgroundColor: pdfColorFaint}
	for ri, rec := range d.Records {
		r := row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", ri+1), props.Text{
				Size: 7.5, Align: align.Center, Top: 1.5,
			})),
		)
		for ci, c := range d.Columns {
			cell := col.New(sizes[ci]).Add(text.New(d.cell(rec, c), props.Text{
				Size: 7.5, Align: align.Left, Top: 1.5, Left: 1,
			}))
			if ri%2 == 1 {
				cell = cell.WithStyle(&zebra)
			}
			r.Add(cell)
		}
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate table PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// evenGridSizes splits the 11 grid units left after the row-number column
// as evenly as possible across n data columns (leftmost columns take the
// remainder).
func evenGridSizes(n int) []int {
	sizes := make([]int, n)
	base := 11 / n
	extra := 11 % n
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return sizes
}
