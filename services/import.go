package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"
)

const importBatchSize = 100

// TemplateField describes one column in a product import template.
type TemplateField struct {
	Key          string // internal name, matches PocketBase field name
	Label        string // human-readable header shown in Excel
	Description  string // shown on the Instructions sheet
	FormatRule   string // e.g. "numeric", ""
	ExampleValue string // shown on the Instructions sheet
	Required     bool
	Numeric      bool
}

// ProductTemplateFields returns the ordered list of columns for product import files.
func ProductTemplateFields() []TemplateField {
	return []TemplateField{
		{Key: "name", Label: "Product Name", Description: "Display name of the product", ExampleValue: "Cisco Catalyst 9200L", Required: true},
		{Key: "description", Label: "Description", Description: "Longer description shown on quotations", ExampleValue: "24-port managed switch with PoE"},
		{Key: "part_number", Label: "Part Number", Description: "Manufacturer part or SKU number", ExampleValue: "C9200L-24P-4G-E"},
		{Key: "manufacturer", Label: "Manufacturer", Description: "Brand or vendor name", ExampleValue: "Cisco"},
		{Key: "price", Label: "Unit Price", Description: "Selling price per unit", FormatRule: "Numeric, e.g. 1499.99", ExampleValue: "1499.99", Required: true, Numeric: true},
		{Key: "normal_price", Label: "Normal Price", Description: "List price before any negotiated discount", FormatRule: "Numeric", ExampleValue: "1699.00", Numeric: true},
	}
}

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is returned after parsing and validating an uploaded file.
type ValidationResult struct {
	TotalRows  int                 `json:"total_rows"`
	ValidRows  int                 `json:"valid_rows"`
	ErrorRows  int                 `json:"error_rows"`
	Errors     []ValidationError   `json:"errors"`
	ParsedRows []map[string]string `json:"-"`
	FileName   string              `json:"-"`
}

// ImportResult holds the outcome of a batch import operation.
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Imported   int              `json:"imported"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
	RolledBack bool             `json:"rolled_back"`
}

// ImportRowError represents a failure to insert a specific row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file multipart.File) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return rows[0], rows[1:], nil
}

// mapHeadersToFields maps uploaded column headers to TemplateField keys.
// Returns an ordered list of field keys (one per column) and any unrecognized columns.
func mapHeadersToFields(headers []string, fields []TemplateField) ([]string, []string) {
	labelToKey := make(map[string]string, len(fields))
	for _, f := range fields {
		labelToKey[strings.ToLower(strings.TrimSpace(f.Label))] = f.Key
	}

	mapped := make([]string, len(headers))
	var unrecognized []string

	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		// Strip trailing " *" that our template adds for required fields
		norm = strings.TrimSpace(strings.TrimSuffix(norm, "*"))

		if key, ok := labelToKey[norm]; ok {
			mapped[i] = key
		} else {
			mapped[i] = ""
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// ValidateProductFile parses and validates an uploaded product file (.csv or .xlsx).
// Field-level problems are accumulated per row; a row with any error counts
// toward ErrorRows but parsing continues so the caller sees every problem at once.
func ValidateProductFile(file multipart.File, fileName string) (*ValidationResult, error) {
	fields := ProductTemplateFields()

	var headers []string
	var dataRows [][]string
	var err error

	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lower, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file type: expected .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	mapped, _ := mapHeadersToFields(headers, fields)

	fieldByKey := make(map[string]TemplateField, len(fields))
	for _, f := range fields {
		fieldByKey[f.Key] = f
	}

	result := &ValidationResult{
		TotalRows: len(dataRows),
		FileName:  fileName,
	}

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed + header row
		parsed := make(map[string]string, len(fields))
		rowHasError := false

		for colIdx, key := range mapped {
			if key == "" || colIdx >= len(row) {
				continue
			}
			parsed[key] = strings.TrimSpace(row[colIdx])
		}

		if isEmptyRow(parsed) {
			result.TotalRows--
			continue
		}

		for _, f := range fields {
			val := parsed[f.Key]
			if f.Required && val == "" {
				result.Errors = append(result.Errors, ValidationError{
					Row:     rowNum,
					Field:   f.Label,
					Message: "Required field is empty",
				})
				rowHasError = true
				continue
			}
			if f.Numeric && val != "" {
				if _, convErr := strconv.ParseFloat(val, 64); convErr != nil {
					result.Errors = append(result.Errors, ValidationError{
						Row:     rowNum,
						Field:   f.Label,
						Message: fmt.Sprintf("%q is not a valid number", val),
					})
					rowHasError = true
				}
			}
		}

		if rowHasError {
			result.ErrorRows++
		} else {
			result.ValidRows++
			result.ParsedRows = append(result.ParsedRows, parsed)
		}
	}

	return result, nil
}

func isEmptyRow(parsed map[string]string) bool {
	for _, v := range parsed {
		if v != "" {
			return false
		}
	}
	return true
}

// CommitProductImport inserts validated product rows into PocketBase in chunks
// of importBatchSize. Each chunk runs in its own transaction; a failing chunk
// is rolled back and recorded, and the remaining chunks still proceed.
func CommitProductImport(app *pocketbase.PocketBase, parsedRows []map[string]string) (*ImportResult, error) {
	col, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return nil, fmt.Errorf("products collection not found: %w", err)
	}

	result := &ImportResult{
		TotalRows: len(parsedRows),
	}

	for chunkStart := 0; chunkStart < len(parsedRows); chunkStart += importBatchSize {
		chunkEnd := chunkStart + importBatchSize
		if chunkEnd > len(parsedRows) {
			chunkEnd = len(parsedRows)
		}
		chunk := parsedRows[chunkStart:chunkEnd]

		chunkErrors := insertProductChunk(app, col, chunk, chunkStart)
		if len(chunkErrors) > 0 {
			result.Errors = append(result.Errors, chunkErrors...)
			result.Failed += len(chunk) // entire chunk failed
			result.RolledBack = true
		} else {
			result.Imported += len(chunk)
		}
	}

	return result, nil
}

// insertProductChunk inserts a batch of rows within a RunInTransaction block.
// If any row fails, the entire chunk is rolled back and errors are returned.
func insertProductChunk(
	app *pocketbase.PocketBase,
	col *core.Collection,
	rows []map[string]string,
	startOffset int,
) []ImportRowError {
	var chunkErrors []ImportRowError

	err := app.RunInTransaction(func(txApp core.App) error {
		for i, rowData := range rows {
			rowNum := startOffset + i + 2 // 1-indexed + header row

			record := core.NewRecord(col)
			for _, f := range ProductTemplateFields() {
				val, ok := rowData[f.Key]
				if !ok || val == "" {
					continue
				}
				if f.Numeric {
					num, convErr := strconv.ParseFloat(val, 64)
					if convErr != nil {
						chunkErrors = append(chunkErrors, ImportRowError{
							Row:     rowNum,
							Field:   f.Label,
							Message: fmt.Sprintf("%q is not a valid number", val),
						})
						return fmt.Errorf("invalid number at row %d", rowNum)
					}
					record.Set(f.Key, num)
				} else {
					record.Set(f.Key, val)
				}
			}

			if err := txApp.Save(record); err != nil {
				chunkErrors = append(chunkErrors, ImportRowError{
					Row:     rowNum,
					Field:   "",
					Message: fmt.Sprintf("Failed to save: %s", err.Error()),
				})
				return fmt.Errorf("save failed at row %d: %w", rowNum, err)
			}
		}
		return nil
	})

	if err != nil {
		log.Printf("import: chunk insert rolled back: %v", err)
		if len(chunkErrors) == 0 {
			chunkErrors = append(chunkErrors, ImportRowError{
				Row:     startOffset + 2,
				Field:   "",
				Message: fmt.Sprintf("Transaction failed: %s", err.Error()),
			})
		}
	}

	return chunkErrors
}

// GenerateProductTemplate creates a downloadable .xlsx template for product imports.
// Required columns get a blue header, optional ones gray, and an Instructions
// sheet documents each column with an example value.
func GenerateProductTemplate() ([]byte, error) {
	fields := ProductTemplateFields()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName(f.GetSheetName(0), sheetName)

	requiredHeaderStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1D4ED8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})

	optionalHeaderStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#6B7280"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})

	for i, field := range fields {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		cell := fmt.Sprintf("%s1", colName)

		headerText := field.Label
		if field.Required {
			headerText += " *"
		}
		f.SetCellValue(sheetName, cell, headerText)

		if field.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredHeaderStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, optionalHeaderStyle)
		}

		width := float64(len(field.Label)) * 1.3
		if width < 15 {
			width = 15
		}
		f.SetColWidth(sheetName, colName, colName, width)
	}

	if err := addInstructionsSheet(f, fields); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}

// addInstructionsSheet appends a sheet describing each template column.
func addInstructionsSheet(f *excelize.File, fields []TemplateField) error {
	sheetName := "Instructions"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("instructions sheet: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#374151"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})

	headers := []string{"Column", "Required", "Description", "Format", "Example"}
	for i, h := range headers {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s1", colName)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, field := range fields {
		rowNum := i + 2
		required := "No"
		if field.Required {
			required = "Yes"
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), field.Label)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), required)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), field.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), field.FormatRule)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), field.ExampleValue)
	}

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 45)
	f.SetColWidth(sheetName, "D", "D", 25)
	f.SetColWidth(sheetName, "E", "E", 28)

	return nil
}

// GenerateImportErrorReport produces a CSV listing every validation error so
// the user can download it, fix the source file, and retry the upload.
func GenerateImportErrorReport(errors []ValidationError) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Row", "Field", "Problem"}); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	for _, e := range errors {
		record := []string{strconv.Itoa(e.Row), e.Field, e.Message}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write error report: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush error report: %w", err)
	}
	return buf.Bytes(), nil
}
