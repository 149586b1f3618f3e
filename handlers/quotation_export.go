package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv"
)

// exportDisposition maps the mode query param to a Content-Disposition:
// mode=print serves the file inline so the browser opens its print dialog,
// anything else downloads it.
func exportDisposition(e *core.RequestEvent) string {
	if e.Request.URL.Query().Get("mode") == "print" {
		return "inline"
	}
	return "attachment"
}

// selectedColumns reads the columns query param ("name,qty,price") and
// resolves it to the renderable column set.
func selectedColumns(e *core.RequestEvent) []services.ItemColumn {
	raw := strings.TrimSpace(e.Request.URL.Query().Get("columns"))
	if raw == "" {
		return services.DefaultItemColumns()
	}
	keys := []string{}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return services.SelectItemColumns(keys)
}

// HandleQuotationExport renders one quotation as a document. The format path
// value selects pdf, xlsx or csv; PDF honors mode=print and a columns
// selection.
func HandleQuotationExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		format := e.Request.PathValue("format")

		data, err := services.BuildQuotationExportData(app, id)
		if err != nil {
			log.Printf("export: build data for %s: %v", id, err)
			return respondError(e, http.StatusNotFound, "Quotation not found")
		}

		base := sanitizeFilename(data.Code)
		switch format {
		case "pdf":
			out, err := services.GenerateQuotationPDF(data, selectedColumns(e))
			if err != nil {
				log.Printf("export: pdf for %s: %v", data.Code, err)
				return respondError(e, http.StatusInternalServerError, "Failed to generate PDF")
			}
			return writeFile(e, contentTypePDF, base+".pdf", exportDisposition(e), out)
		case "xlsx":
			out, err := services.GenerateQuotationExcel(data)
			if err != nil {
				log.Printf("export: excel for %s: %v", data.Code, err)
				return respondError(e, http.StatusInternalServerError, "Failed to generate Excel file")
			}
			return writeFile(e, contentTypeXLSX, base+".xlsx", "attachment", out)
		case "csv":
			out, err := services.GenerateQuotationCSV(data)
			if err != nil {
				if errors.Is(err, services.ErrNoData) {
					return respondError(e, http.StatusUnprocessableEntity, "Quotation has no items to export")
				}
				log.Printf("export: csv for %s: %v", data.Code, err)
				return respondError(e, http.StatusInternalServerError, "Failed to generate CSV file")
			}
			return writeFile(e, contentTypeCSV, base+".csv", "attachment", out)
		default:
			return respondError(e, http.StatusBadRequest, "Unknown export format: "+format)
		}
	}
}

// selectTableColumns filters available columns down to the comma-separated
// keys in raw, keeping the requested order. Unknown keys are skipped; an
// empty or fully unknown selection falls back to all columns.
func selectTableColumns(available []services.TableColumn, raw string) []services.TableColumn {
	byKey := make(map[string]services.TableColumn, len(available))
	for _, c := range available {
		byKey[c.Key] = c
	}

	var out []services.TableColumn
	for _, k := range strings.Split(raw, ",") {
		if c, ok := byKey[strings.TrimSpace(k)]; ok {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return available
	}
	return out
}

// HandleQuotationListExport exports the quotation register as a generic
// table in xlsx, csv or pdf. A columns query param narrows the register to
// a subset of its columns.
func HandleQuotationListExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		format := e.Request.PathValue("format")

		status := strings.TrimSpace(e.Request.URL.Query().Get("status"))
		filter := "id != ''"
		params := map[string]any{}
		if status != "" {
			filter += " && status = {:status}"
			params["status"] = status
		}
		records, err := app.FindRecordsByFilter("quotations", filter, "-created", 0, 0, params)
		if err != nil {
			log.Printf("export: list query: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to load quotations")
		}

		rt := services.LoadRateTable(app)
		registerColumns := []services.TableColumn{
			{Key: "code", Label: "Code"},
			{Key: "customer_name", Label: "Customer"},
			{Key: "created", Label: "Date"},
			{Key: "status", Label: "Status"},
			{Key: "total_amount", Label: "Total", Format: func(v any) string {
				f, _ := v.(float64)
				return services.FormatMoney(f, rt.Base)
			}},
		}
		dataset := services.TableDataset{
			Title:   "Quotations",
			Columns: selectTableColumns(registerColumns, e.Request.URL.Query().Get("columns")),
		}
		for _, rec := range records {
			row := map[string]any{
				"code":          rec.GetString("code"),
				"customer_name": rec.GetString("customer_name"),
				"status":        rec.GetString("status"),
				"total_amount":  rec.GetFloat("total_amount"),
			}
			if dt := rec.GetDateTime("created"); !dt.IsZero() {
				row["created"] = dt.Time().Format("02 Jan 2006")
			}
			dataset.Records = append(dataset.Records, row)
		}

		filename := fmt.Sprintf("quotations-%s", time.Now().Format("2006-01-02"))
		var out []byte
		var contentType string
		switch format {
		case "xlsx":
			out, err = services.GenerateTableExcel(dataset)
			contentType = contentTypeXLSX
		case "csv":
			out, err = services.GenerateTableCSV(dataset)
			contentType = contentTypeCSV
		case "pdf":
			out, err = services.GenerateTablePDF(dataset)
			contentType = contentTypePDF
		default:
			return respondError(e, http.StatusBadRequest, "Unknown export format: "+format)
		}
		if err != nil {
			if errors.Is(err, services.ErrNoData) {
				return respondError(e, http.StatusUnprocessableEntity, "No quotations to export")
			}
			log.Printf("export: list %s: %v", format, err)
			return respondError(e, http.StatusInternalServerError, "Failed to generate export")
		}

		return writeFile(e, contentType, filename+"."+format, "attachment", out)
	}
}

// HandleQuotationSummaryExport renders the aggregated summary PDF for a
// status/date-range selection. Date params use YYYY-MM-DD.
func HandleQuotationSummaryExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		query := e.Request.URL.Query()

		var from, to time.Time
		var err error
		if raw := strings.TrimSpace(query.Get("from")); raw != "" {
			if from, err = time.Parse("2006-01-02", raw); err != nil {
				return respondError(e, http.StatusBadRequest, "Invalid from date")
			}
		}
		if raw := strings.TrimSpace(query.Get("to")); raw != "" {
			if to, err = time.Parse("2006-01-02", raw); err != nil {
				return respondError(e, http.StatusBadRequest, "Invalid to date")
			}
			// make the range inclusive of the end day
			to = to.Add(24*time.Hour - time.Second)
		}

		data, err := services.BuildQuotationSummaryData(app, strings.TrimSpace(query.Get("status")), from, to)
		if err != nil {
			log.Printf("export: summary data: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to build summary")
		}

		out, err := services.GenerateSummaryPDF(data)
		if err != nil {
			if errors.Is(err, services.ErrNoData) {
				return respondError(e, http.StatusUnprocessableEntity, "No quotations in the selected range")
			}
			log.Printf("export: summary pdf: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to generate summary")
		}

		filename := fmt.Sprintf("quotation-summary-%s.pdf", time.Now().Format("2006-01-02"))
		return writeFile(e, contentTypePDF, filename, exportDisposition(e), out)
	}
}
