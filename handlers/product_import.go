package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// HandleProductImportValidate receives a product file upload, validates it
// and returns the validation summary. When every row is valid, the parsed
// rows are echoed back so the client can post them to the commit endpoint
// unchanged.
// Route: POST /products/import/validate
func HandleProductImportValidate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return respondError(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return respondError(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ValidateProductFile(file, header.Filename)
		if err != nil {
			log.Printf("product_import: validate: %v", err)
			return respondError(e, http.StatusBadRequest, err.Error())
		}

		payload := map[string]any{
			"total_rows": result.TotalRows,
			"valid_rows": result.ValidRows,
			"error_rows": result.ErrorRows,
			"errors":     result.Errors,
		}
		if result.ErrorRows == 0 {
			payload["parsed_rows"] = result.ParsedRows
		}
		return respondOK(e, payload)
	}
}

// HandleProductImportCommit inserts previously validated rows.
// Route: POST /products/import/commit
func HandleProductImportCommit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body struct {
			Rows []map[string]string `json:"rows"`
		}
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid row data")
		}
		if len(body.Rows) == 0 {
			return respondError(e, http.StatusBadRequest, "No rows to import")
		}

		result, err := services.CommitProductImport(app, body.Rows)
		if err != nil {
			log.Printf("product_import: commit: %v", err)
			return respondError(e, http.StatusInternalServerError, "Import failed")
		}

		return respondOK(e, result)
	}
}

// HandleProductTemplate downloads the import template workbook.
// Route: GET /products/import/template
func HandleProductTemplate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.GenerateProductTemplate()
		if err != nil {
			log.Printf("product_import: template: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to generate template")
		}

		return writeFile(e, contentTypeXLSX, "product-import-template.xlsx", "attachment", data)
	}
}

// HandleProductImportErrorReport downloads the posted validation errors as
// a CSV so the user can fix the source file offline.
// Route: POST /products/import/errors
func HandleProductImportErrorReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var errs []services.ValidationError
		if err := json.NewDecoder(e.Request.Body).Decode(&errs); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid error data")
		}

		report, err := services.GenerateImportErrorReport(errs)
		if err != nil {
			log.Printf("product_import: error report: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to generate report")
		}

		filename := fmt.Sprintf("import-errors-%s.csv", time.Now().Format("2006-01-02"))
		return writeFile(e, contentTypeCSV, filename, "attachment", report)
	}
}
