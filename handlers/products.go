package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

func productJSON(r *core.Record) map[string]any {
	return map[string]any{
		"id":           r.Id,
		"name":         r.GetString("name"),
		"description":  r.GetString("description"),
		"part_number":  r.GetString("part_number"),
		"manufacturer": r.GetString("manufacturer"),
		"price":        r.GetFloat("price"),
		"normal_price": r.GetFloat("normal_price"),
	}
}

// HandleProductList returns products, optionally filtered by a search term
// matched against name, part number and manufacturer. The line item editor
// uses this as its typeahead source.
func HandleProductList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		search := strings.TrimSpace(e.Request.URL.Query().Get("q"))

		filter := "id != ''"
		params := map[string]any{}
		if search != "" {
			filter = "name ~ {:q} || part_number ~ {:q} || manufacturer ~ {:q}"
			params["q"] = search
		}

		limit := 50
		if raw := e.Request.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}

		offset := 0
		if raw := e.Request.URL.Query().Get("offset"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				offset = n
			}
		}

		records, err := app.FindRecordsByFilter("products", filter, "name", limit, offset, params)
		if err != nil {
			log.Printf("products: list failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to load products")
		}

		out := make([]map[string]any, 0, len(records))
		for _, r := range records {
			out = append(out, productJSON(r))
		}
		return respondOK(e, map[string]any{"products": out})
	}
}

// HandleProductCreate saves a new product from form values.
func HandleProductCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}

		name := strings.TrimSpace(e.Request.FormValue("name"))
		if name == "" {
			return respondError(e, http.StatusBadRequest, "Name is required")
		}

		price, err := parsePriceField(e.Request.FormValue("price"))
		if err != nil {
			return respondError(e, http.StatusBadRequest, "Price must be a number")
		}
		normalPrice, err := parsePriceField(e.Request.FormValue("normal_price"))
		if err != nil {
			return respondError(e, http.StatusBadRequest, "Normal price must be a number")
		}

		col, err := app.FindCollectionByNameOrId("products")
		if err != nil {
			log.Printf("products: collection not found: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to save product")
		}

		record := core.NewRecord(col)
		record.Set("name", name)
		record.Set("description", strings.TrimSpace(e.Request.FormValue("description")))
		record.Set("part_number", strings.TrimSpace(e.Request.FormValue("part_number")))
		record.Set("manufacturer", strings.TrimSpace(e.Request.FormValue("manufacturer")))
		record.Set("price", price)
		record.Set("normal_price", normalPrice)

		if err := app.Save(record); err != nil {
			log.Printf("products: save failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to save product")
		}

		return respondOK(e, productJSON(record))
	}
}

// HandleProductUpdate updates submitted fields of an existing product.
func HandleProductUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		record, err := app.FindRecordById("products", id)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Product not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}

		for _, field := range []string{"name", "description", "part_number", "manufacturer"} {
			if e.Request.Form.Has(field) {
				val := strings.TrimSpace(e.Request.FormValue(field))
				if field == "name" && val == "" {
					return respondError(e, http.StatusBadRequest, "Name cannot be empty")
				}
				record.Set(field, val)
			}
		}
		for _, field := range []string{"price", "normal_price"} {
			if e.Request.Form.Has(field) {
				val, err := parsePriceField(e.Request.FormValue(field))
				if err != nil {
					return respondError(e, http.StatusBadRequest, "Price must be a number")
				}
				record.Set(field, val)
			}
		}

		if err := app.Save(record); err != nil {
			log.Printf("products: update failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to update product")
		}

		return respondOK(e, productJSON(record))
	}
}

// HandleProductView returns one product.
func HandleProductView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("products", e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, http.StatusNotFound, "Product not found")
		}
		return respondOK(e, productJSON(record))
	}
}

// HandleProductDelete moves a product to the trash. Line items keep their
// own copies of the product fields, so existing quotations are unaffected.
func HandleProductDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		entry, err := services.MoveRecordToTrash(app, "product", id)
		if err != nil {
			log.Printf("products: trash failed: %v", err)
			return respondError(e, http.StatusNotFound, "Product not found")
		}

		return respondOK(e, map[string]any{"trash_id": entry.Id})
	}
}

func parsePriceField(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
