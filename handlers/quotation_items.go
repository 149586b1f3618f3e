package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// getNextSortOrder returns the next display position for a new line item.
func getNextSortOrder(app *pocketbase.PocketBase, quotationID string) int {
	items, err := loadQuotationItems(app, quotationID)
	if err != nil || len(items) == 0 {
		return 1
	}
	return items[len(items)-1].GetInt("sort_order") + 1
}

// setItemTotal recomputes an item's stored total from its raw qty and price.
func setItemTotal(r *core.Record) {
	li := services.LineItem{Qty: r.GetString("qty"), Price: r.GetString("price")}
	r.Set("total", services.CalcLineTotal(li.QtyValue(), li.PriceValue()))
}

// HandleQuotationItemCreate appends a line item to a quotation and refreshes
// the quotation totals.
func HandleQuotationItemCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quotationID := e.Request.PathValue("id")
		quotation, err := app.FindRecordById("quotations", quotationID)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Quotation not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}

		col, err := app.FindCollectionByNameOrId("quotation_items")
		if err != nil {
			log.Printf("items: collection not found: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to add item")
		}

		record := core.NewRecord(col)
		record.Set("quotation", quotation.Id)
		record.Set("sort_order", getNextSortOrder(app, quotation.Id))
		record.Set("name", strings.TrimSpace(e.Request.FormValue("name")))
		record.Set("description", strings.TrimSpace(e.Request.FormValue("description")))
		record.Set("part_number", strings.TrimSpace(e.Request.FormValue("part_number")))
		record.Set("manufacturer", strings.TrimSpace(e.Request.FormValue("manufacturer")))
		record.Set("qty", strings.TrimSpace(e.Request.FormValue("qty")))
		record.Set("price", strings.TrimSpace(e.Request.FormValue("price")))
		record.Set("normal_price", formFloat(e, "normal_price"))
		setItemTotal(record)

		if err := app.Save(record); err != nil {
			log.Printf("items: save failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to add item")
		}

		if err := recomputeQuotationTotals(app, quotation); err != nil {
			log.Printf("items: recompute totals: %v", err)
		}

		return respondOK(e, quotationItemJSON(record))
	}
}

// HandleQuotationItemUpdate edits a line item's fields. Qty and price are
// stored as the raw strings the client typed; only the derived total is
// recomputed from them.
func HandleQuotationItemUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("itemId")
		record, err := app.FindRecordById("quotation_items", itemID)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Item not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}

		for _, field := range []string{"name", "description", "part_number", "manufacturer", "qty", "price"} {
			if e.Request.Form.Has(field) {
				record.Set(field, strings.TrimSpace(e.Request.FormValue(field)))
			}
		}
		if e.Request.Form.Has("normal_price") {
			record.Set("normal_price", formFloat(e, "normal_price"))
		}
		if e.Request.Form.Has("sort_order") {
			record.Set("sort_order", int(formFloat(e, "sort_order")))
		}
		setItemTotal(record)

		if err := app.Save(record); err != nil {
			log.Printf("items: update failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to update item")
		}

		if quotation, err := app.FindRecordById("quotations", record.GetString("quotation")); err == nil {
			if err := recomputeQuotationTotals(app, quotation); err != nil {
				log.Printf("items: recompute totals: %v", err)
			}
		}

		return respondOK(e, quotationItemJSON(record))
	}
}

// HandleQuotationItemDelete removes a line item and refreshes the quotation
// totals.
func HandleQuotationItemDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("itemId")
		record, err := app.FindRecordById("quotation_items", itemID)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Item not found")
		}

		quotationID := record.GetString("quotation")
		if err := app.Delete(record); err != nil {
			log.Printf("items: delete failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to delete item")
		}

		if quotation, err := app.FindRecordById("quotations", quotationID); err == nil {
			if err := recomputeQuotationTotals(app, quotation); err != nil {
				log.Printf("items: recompute totals: %v", err)
			}
		}

		return respondOK(e, map[string]any{"deleted": itemID})
	}
}

// HandleQuotationItemResolve fills a line item from a product record. The
// typed quantity survives; name, description, part number, manufacturer and
// price come from the product.
func HandleQuotationItemResolve(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("itemId")
		record, err := app.FindRecordById("quotation_items", itemID)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Item not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}
		productID := strings.TrimSpace(e.Request.FormValue("product_id"))
		if productID == "" {
			return respondError(e, http.StatusBadRequest, "Product id is required")
		}

		lookup := &services.AppProductLookup{App: app}
		info, err := lookup.FindProduct(productID)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Product not found")
		}

		record.Set("product_id", info.ID)
		record.Set("name", info.Name)
		record.Set("description", info.Description)
		record.Set("part_number", info.PartNumber)
		record.Set("manufacturer", info.Manufacturer)
		record.Set("price", fmt.Sprintf("%g", info.Price))
		record.Set("normal_price", info.NormalPrice)
		setItemTotal(record)

		if err := app.Save(record); err != nil {
			log.Printf("items: resolve save failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to update item")
		}

		if quotation, err := app.FindRecordById("quotations", record.GetString("quotation")); err == nil {
			if err := recomputeQuotationTotals(app, quotation); err != nil {
				log.Printf("items: recompute totals: %v", err)
			}
		}

		return respondOK(e, quotationItemJSON(record))
	}
}
