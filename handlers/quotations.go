package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

func quotationJSON(r *core.Record) map[string]any {
	return map[string]any{
		"id":               r.Id,
		"code":             r.GetString("code"),
		"customer":         r.GetString("customer"),
		"customer_name":    r.GetString("customer_name"),
		"customer_email":   r.GetString("customer_email"),
		"customer_phone":   r.GetString("customer_phone"),
		"customer_address": r.GetString("customer_address"),
		"status":           r.GetString("status"),
		"reference":        r.GetString("reference"),
		"attention":        r.GetString("attention"),
		"valid_until":      r.GetString("valid_until"),
		"eta":              r.GetString("eta"),
		"currency":         r.GetString("currency"),
		"discount_type":    r.GetString("discount_type"),
		"discount_value":   r.GetFloat("discount_value"),
		"tax_rate":         r.GetFloat("tax_rate"),
		"subtotal":         r.GetFloat("subtotal"),
		"discount_amount":  r.GetFloat("discount_amount"),
		"tax_amount":       r.GetFloat("tax_amount"),
		"total_amount":     r.GetFloat("total_amount"),
		"expected_income":  r.GetFloat("expected_income"),
		"notes":            r.GetString("notes"),
		"terms":            r.GetString("terms"),
		"created":          r.GetDateTime("created").String(),
		"updated":          r.GetDateTime("updated").String(),
	}
}

func quotationItemJSON(r *core.Record) map[string]any {
	return map[string]any{
		"id":           r.Id,
		"sort_order":   r.GetInt("sort_order"),
		"product_id":   r.GetString("product_id"),
		"name":         r.GetString("name"),
		"description":  r.GetString("description"),
		"part_number":  r.GetString("part_number"),
		"manufacturer": r.GetString("manufacturer"),
		"qty":          r.GetString("qty"),
		"price":        r.GetString("price"),
		"normal_price": r.GetFloat("normal_price"),
		"total":        r.GetFloat("total"),
	}
}

// loadQuotationItems returns a quotation's items in display order.
func loadQuotationItems(app *pocketbase.PocketBase, quotationID string) ([]*core.Record, error) {
	return app.FindRecordsByFilter(
		"quotation_items",
		"quotation = {:quotation}",
		"sort_order",
		0, 0,
		map[string]any{"quotation": quotationID},
	)
}

// recomputeQuotationTotals rebuilds the stored totals from the current line
// items and the quotation's discount/tax configuration.
func recomputeQuotationTotals(app *pocketbase.PocketBase, q *core.Record) error {
	records, err := loadQuotationItems(app, q.Id)
	if err != nil {
		return err
	}

	items := make([]services.LineItem, 0, len(records))
	for _, r := range records {
		items = append(items, services.LineItem{
			Qty:   r.GetString("qty"),
			Price: r.GetString("price"),
		})
	}

	totals := services.CalcQuotationTotals(items, q.GetString("discount_type"), q.GetFloat("discount_value"), q.GetFloat("tax_rate"))
	q.Set("subtotal", totals.Subtotal)
	q.Set("discount_amount", totals.DiscountAmount)
	q.Set("tax_amount", totals.Tax)
	q.Set("total_amount", totals.TotalAmount)
	q.Set("expected_income", totals.ExpectedIncome)
	return app.Save(q)
}

// HandleQuotationList returns quotations newest first, filterable by status,
// customer name and creation date range.
func HandleQuotationList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		query := e.Request.URL.Query()

		filters := []string{"id != ''"}
		params := map[string]any{}
		if status := strings.TrimSpace(query.Get("status")); status != "" {
			filters = append(filters, "status = {:status}")
			params["status"] = status
		}
		if q := strings.TrimSpace(query.Get("q")); q != "" {
			filters = append(filters, "(code ~ {:q} || customer_name ~ {:q})")
			params["q"] = q
		}
		if from := strings.TrimSpace(query.Get("from")); from != "" {
			if t, err := time.Parse("2006-01-02", from); err == nil {
				filters = append(filters, "created >= {:from}")
				params["from"] = t.Format("2006-01-02 15:04:05.000Z")
			}
		}
		if to := strings.TrimSpace(query.Get("to")); to != "" {
			if t, err := time.Parse("2006-01-02", to); err == nil {
				end := t.Add(24*time.Hour - time.Second)
				filters = append(filters, "created <= {:to}")
				params["to"] = end.Format("2006-01-02 15:04:05.000Z")
			}
		}

		limit, offset := 0, 0
		if raw := query.Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		if raw := query.Get("offset"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				offset = n
			}
		}

		records, err := app.FindRecordsByFilter("quotations", strings.Join(filters, " && "), "-created", limit, offset, params)
		if err != nil {
			log.Printf("quotations: list failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to load quotations")
		}

		out := make([]map[string]any, 0, len(records))
		for _, r := range records {
			out = append(out, quotationJSON(r))
		}
		return respondOK(e, map[string]any{"quotations": out})
	}
}

// HandleQuotationView returns one quotation with its items.
func HandleQuotationView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		q, err := app.FindRecordById("quotations", id)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Quotation not found")
		}

		items, err := loadQuotationItems(app, q.Id)
		if err != nil {
			log.Printf("quotations: load items: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to load items")
		}

		itemsOut := make([]map[string]any, 0, len(items))
		for _, it := range items {
			itemsOut = append(itemsOut, quotationItemJSON(it))
		}

		payload := quotationJSON(q)
		payload["items"] = itemsOut
		return respondOK(e, payload)
	}
}

// HandleQuotationCreate creates a new quotation. The code is generated
// server-side from the configured prefix and the current month's sequence,
// and the customer contact fields are snapshotted onto the record.
func HandleQuotationCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}

		code, err := services.GenerateQuoteCode(app, time.Now())
		if err != nil {
			log.Printf("quotations: generate code: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to generate quotation code")
		}

		col, err := app.FindCollectionByNameOrId("quotations")
		if err != nil {
			log.Printf("quotations: collection not found: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to save quotation")
		}

		validUntil := strings.TrimSpace(e.Request.FormValue("valid_until"))
		if validUntil != "" && !validUntilAfter(validUntil, time.Now()) {
			return respondError(e, http.StatusBadRequest, "Valid-until date must be after the creation date")
		}

		record := core.NewRecord(col)
		record.Set("code", code)
		record.Set("status", "draft")
		record.Set("currency", defaultString(e.Request.FormValue("currency"), services.LoadRateTable(app).Base))
		record.Set("discount_type", defaultString(e.Request.FormValue("discount_type"), services.DiscountAmount))
		record.Set("discount_value", formFloat(e, "discount_value"))
		record.Set("tax_rate", formFloat(e, "tax_rate"))
		record.Set("reference", strings.TrimSpace(e.Request.FormValue("reference")))
		record.Set("attention", strings.TrimSpace(e.Request.FormValue("attention")))
		record.Set("valid_until", validUntil)
		record.Set("eta", strings.TrimSpace(e.Request.FormValue("eta")))
		record.Set("notes", strings.TrimSpace(e.Request.FormValue("notes")))
		record.Set("terms", strings.TrimSpace(e.Request.FormValue("terms")))

		if customerID := strings.TrimSpace(e.Request.FormValue("customer")); customerID != "" {
			customer, err := app.FindRecordById("customers", customerID)
			if err != nil {
				return respondError(e, http.StatusBadRequest, "Customer not found")
			}
			record.Set("customer", customerID)
			record.Set("customer_name", customer.GetString("name"))
			record.Set("customer_email", customer.GetString("email"))
			record.Set("customer_phone", customer.GetString("phone"))
			record.Set("customer_address", customer.GetString("address"))
		}

		if err := app.Save(record); err != nil {
			log.Printf("quotations: save failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to save quotation")
		}

		// Optional initial line items, submitted as a JSON array alongside
		// the header fields.
		if raw := strings.TrimSpace(e.Request.FormValue("items_json")); raw != "" {
			if err := createInitialItems(app, record, raw); err != nil {
				log.Printf("quotations: initial items: %v", err)
				return respondError(e, http.StatusBadRequest, "Invalid line item data")
			}
		}

		if err := recomputeQuotationTotals(app, record); err != nil {
			log.Printf("quotations: recompute totals: %v", err)
		}

		return respondOK(e, quotationJSON(record))
	}
}

type initialItem struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	PartNumber   string  `json:"part_number"`
	Manufacturer string  `json:"manufacturer"`
	Qty          string  `json:"qty"`
	Price        string  `json:"price"`
	NormalPrice  float64 `json:"normal_price"`
}

func createInitialItems(app *pocketbase.PocketBase, quotation *core.Record, raw string) error {
	var items []initialItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}

	col, err := app.FindCollectionByNameOrId("quotation_items")
	if err != nil {
		return fmt.Errorf("quotation_items collection not found: %w", err)
	}

	for i, it := range items {
		record := core.NewRecord(col)
		record.Set("quotation", quotation.Id)
		record.Set("sort_order", i+1)
		record.Set("product_id", it.ProductID)
		record.Set("name", it.Name)
		record.Set("description", it.Description)
		record.Set("part_number", it.PartNumber)
		record.Set("manufacturer", it.Manufacturer)
		record.Set("qty", it.Qty)
		record.Set("price", it.Price)
		record.Set("normal_price", it.NormalPrice)
		setItemTotal(record)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("save item %d: %w", i+1, err)
		}
	}
	return nil
}

// HandleQuotationNextCode previews the code the next created quotation will
// receive. Nothing is reserved; concurrent creates still resolve on save.
func HandleQuotationNextCode(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		code, err := services.GenerateQuoteCode(app, time.Now())
		if err != nil {
			log.Printf("quotations: next code: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to compute next code")
		}
		return respondOK(e, map[string]any{"code": code})
	}
}

// HandleQuotationUpdate updates header fields of a quotation and recomputes
// the stored totals when the discount or tax configuration changed.
func HandleQuotationUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		record, err := app.FindRecordById("quotations", id)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Quotation not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}

		textFields := []string{"status", "reference", "attention", "eta", "currency", "notes", "terms"}
		for _, field := range textFields {
			if e.Request.Form.Has(field) {
				record.Set(field, strings.TrimSpace(e.Request.FormValue(field)))
			}
		}

		if e.Request.Form.Has("valid_until") {
			validUntil := strings.TrimSpace(e.Request.FormValue("valid_until"))
			if validUntil != "" && !validUntilAfter(validUntil, record.GetDateTime("created").Time()) {
				return respondError(e, http.StatusBadRequest, "Valid-until date must be after the creation date")
			}
			record.Set("valid_until", validUntil)
		}

		totalsDirty := false
		if e.Request.Form.Has("discount_type") {
			dt := strings.TrimSpace(e.Request.FormValue("discount_type"))
			if dt != services.DiscountAmount && dt != services.DiscountPercentage {
				return respondError(e, http.StatusBadRequest, "Invalid discount type")
			}
			record.Set("discount_type", dt)
			totalsDirty = true
		}
		if e.Request.Form.Has("discount_value") {
			record.Set("discount_value", formFloat(e, "discount_value"))
			totalsDirty = true
		}
		if e.Request.Form.Has("tax_rate") {
			record.Set("tax_rate", formFloat(e, "tax_rate"))
			totalsDirty = true
		}

		if e.Request.Form.Has("customer") {
			customerID := strings.TrimSpace(e.Request.FormValue("customer"))
			if customerID != "" {
				customer, err := app.FindRecordById("customers", customerID)
				if err != nil {
					return respondError(e, http.StatusBadRequest, "Customer not found")
				}
				record.Set("customer", customerID)
				record.Set("customer_name", customer.GetString("name"))
				record.Set("customer_email", customer.GetString("email"))
				record.Set("customer_phone", customer.GetString("phone"))
				record.Set("customer_address", customer.GetString("address"))
			}
		}

		if totalsDirty {
			if err := recomputeQuotationTotals(app, record); err != nil {
				log.Printf("quotations: recompute totals: %v", err)
				return respondError(e, http.StatusInternalServerError, "Failed to update quotation")
			}
		} else if err := app.Save(record); err != nil {
			log.Printf("quotations: update failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to update quotation")
		}

		return respondOK(e, quotationJSON(record))
	}
}

// HandleQuotationDelete moves a quotation and its items to the trash.
func HandleQuotationDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		entry, err := services.MoveQuotationToTrash(app, id)
		if err != nil {
			log.Printf("quotations: trash failed: %v", err)
			return respondError(e, http.StatusNotFound, "Quotation not found")
		}

		return respondOK(e, map[string]any{"trash_id": entry.Id})
	}
}

// validUntilAfter reports whether raw parses as a YYYY-MM-DD date strictly
// after the day the quotation was created. Unparseable input is rejected.
func validUntilAfter(raw string, created time.Time) bool {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return false
	}
	day := time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, time.UTC)
	return d.After(day)
}

func defaultString(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	return raw
}

func formFloat(e *core.RequestEvent, field string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(e.Request.FormValue(field)), 64)
	if err != nil {
		return 0
	}
	return v
}
