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

func customerJSON(r *core.Record) map[string]any {
	return map[string]any{
		"id":             r.Id,
		"name":           r.GetString("name"),
		"email":          r.GetString("email"),
		"phone":          r.GetString("phone"),
		"address":        r.GetString("address"),
		"city":           r.GetString("city"),
		"country":        r.GetString("country"),
		"contact_person": r.GetString("contact_person"),
	}
}

// HandleCustomerList returns all customers, optionally filtered by a search
// term matched against name and contact person.
func HandleCustomerList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		search := strings.TrimSpace(e.Request.URL.Query().Get("q"))

		filter := "id != ''"
		params := map[string]any{}
		if search != "" {
			filter = "name ~ {:q} || contact_person ~ {:q}"
			params["q"] = search
		}

		limit, offset := 0, 0
		if raw := e.Request.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		if raw := e.Request.URL.Query().Get("offset"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				offset = n
			}
		}

		records, err := app.FindRecordsByFilter("customers", filter, "name", limit, offset, params)
		if err != nil {
			log.Printf("customers: list failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to load customers")
		}

		out := make([]map[string]any, 0, len(records))
		for _, r := range records {
			out = append(out, customerJSON(r))
		}
		return respondOK(e, map[string]any{"customers": out})
	}
}

// HandleCustomerCreate saves a new customer from form values.
func HandleCustomerCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}

		name := strings.TrimSpace(e.Request.FormValue("name"))
		if name == "" {
			return respondError(e, http.StatusBadRequest, "Name is required")
		}

		col, err := app.FindCollectionByNameOrId("customers")
		if err != nil {
			log.Printf("customers: collection not found: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to save customer")
		}

		record := core.NewRecord(col)
		record.Set("name", name)
		record.Set("email", strings.TrimSpace(e.Request.FormValue("email")))
		record.Set("phone", strings.TrimSpace(e.Request.FormValue("phone")))
		record.Set("address", strings.TrimSpace(e.Request.FormValue("address")))
		record.Set("city", strings.TrimSpace(e.Request.FormValue("city")))
		record.Set("country", strings.TrimSpace(e.Request.FormValue("country")))
		record.Set("contact_person", strings.TrimSpace(e.Request.FormValue("contact_person")))

		if err := app.Save(record); err != nil {
			log.Printf("customers: save failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to save customer")
		}

		return respondOK(e, customerJSON(record))
	}
}

// HandleCustomerUpdate updates an existing customer. Only submitted fields
// are changed.
func HandleCustomerUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		record, err := app.FindRecordById("customers", id)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Customer not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}

		for _, field := range []string{"name", "email", "phone", "address", "city", "country", "contact_person"} {
			if !e.Request.Form.Has(field) {
				continue
			}
			val := strings.TrimSpace(e.Request.FormValue(field))
			if field == "name" && val == "" {
				return respondError(e, http.StatusBadRequest, "Name cannot be empty")
			}
			record.Set(field, val)
		}

		if err := app.Save(record); err != nil {
			log.Printf("customers: update failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to update customer")
		}

		return respondOK(e, customerJSON(record))
	}
}

// HandleCustomerView returns one customer.
func HandleCustomerView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("customers", e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, http.StatusNotFound, "Customer not found")
		}
		return respondOK(e, customerJSON(record))
	}
}

// HandleCustomerDelete moves a customer to the trash. Quotations keep their
// snapshot fields, so past documents still render the recipient.
func HandleCustomerDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		entry, err := services.MoveRecordToTrash(app, "customer", id)
		if err != nil {
			log.Printf("customers: trash failed: %v", err)
			return respondError(e, http.StatusNotFound, "Customer not found")
		}

		return respondOK(e, map[string]any{"trash_id": entry.Id})
	}
}
