// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strconv"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestSettings creates the singleton settings record and returns it.
func CreateTestSettings(t *testing.T, app *pocketbase.PocketBase) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("settings")
	if err != nil {
		t.Fatalf("failed to find settings collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("company_name", "Test Company")
	record.Set("company_address", "1 Test Street")
	record.Set("company_email", "test@example.com")
	record.Set("company_phone", "+243 800 000 000")
	record.Set("bank_details", "Test Bank 000-111")
	record.Set("quote_prefix", "ALM")
	record.Set("default_tax_rate", 16)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test settings: %v", err)
	}

	return record
}

// CreateTestCustomer creates a customer record with the given name and returns it.
func CreateTestCustomer(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("customers")
	if err != nil {
		t.Fatalf("failed to find customers collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("email", "buyer@example.com")
	record.Set("phone", "+243 811 222 333")
	record.Set("address", "9 Customer Road")
	record.Set("contact_person", "Test Contact")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test customer: %v", err)
	}

	return record
}

// CreateTestProduct creates a product record and returns it.
func CreateTestProduct(t *testing.T, app *pocketbase.PocketBase, name string, price float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		t.Fatalf("failed to find products collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("description", "Test product description")
	record.Set("part_number", "PN-001")
	record.Set("manufacturer", "TestCo")
	record.Set("price", price)
	record.Set("normal_price", price*1.1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test product: %v", err)
	}

	return record
}

// CreateTestQuotation creates a quotation record linked to a customer and
// returns it. The customer snapshot fields are filled from the customer.
func CreateTestQuotation(t *testing.T, app *pocketbase.PocketBase, customerID, code string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotations")
	if err != nil {
		t.Fatalf("failed to find quotations collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("code", code)
	record.Set("status", "draft")
	record.Set("currency", "USD")
	record.Set("discount_type", "percentage")
	record.Set("discount_value", 0)
	record.Set("tax_rate", 16)

	if customerID != "" {
		customer, err := app.FindRecordById("customers", customerID)
		if err != nil {
			t.Fatalf("failed to load customer %s: %v", customerID, err)
		}
		record.Set("customer", customerID)
		record.Set("customer_name", customer.GetString("name"))
		record.Set("customer_email", customer.GetString("email"))
		record.Set("customer_phone", customer.GetString("phone"))
		record.Set("customer_address", customer.GetString("address"))
	}

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quotation: %v", err)
	}

	return record
}

// CreateTestQuotationItem creates a line item record on a quotation.
func CreateTestQuotationItem(t *testing.T, app *pocketbase.PocketBase, quotationID string, sortOrder int, name, qty, price string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotation_items")
	if err != nil {
		t.Fatalf("failed to find quotation_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("quotation", quotationID)
	record.Set("sort_order", sortOrder)
	record.Set("name", name)
	record.Set("description", "Test item description")
	record.Set("part_number", "PN-001")
	record.Set("manufacturer", "TestCo")
	record.Set("qty", qty)
	record.Set("price", price)

	q, _ := parseTestNumber(qty)
	p, _ := parseTestNumber(price)
	record.Set("total", q*p)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quotation item: %v", err)
	}

	return record
}

// AssertJSONContains checks that body contains all specified fragments.
func AssertJSONContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected response to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func parseTestNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
