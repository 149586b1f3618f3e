package collections_test

import (
	"testing"

	"quotedesk/collections"
	"quotedesk/testhelpers"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"customers",
	"products",
	"quotations",
	"quotation_items",
	"trash_records",
	"settings",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	// Collect IDs from first run
	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	// Run Setup() again
	collections.Setup(app)

	// IDs should not change
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_QuotationsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("quotations")

	fields := []string{
		"code", "customer", "customer_name", "customer_email", "customer_phone",
		"customer_address", "status", "reference", "attention", "valid_until",
		"eta", "currency", "discount_type", "discount_value", "tax_rate",
		"subtotal", "discount_amount", "tax_amount", "total_amount",
		"expected_income", "notes", "terms",
		"created", "updated",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("quotations: missing field %q", f)
		}
	}
}

func TestSetup_QuotationItemsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("quotation_items")

	fields := []string{
		"quotation", "sort_order", "product_id", "name", "description",
		"part_number", "manufacturer", "qty", "price", "normal_price", "total",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("quotation_items: missing field %q", f)
		}
	}
}

func TestSetup_TrashRecordsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("trash_records")

	for _, f := range []string{"entity_type", "entity_id", "label", "snapshot", "created"} {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("trash_records: missing field %q", f)
		}
	}
}

func TestSetup_SettingsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("settings")

	fields := []string{
		"company_name", "company_address", "company_email", "company_phone",
		"bank_details", "quote_prefix", "default_tax_rate", "currency_rates",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("settings: missing field %q", f)
		}
	}
}

func TestSetup_ItemsCascadeOnQuotationDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	customer := testhelpers.CreateTestCustomer(t, app, "Cascade Co")
	q := testhelpers.CreateTestQuotation(t, app, customer.Id, "ALM-Q1-001-2026")
	item := testhelpers.CreateTestQuotationItem(t, app, q.Id, 1, "Widget", "2", "10")

	if err := app.Delete(q); err != nil {
		t.Fatalf("delete quotation: %v", err)
	}
	if _, err := app.FindRecordById("quotation_items", item.Id); err == nil {
		t.Error("quotation item survived cascade delete")
	}
}
