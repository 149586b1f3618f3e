package collections_test

import (
	"testing"

	"quotedesk/collections"
	"quotedesk/services"
	"quotedesk/testhelpers"
)

func TestSeed_CreatesData(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	// Verify settings record
	settingsCol, _ := app.FindCollectionByNameOrId("settings")
	settings, err := app.FindAllRecords(settingsCol)
	if err != nil {
		t.Fatalf("query settings error: %v", err)
	}
	if len(settings) != 1 {
		t.Fatalf("expected 1 settings record, got %d", len(settings))
	}
	if settings[0].GetString("quote_prefix") != "ALM" {
		t.Errorf("quote_prefix = %q, want ALM", settings[0].GetString("quote_prefix"))
	}
	if settings[0].GetString("currency_rates") == "" {
		t.Error("currency_rates not seeded")
	}

	// Verify products
	productsCol, _ := app.FindCollectionByNameOrId("products")
	products, _ := app.FindAllRecords(productsCol)
	if len(products) != 5 {
		t.Errorf("expected 5 products, got %d", len(products))
	}

	// Verify customers
	customersCol, _ := app.FindCollectionByNameOrId("customers")
	customers, _ := app.FindAllRecords(customersCol)
	if len(customers) != 2 {
		t.Errorf("expected 2 customers, got %d", len(customers))
	}

	// Verify quotation with snapshot and items
	quotationsCol, _ := app.FindCollectionByNameOrId("quotations")
	quotations, _ := app.FindAllRecords(quotationsCol)
	if len(quotations) != 1 {
		t.Fatalf("expected 1 quotation, got %d", len(quotations))
	}
	q := quotations[0]
	if _, ok := services.ParseQuoteCode(q.GetString("code")); !ok {
		t.Errorf("seeded quotation code %q does not parse", q.GetString("code"))
	}
	if q.GetString("customer_name") == "" {
		t.Error("quotation missing customer snapshot")
	}
	if q.GetFloat("total_amount") <= 0 {
		t.Errorf("quotation total_amount = %v, want > 0", q.GetFloat("total_amount"))
	}

	itemsCol, _ := app.FindCollectionByNameOrId("quotation_items")
	items, _ := app.FindAllRecords(itemsCol)
	if len(items) != 3 {
		t.Fatalf("expected 3 quotation items, got %d", len(items))
	}
	for _, it := range items {
		if it.GetString("quotation") != q.Id {
			t.Errorf("item %s not linked to seeded quotation", it.Id)
		}
	}

	// Rate table must round-trip through the settings record.
	rt := services.LoadRateTable(app)
	if rt.Base != "USD" {
		t.Errorf("seeded rate table base = %q, want USD", rt.Base)
	}
	if rt.Rates["CDF"] != 2850 {
		t.Errorf("seeded CDF rate = %v, want 2850", rt.Rates["CDF"])
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}
	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}

	productsCol, _ := app.FindCollectionByNameOrId("products")
	products, _ := app.FindAllRecords(productsCol)
	if len(products) != 5 {
		t.Errorf("second Seed() duplicated data: %d products", len(products))
	}

	settingsCol, _ := app.FindCollectionByNameOrId("settings")
	settings, _ := app.FindAllRecords(settingsCol)
	if len(settings) != 1 {
		t.Errorf("second Seed() duplicated settings: %d records", len(settings))
	}
}
