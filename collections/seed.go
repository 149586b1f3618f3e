package collections

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// ── Definition structs ───────────────────────────────────────────────────

type productDef struct {
	name         string
	description  string
	partNumber   string
	manufacturer string
	price        float64
	normalPrice  float64
}

type customerDef struct {
	name          string
	email         string
	phone         string
	address       string
	contactPerson string
}

type itemDef struct {
	sortOrder    int
	name         string
	description  string
	partNumber   string
	manufacturer string
	qty          string
	price        string
}

// Seed populates the settings record and a small set of demo customers,
// products and one quotation. It is safe to call on every startup because
// it returns early when a settings record already exists.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if settings already exist ──────────────────
	settingsCol, err := app.FindCollectionByNameOrId("settings")
	if err != nil {
		return fmt.Errorf("seed: could not find settings collection: %w", err)
	}
	existing, err := app.FindAllRecords(settingsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query settings: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: settings collection is empty – inserting seed data …")

	customersCol, err := app.FindCollectionByNameOrId("customers")
	if err != nil {
		return fmt.Errorf("seed: could not find customers collection: %w", err)
	}
	productsCol, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return fmt.Errorf("seed: could not find products collection: %w", err)
	}
	quotationsCol, err := app.FindCollectionByNameOrId("quotations")
	if err != nil {
		return fmt.Errorf("seed: could not find quotations collection: %w", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("quotation_items")
	if err != nil {
		return fmt.Errorf("seed: could not find quotation_items collection: %w", err)
	}

	// ── settings ─────────────────────────────────────────────────────
	rates, err := json.Marshal(services.RateTable{
		Base:      "USD",
		Rates:     map[string]float64{"USD": 1, "EUR": 0.92, "CDF": 2850},
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("seed: marshal rates: %w", err)
	}

	settings := core.NewRecord(settingsCol)
	settings.Set("company_name", "Alamba Services SARL")
	settings.Set("company_address", "12 Avenue du Commerce, Gombe, Kinshasa")
	settings.Set("company_email", "sales@alamba.cd")
	settings.Set("company_phone", "+243 812 345 678")
	settings.Set("bank_details", "Rawbank | USD 0011-22334455-01 | SWIFT RAWBCDKI")
	settings.Set("quote_prefix", "ALM")
	settings.Set("default_tax_rate", 16)
	settings.Set("currency_rates", string(rates))
	if err := app.Save(settings); err != nil {
		return fmt.Errorf("seed: save settings: %w", err)
	}

	// ── products ─────────────────────────────────────────────────────
	products := []productDef{
		{"Catalyst 9200L Switch", "24-port managed switch with PoE", "C9200L-24P-4G-E", "Cisco", 1499.99, 1699.00},
		{"EdgeRouter 12", "Gigabit router with 10 RJ45 ports", "ER-12", "Ubiquiti", 349.00, 399.00},
		{"Cat6 Patch Cable 2m", "Snagless UTP patch cable", "CAT6-2M", "Generic", 2.50, 3.00},
		{"Rack Cabinet 12U", "Wall-mount network cabinet", "RC-12U", "Toten", 189.00, 220.00},
		{"UPS 1500VA", "Line-interactive UPS with AVR", "BX1500MI", "APC", 210.00, 245.00},
	}
	productIDByName := make(map[string]string, len(products))
	for _, d := range products {
		r := core.NewRecord(productsCol)
		r.Set("name", d.name)
		r.Set("description", d.description)
		r.Set("part_number", d.partNumber)
		r.Set("manufacturer", d.manufacturer)
		r.Set("price", d.price)
		r.Set("normal_price", d.normalPrice)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save product %q: %w", d.name, err)
		}
		productIDByName[d.name] = r.Id
	}

	// ── customers ────────────────────────────────────────────────────
	customers := []customerDef{
		{"Congo Mining SARL", "procurement@congomining.cd", "+243 990 111 222", "45 Route de Likasi, Lubumbashi", "Jean Kabongo"},
		{"Kin Telecom", "achats@kintelecom.cd", "+243 815 666 777", "8 Boulevard du 30 Juin, Kinshasa", "Marie Tshala"},
	}
	customerIDs := make([]string, 0, len(customers))
	for _, d := range customers {
		r := core.NewRecord(customersCol)
		r.Set("name", d.name)
		r.Set("email", d.email)
		r.Set("phone", d.phone)
		r.Set("address", d.address)
		r.Set("contact_person", d.contactPerson)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save customer %q: %w", d.name, err)
		}
		customerIDs = append(customerIDs, r.Id)
	}

	// ── one demo quotation with items ────────────────────────────────
	items := []itemDef{
		{1, "Catalyst 9200L Switch", "24-port managed switch with PoE", "C9200L-24P-4G-E", "Cisco", "2", "1499.99"},
		{2, "Rack Cabinet 12U", "Wall-mount network cabinet", "RC-12U", "Toten", "1", "189.00"},
		{3, "Cat6 Patch Cable 2m", "Snagless UTP patch cable", "CAT6-2M", "Generic", "24", "2.50"},
	}

	var lineItems []services.LineItem
	for _, d := range items {
		lineItems = append(lineItems, services.LineItem{Qty: d.qty, Price: d.price})
	}
	totals := services.CalcQuotationTotals(lineItems, services.DiscountPercentage, 5, 16)

	now := time.Now()
	q := core.NewRecord(quotationsCol)
	q.Set("code", services.FormatQuoteCode("ALM", int(now.Month()), 1, now.Year()))
	q.Set("customer", customerIDs[0])
	q.Set("customer_name", customers[0].name)
	q.Set("customer_email", customers[0].email)
	q.Set("customer_phone", customers[0].phone)
	q.Set("customer_address", customers[0].address)
	q.Set("status", "draft")
	q.Set("currency", "USD")
	q.Set("discount_type", services.DiscountPercentage)
	q.Set("discount_value", 5)
	q.Set("tax_rate", 16)
	q.Set("subtotal", totals.Subtotal)
	q.Set("discount_amount", totals.DiscountAmount)
	q.Set("tax_amount", totals.Tax)
	q.Set("total_amount", totals.TotalAmount)
	q.Set("expected_income", totals.ExpectedIncome)
	q.Set("valid_until", now.AddDate(0, 1, 0).Format("2006-01-02"))
	q.Set("notes", "Prices valid for 30 days from issue date.")
	q.Set("terms", "Payment due within 30 days of invoice.")
	if err := app.Save(q); err != nil {
		return fmt.Errorf("seed: save quotation: %w", err)
	}

	for i, d := range items {
		r := core.NewRecord(itemsCol)
		r.Set("quotation", q.Id)
		r.Set("sort_order", d.sortOrder)
		if pid, ok := productIDByName[d.name]; ok {
			r.Set("product_id", pid)
		}
		r.Set("name", d.name)
		r.Set("description", d.description)
		r.Set("part_number", d.partNumber)
		r.Set("manufacturer", d.manufacturer)
		r.Set("qty", d.qty)
		r.Set("price", d.price)
		r.Set("total", services.CalcLineTotal(lineItems[i].QtyValue(), lineItems[i].PriceValue()))
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save quotation item %d: %w", d.sortOrder, err)
		}
	}

	log.Println("seed: done")
	return nil
}
