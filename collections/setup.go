package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the customers, products, quotations,
// quotation_items, trash_records and settings collections exist.
func Setup(app *pocketbase.PocketBase) {
	customers := ensureCollection(app, "customers", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "email", Required: false})
		c.Fields.Add(&core.TextField{Name: "phone", Required: false})
		c.Fields.Add(&core.TextField{Name: "address", Required: false})
		c.Fields.Add(&core.TextField{Name: "city", Required: false})
		c.Fields.Add(&core.TextField{Name: "country", Required: false})
		c.Fields.Add(&core.TextField{Name: "contact_person", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "products", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.TextField{Name: "part_number", Required: false})
		c.Fields.Add(&core.TextField{Name: "manufacturer", Required: false})
		c.Fields.Add(&core.NumberField{Name: "price", Required: false})
		c.Fields.Add(&core.NumberField{Name: "normal_price", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	quotations := ensureCollection(app, "quotations", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "code", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:          "customer",
			Required:      false,
			CollectionId:  customers.Id,
			CascadeDelete: false,
			MaxSelect:     1,
		})
		// Customer snapshot, denormalized so an export stays stable even
		// when the customer record later changes or is removed.
		c.Fields.Add(&core.TextField{Name: "customer_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "customer_email", Required: false})
		c.Fields.Add(&core.TextField{Name: "customer_phone", Required: false})
		c.Fields.Add(&core.TextField{Name: "customer_address", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "sent", "accepted", "rejected", "expired"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "reference", Required: false})
		c.Fields.Add(&core.TextField{Name: "attention", Required: false})
		c.Fields.Add(&core.TextField{Name: "valid_until", Required: false})
		c.Fields.Add(&core.TextField{Name: "eta", Required: false})
		c.Fields.Add(&core.TextField{Name: "currency", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "discount_type",
			Required:  false,
			Values:    []string{"amount", "percentage"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "discount_value", Required: false})
		c.Fields.Add(&core.NumberField{Name: "tax_rate", Required: false})
		c.Fields.Add(&core.NumberField{Name: "subtotal", Required: false})
		c.Fields.Add(&core.NumberField{Name: "discount_amount", Required: false})
		c.Fields.Add(&core.NumberField{Name: "tax_amount", Required: false})
		c.Fields.Add(&core.NumberField{Name: "total_amount", Required: false})
		c.Fields.Add(&core.NumberField{Name: "expected_income", Required: false})
		c.Fields.Add(&core.TextField{Name: "notes", Required: false})
		c.Fields.Add(&core.TextField{Name: "terms", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "quotation_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quotation",
			Required:      true,
			CollectionId:  quotations.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
		c.Fields.Add(&core.TextField{Name: "product_id", Required: false})
		c.Fields.Add(&core.TextField{Name: "name", Required: false})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.TextField{Name: "part_number", Required: false})
		c.Fields.Add(&core.TextField{Name: "manufacturer", Required: false})
		// Qty and price are stored as the raw strings the user typed, so a
		// half-entered value like "3." round-trips through save and reload.
		c.Fields.Add(&core.TextField{Name: "qty", Required: false})
		c.Fields.Add(&core.TextField{Name: "price", Required: false})
		c.Fields.Add(&core.NumberField{Name: "normal_price", Required: false})
		c.Fields.Add(&core.NumberField{Name: "total", Required: false})
	})

	ensureCollection(app, "trash_records", func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "entity_type",
			Required:  true,
			Values:    []string{"quotation", "customer", "product"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "entity_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "label", Required: false})
		c.Fields.Add(&core.TextField{Name: "snapshot", Required: true, Max: 1000000})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})

	ensureCollection(app, "settings", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "company_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "company_address", Required: false})
		c.Fields.Add(&core.TextField{Name: "company_email", Required: false})
		c.Fields.Add(&core.TextField{Name: "company_phone", Required: false})
		c.Fields.Add(&core.TextField{Name: "bank_details", Required: false})
		c.Fields.Add(&core.TextField{Name: "quote_prefix", Required: false})
		c.Fields.Add(&core.NumberField{Name: "default_tax_rate", Required: false})
		c.Fields.Add(&core.TextField{Name: "currency_rates", Required: false, Max: 100000})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
