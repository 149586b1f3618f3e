package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
)

// MigrateCustomerSnapshots backfills the denormalized customer fields on
// quotations that still only hold a customer relation. Older records were
// saved before the snapshot fields existed; exports for them would show an
// empty recipient. Safe to call on every startup -- returns early if
// nothing to migrate.
func MigrateCustomerSnapshots(app *pocketbase.PocketBase) error {
	stale, err := app.FindRecordsByFilter(
		"quotations",
		"customer != '' && customer_name = ''",
		"",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query quotations: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	log.Printf("migrate: found %d quotation(s) without a customer snapshot -- backfilling...\n", len(stale))

	for _, q := range stale {
		customer, err := app.FindRecordById("customers", q.GetString("customer"))
		if err != nil {
			log.Printf("migrate: quotation %s references missing customer %s: %v\n", q.Id, q.GetString("customer"), err)
			continue
		}

		q.Set("customer_name", customer.GetString("name"))
		q.Set("customer_email", customer.GetString("email"))
		q.Set("customer_phone", customer.GetString("phone"))
		q.Set("customer_address", customer.GetString("address"))

		if err := app.Save(q); err != nil {
			log.Printf("migrate: failed to backfill quotation %s: %v\n", q.Id, err)
			continue
		}
	}

	log.Println("migrate: customer snapshot backfill complete.")
	return nil
}
