package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// trashRetentionDays is how long a trashed record stays restorable before
// PurgeExpiredTrash removes it permanently.
const trashRetentionDays = 30

// TrashEntry is the JSON shape returned when listing the trash.
type TrashEntry struct {
	ID         string `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Label      string `json:"label"`
	DeletedAt  string `json:"deleted_at"`
	ExpiresAt  string `json:"expires_at"`
}

// TrashStatsData summarizes the current trash contents.
type TrashStatsData struct {
	Total       int            `json:"total"`
	ByType      map[string]int `json:"by_type"`
	OldestEntry string         `json:"oldest_entry,omitempty"`
}

type quotationSnapshot struct {
	Quotation map[string]any   `json:"quotation"`
	Items     []map[string]any `json:"items"`
}

// MoveQuotationToTrash snapshots a quotation together with its line items
// into the trash ledger and deletes the live records. The whole move runs in
// one transaction so a failed delete leaves no orphan snapshot behind.
func MoveQuotationToTrash(app *pocketbase.PocketBase, quotationID string) (*core.Record, error) {
	quotation, err := app.FindRecordById("quotations", quotationID)
	if err != nil {
		return nil, fmt.Errorf("quotation not found: %w", err)
	}

	items, err := app.FindRecordsByFilter(
		"quotation_items",
		"quotation = {:quotation}",
		"sort_order",
		0, 0,
		map[string]any{"quotation": quotationID},
	)
	if err != nil {
		return nil, fmt.Errorf("load quotation items: %w", err)
	}

	snap := quotationSnapshot{
		Quotation: recordFields(quotation),
		Items:     make([]map[string]any, 0, len(items)),
	}
	for _, item := range items {
		snap.Items = append(snap.Items, recordFields(item))
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	trashCol, err := app.FindCollectionByNameOrId("trash_records")
	if err != nil {
		return nil, fmt.Errorf("trash_records collection not found: %w", err)
	}

	entry := core.NewRecord(trashCol)
	entry.Set("entity_type", "quotation")
	entry.Set("entity_id", quotationID)
	entry.Set("label", quotation.GetString("code"))
	entry.Set("snapshot", string(payload))

	err = app.RunInTransaction(func(txApp core.App) error {
		if err := txApp.Save(entry); err != nil {
			return fmt.Errorf("save trash entry: %w", err)
		}
		for _, item := range items {
			if err := txApp.Delete(item); err != nil {
				return fmt.Errorf("delete item %s: %w", item.Id, err)
			}
		}
		if err := txApp.Delete(quotation); err != nil {
			return fmt.Errorf("delete quotation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// trashCollections maps an entity type to the collection its snapshot
// restores into.
var trashCollections = map[string]string{
	"customer": "customers",
	"product":  "products",
}

// MoveRecordToTrash snapshots one customer or product into the trash ledger
// and deletes the live record. Quotations go through MoveQuotationToTrash so
// their items are captured too.
func MoveRecordToTrash(app *pocketbase.PocketBase, entityType, recordID string) (*core.Record, error) {
	colName, ok := trashCollections[entityType]
	if !ok {
		return nil, fmt.Errorf("unsupported entity type %q", entityType)
	}

	record, err := app.FindRecordById(colName, recordID)
	if err != nil {
		return nil, fmt.Errorf("%s not found: %w", entityType, err)
	}

	payload, err := json.Marshal(recordFields(record))
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	trashCol, err := app.FindCollectionByNameOrId("trash_records")
	if err != nil {
		return nil, fmt.Errorf("trash_records collection not found: %w", err)
	}

	entry := core.NewRecord(trashCol)
	entry.Set("entity_type", entityType)
	entry.Set("entity_id", recordID)
	entry.Set("label", record.GetString("name"))
	entry.Set("snapshot", string(payload))

	err = app.RunInTransaction(func(txApp core.App) error {
		if err := txApp.Save(entry); err != nil {
			return fmt.Errorf("save trash entry: %w", err)
		}
		if err := txApp.Delete(record); err != nil {
			return fmt.Errorf("delete %s: %w", entityType, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// RestoreFromTrash re-creates the entity captured in a trash entry and removes
// the entry. The restored record keeps its field values but gets a fresh id,
// so relations inside a quotation snapshot are remapped onto the new record.
func RestoreFromTrash(app *pocketbase.PocketBase, trashID string) (*core.Record, error) {
	entry, err := app.FindRecordById("trash_records", trashID)
	if err != nil {
		return nil, fmt.Errorf("trash entry not found: %w", err)
	}

	entityType := entry.GetString("entity_type")
	if entityType != "quotation" {
		return restoreFlatRecord(app, entry, entityType)
	}

	var snap quotationSnapshot
	if err := json.Unmarshal([]byte(entry.GetString("snapshot")), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	quotationCol, err := app.FindCollectionByNameOrId("quotations")
	if err != nil {
		return nil, fmt.Errorf("quotations collection not found: %w", err)
	}
	itemCol, err := app.FindCollectionByNameOrId("quotation_items")
	if err != nil {
		return nil, fmt.Errorf("quotation_items collection not found: %w", err)
	}

	restored := core.NewRecord(quotationCol)
	for key, val := range snap.Quotation {
		restored.Set(key, val)
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		if err := txApp.Save(restored); err != nil {
			return fmt.Errorf("restore quotation: %w", err)
		}
		for _, itemData := range snap.Items {
			item := core.NewRecord(itemCol)
			for key, val := range itemData {
				item.Set(key, val)
			}
			item.Set("quotation", restored.Id)
			if err := txApp.Save(item); err != nil {
				return fmt.Errorf("restore item: %w", err)
			}
		}
		if err := txApp.Delete(entry); err != nil {
			return fmt.Errorf("remove trash entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return restored, nil
}

func restoreFlatRecord(app *pocketbase.PocketBase, entry *core.Record, entityType string) (*core.Record, error) {
	colName, ok := trashCollections[entityType]
	if !ok {
		return nil, fmt.Errorf("unsupported entity type %q", entityType)
	}

	col, err := app.FindCollectionByNameOrId(colName)
	if err != nil {
		return nil, fmt.Errorf("%s collection not found: %w", colName, err)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(entry.GetString("snapshot")), &fields); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	restored := core.NewRecord(col)
	for key, val := range fields {
		restored.Set(key, val)
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		if err := txApp.Save(restored); err != nil {
			return fmt.Errorf("restore %s: %w", entityType, err)
		}
		if err := txApp.Delete(entry); err != nil {
			return fmt.Errorf("remove trash entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return restored, nil
}

// PurgeTrashEntry permanently removes one trash entry. There is no undo.
func PurgeTrashEntry(app *pocketbase.PocketBase, trashID string) error {
	entry, err := app.FindRecordById("trash_records", trashID)
	if err != nil {
		return fmt.Errorf("trash entry not found: %w", err)
	}
	if err := app.Delete(entry); err != nil {
		return fmt.Errorf("purge trash entry: %w", err)
	}
	return nil
}

// PurgeExpiredTrash removes every trash entry older than the retention window
// and returns how many entries were purged.
func PurgeExpiredTrash(app *pocketbase.PocketBase, now time.Time) (int, error) {
	cutoff := now.AddDate(0, 0, -trashRetentionDays).UTC().Format("2006-01-02 15:04:05.000Z")

	expired, err := app.FindRecordsByFilter(
		"trash_records",
		"created < {:cutoff}",
		"created",
		0, 0,
		map[string]any{"cutoff": cutoff},
	)
	if err != nil {
		return 0, fmt.Errorf("find expired trash: %w", err)
	}

	purged := 0
	for _, entry := range expired {
		if err := app.Delete(entry); err != nil {
			log.Printf("trash: failed to purge entry %s: %v", entry.Id, err)
			continue
		}
		purged++
	}
	return purged, nil
}

// ListTrash returns all trash entries, newest first.
func ListTrash(app *pocketbase.PocketBase) ([]TrashEntry, error) {
	records, err := app.FindRecordsByFilter("trash_records", "id != ''", "-created", 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}

	entries := make([]TrashEntry, 0, len(records))
	for _, r := range records {
		created := r.GetDateTime("created").Time()
		entries = append(entries, TrashEntry{
			ID:         r.Id,
			EntityType: r.GetString("entity_type"),
			EntityID:   r.GetString("entity_id"),
			Label:      r.GetString("label"),
			DeletedAt:  created.UTC().Format(time.RFC3339),
			ExpiresAt:  created.AddDate(0, 0, trashRetentionDays).UTC().Format(time.RFC3339),
		})
	}
	return entries, nil
}

// TrashStats summarizes the trash for the dashboard card.
func TrashStats(app *pocketbase.PocketBase) (*TrashStatsData, error) {
	records, err := app.FindRecordsByFilter("trash_records", "id != ''", "created", 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("trash stats: %w", err)
	}

	stats := &TrashStatsData{
		Total:  len(records),
		ByType: make(map[string]int),
	}
	for i, r := range records {
		stats.ByType[r.GetString("entity_type")]++
		if i == 0 {
			stats.OldestEntry = r.GetDateTime("created").Time().UTC().Format(time.RFC3339)
		}
	}
	return stats, nil
}

// recordFields copies a record's stored field values, skipping system columns
// so a restore creates fresh ids and timestamps.
func recordFields(r *core.Record) map[string]any {
	fields := make(map[string]any)
	for key, val := range r.FieldsData() {
		if key == "id" || key == "created" || key == "updated" {
			continue
		}
		fields[key] = val
	}
	return fields
}
