package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// HandleTrashList returns the trash ledger, newest deletions first.
func HandleTrashList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entries, err := services.ListTrash(app)
		if err != nil {
			log.Printf("trash: list failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to load trash")
		}
		return respondOK(e, map[string]any{"entries": entries})
	}
}

// HandleTrashStats returns the entry count per entity type and the oldest
// entry still held.
func HandleTrashStats(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		stats, err := services.TrashStats(app)
		if err != nil {
			log.Printf("trash: stats failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to load trash stats")
		}
		return respondOK(e, stats)
	}
}

// HandleTrashRestore re-creates the trashed entity from its snapshot and
// removes the ledger entry.
func HandleTrashRestore(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		restored, err := services.RestoreFromTrash(app, id)
		if err != nil {
			log.Printf("trash: restore %s: %v", id, err)
			return respondError(e, http.StatusBadRequest, "Failed to restore entry")
		}
		return respondOK(e, map[string]any{"restored_id": restored.Id, "code": restored.GetString("code")})
	}
}

// HandleTrashPurge permanently deletes one trash entry.
func HandleTrashPurge(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if err := services.PurgeTrashEntry(app, id); err != nil {
			log.Printf("trash: purge %s: %v", id, err)
			return respondError(e, http.StatusNotFound, "Trash entry not found")
		}
		return respondOK(e, map[string]any{"purged": id})
	}
}

// HandleTrashPurgeExpired deletes every entry past its retention window.
func HandleTrashPurgeExpired(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		purged, err := services.PurgeExpiredTrash(app, time.Now())
		if err != nil {
			log.Printf("trash: purge expired: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to purge expired entries")
		}
		return respondOK(e, map[string]any{"purged": purged})
	}
}
