package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// HandleQuotationSend composes a WhatsApp deep link for a quotation. The
// actual sending happens client-side; this only builds the wa.me URL from
// the snapshot phone (or a phone override in the form).
func HandleQuotationSend(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		quotation, err := app.FindRecordById("quotations", id)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Quotation not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}

		phone := strings.TrimSpace(e.Request.FormValue("phone"))
		if phone == "" {
			phone = quotation.GetString("customer_phone")
		}

		link, err := services.ComposeWhatsAppLink(
			phone,
			quotation.GetString("code"),
			quotation.GetString("customer_name"),
			quotation.GetFloat("total_amount"),
			quotation.GetString("currency"),
		)
		if err != nil {
			return respondError(e, http.StatusBadRequest, "Customer has no usable phone number")
		}

		return respondOK(e, map[string]any{"link": link})
	}
}
