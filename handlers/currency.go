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

func rateTableJSON(rt services.RateTable) map[string]any {
	return map[string]any{
		"base":       rt.Base,
		"rates":      rt.Rates,
		"codes":      rt.Codes(),
		"updated_at": rt.UpdatedAt,
	}
}

// HandleCurrencyRates returns the current rate table.
func HandleCurrencyRates(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return respondOK(e, rateTableJSON(services.LoadRateTable(app)))
	}
}

// HandleCurrencyRateUpdate sets the rate of one currency relative to the
// current base.
func HandleCurrencyRateUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}

		code := strings.ToUpper(strings.TrimSpace(e.Request.FormValue("code")))
		if code == "" {
			return respondError(e, http.StatusBadRequest, "Currency code is required")
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(e.Request.FormValue("rate")), 64)
		if err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid rate")
		}

		rt := services.LoadRateTable(app)
		if err := rt.SetRate(code, rate); err != nil {
			return respondError(e, http.StatusBadRequest, err.Error())
		}
		if err := services.SaveRateTable(app, rt); err != nil {
			log.Printf("currency: save rates: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to save rates")
		}

		return respondOK(e, rateTableJSON(rt))
	}
}

// HandleCurrencyRebase switches the base currency, rescaling every stored
// rate so relative values are preserved.
func HandleCurrencyRebase(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data")
		}

		base := strings.ToUpper(strings.TrimSpace(e.Request.FormValue("base")))
		if base == "" {
			return respondError(e, http.StatusBadRequest, "Base currency is required")
		}

		rt := services.LoadRateTable(app)
		if err := rt.Rebase(base); err != nil {
			return respondError(e, http.StatusBadRequest, err.Error())
		}
		if err := services.SaveRateTable(app, rt); err != nil {
			log.Printf("currency: save rates: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to save rates")
		}

		return respondOK(e, rateTableJSON(rt))
	}
}
