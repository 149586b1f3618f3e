package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/pocketbase/pocketbase"
)

// RateTable is the process-wide currency context: a base currency and the
// rate of every known currency relative to that base (base rate is always
// exactly 1). It is loaded from the settings record and passed explicitly
// into formatting and rendering, never consulted as a hidden global.
type RateTable struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// DefaultRateTable returns a USD-based table with only the base itself.
func DefaultRateTable() RateTable {
	return RateTable{
		Base:      "USD",
		Rates:     map[string]float64{"USD": 1},
		UpdatedAt: time.Now(),
	}
}

// SetRate adds or updates the rate-to-base of one currency. Non-positive
// rates are rejected.
func (rt *RateTable) SetRate(code string, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("currency: rate for %s must be positive, got %v", code, rate)
	}
	if rt.Rates == nil {
		rt.Rates = make(map[string]float64)
	}
	rt.Rates[code] = rate
	if rt.Rates[rt.Base] == 0 {
		rt.Rates[rt.Base] = 1
	}
	rt.UpdatedAt = time.Now()
	return nil
}

// Rebase switches the base currency. Every rate is divided by the old rate
// of the new base so relative values are preserved, and the new base's own
// rate becomes exactly 1.
func (rt *RateTable) Rebase(newBase string) error {
	if newBase == rt.Base {
		return nil
	}
	pivot, ok := rt.Rates[newBase]
	if !ok || pivot <= 0 {
		return fmt.Errorf("currency: unknown base %q", newBase)
	}
	for code, rate := range rt.Rates {
		rt.Rates[code] = rate / pivot
	}
	rt.Rates[newBase] = 1
	rt.Base = newBase
	rt.UpdatedAt = time.Now()
	return nil
}

// Convert translates an amount between two known currencies.
func (rt RateTable) Convert(amount float64, from, to string) (float64, error) {
	fromRate, ok := rt.Rates[from]
	if !ok || fromRate <= 0 {
		return 0, fmt.Errorf("currency: unknown currency %q", from)
	}
	toRate, ok := rt.Rates[to]
	if !ok || toRate <= 0 {
		return 0, fmt.Errorf("currency: unknown currency %q", to)
	}
	return Round2(amount / fromRate * toRate), nil
}

// Codes lists the known currency codes in stable order.
func (rt RateTable) Codes() []string {
	codes := make([]string, 0, len(rt.Rates))
	for code := range rt.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// LoadRateTable reads the rate table from the settings record, falling back
// to the default table when settings are missing or unreadable.
func LoadRateTable(app *pocketbase.PocketBase) RateTable {
	settings, err := app.FindFirstRecordByFilter("settings", "id != ''")
	if err != nil {
		return DefaultRateTable()
	}

	raw := settings.GetString("currency_rates")
	if raw == "" {
		return DefaultRateTable()
	}

	var rt RateTable
	if err := json.Unmarshal([]byte(raw), &rt); err != nil || rt.Base == "" || len(rt.Rates) == 0 {
		return DefaultRateTable()
	}
	return rt
}

// SaveRateTable persists the rate table back onto the settings record.
func SaveRateTable(app *pocketbase.PocketBase, rt RateTable) error {
	settings, err := app.FindFirstRecordByFilter("settings", "id != ''")
	if err != nil {
		return fmt.Errorf("currency: settings record not found: %w", err)
	}

	raw, err := json.Marshal(rt)
	if err != nil {
		return fmt.Errorf("currency: marshal rate table: %w", err)
	}
	settings.Set("currency_rates", string(raw))
	if err := app.Save(settings); err != nil {
		return fmt.Errorf("currency: save settings: %w", err)
	}
	return nil
}
