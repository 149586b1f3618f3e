package services

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/pocketbase/pocketbase"
)

var quoteCodeRe = regexp.MustCompile(`^(.+)-Q(\d{1,2})-(\d+)-(\d{4})$`)

// QuoteCode is a parsed quotation code of the form PREFIX-Qmonth-seq-year,
// e.g. "ALM-Q9-014-2026".
type QuoteCode struct {
	Prefix   string
	Month    int
	Sequence int
	Year     int
}

// ParseQuoteCode parses a quotation code. The boolean is false when the
// string does not match the expected shape.
func ParseQuoteCode(code string) (QuoteCode, bool) {
	m := quoteCodeRe.FindStringSubmatch(code)
	if m == nil {
		return QuoteCode{}, false
	}
	month, _ := strconv.Atoi(m[2])
	seq, _ := strconv.Atoi(m[3])
	year, _ := strconv.Atoi(m[4])
	if month < 1 || month > 12 {
		return QuoteCode{}, false
	}
	return QuoteCode{Prefix: m[1], Month: month, Sequence: seq, Year: year}, true
}

// FormatQuoteCode constructs a quotation code from components. The sequence
// is 3-digit zero-padded; it keeps growing past 999 without truncation.
func FormatQuoteCode(prefix string, month, sequence, year int) string {
	return fmt.Sprintf("%s-Q%d-%03d-%d", prefix, month, sequence, year)
}

// NextQuoteCode derives the next code from the previously highest issued
// one. The sequence increments within the same month/year and resets to 1
// when the month or year rolls over, or when there is no usable previous
// code.
func NextQuoteCode(prefix, last string, now time.Time) string {
	month := int(now.Month())
	year := now.Year()

	prev, ok := ParseQuoteCode(last)
	if ok && prev.Month == month && prev.Year == year {
		return FormatQuoteCode(prefix, month, prev.Sequence+1, year)
	}
	return FormatQuoteCode(prefix, month, 1, year)
}

// GenerateQuoteCode creates the next quotation code for the app by looking
// up the highest sequence issued this month/year under the configured
// prefix. Codes are monotonically increasing per month per year.
func GenerateQuoteCode(app *pocketbase.PocketBase, now time.Time) (string, error) {
	prefix := QuotePrefix(app)

	month := int(now.Month())
	year := now.Year()
	head := fmt.Sprintf("%s-Q%d-", prefix, month)

	records, err := app.FindRecordsByFilter(
		"quotations",
		"code ~ {:head}",
		"-created",
		0,
		0,
		map[string]any{"head": head + "%"},
	)
	if err != nil {
		records = nil
	}

	highest := 0
	for _, rec := range records {
		c, ok := ParseQuoteCode(rec.GetString("code"))
		if !ok || c.Month != month || c.Year != year || c.Prefix != prefix {
			continue
		}
		if c.Sequence > highest {
			highest = c.Sequence
		}
	}

	return FormatQuoteCode(prefix, month, highest+1, year), nil
}

// QuotePrefix returns the configured quotation code prefix, falling back to
// "ALM" when settings are missing.
func QuotePrefix(app *pocketbase.PocketBase) string {
	settings, err := app.FindFirstRecordByFilter("settings", "id != ''")
	if err != nil {
		return "ALM"
	}
	prefix := settings.GetString("quote_prefix")
	if prefix == "" {
		return "ALM"
	}
	return prefix
}
