package services

// WidthClass assigns a column a proportional share of the content width.
// The shares are relative weights; GridSizes scales whichever subset of
// columns is selected onto maroto's 12-unit grid so the table always fills
// the full content width.
type WidthClass int

const (
	WidthNarrow  WidthClass = 9  // numeric columns: seq, qty
	WidthMedium  WidthClass = 12 // price, total, part number
	WidthWideMid WidthClass = 19 // name, manufacturer
	WidthWide    WidthClass = 32 // description
)

// ItemColumn is one selectable column of the quotation item table.
type ItemColumn struct {
	Key   string
	Label string
	Width WidthClass
}

// SeqColumnKey is the key of the always-present sequence number column.
const SeqColumnKey = "seq"

// ItemColumns is the registry of all selectable item-table columns, in
// canonical order.
var ItemColumns = []ItemColumn{
	{Key: SeqColumnKey, Label: "#", Width: WidthNarrow},
	{Key: "name", Label: "Product", Width: WidthWideMid},
	{Key: "description", Label: "Description", Width: WidthWide},
	{Key: "part_number", Label: "Part No.", Width: WidthMedium},
	{Key: "manufacturer", Label: "Manufacturer", Width: WidthWideMid},
	{Key: "qty", Label: "Qty", Width: WidthNarrow},
	{Key: "price", Label: "Unit Price", Width: WidthMedium},
	{Key: "total", Label: "Total", Width: WidthMedium},
}

// DefaultItemColumns returns the full canonical column set.
func DefaultItemColumns() []ItemColumn {
	cols := make([]ItemColumn, len(ItemColumns))
	copy(cols, ItemColumns)
	return cols
}

// SelectItemColumns resolves a list of column keys into columns, keeping
// the caller's order and dropping unknown keys. The sequence column is
// force-injected at position 0 when the selection omits it. An empty or
// all-unknown selection falls back to the full set.
func SelectItemColumns(keys []string) []ItemColumn {
	byKey := make(map[string]ItemColumn, len(ItemColumns))
	for _, c := range ItemColumns {
		byKey[c.Key] = c
	}

	var cols []ItemColumn
	for _, k := range keys {
		if c, ok := byKey[k]; ok {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return DefaultItemColumns()
	}

	hasSeq := false
	for _, c := range cols {
		if c.Key == SeqColumnKey {
			hasSeq = true
			break
		}
	}
	if !hasSeq {
		cols = append([]ItemColumn{byKey[SeqColumnKey]}, cols...)
	}
	return cols
}

// GridSizes maps the selected columns onto maroto's 12-unit grid using
// largest-remainder apportionment, so the sizes always sum to exactly 12
// regardless of which subset was chosen. Every column gets at least 1 unit.
func GridSizes(cols []ItemColumn) []int {
	n := len(cols)
	if n == 0 {
		return nil
	}

	totalWeight := 0
	for _, c := range cols {
		totalWeight += int(c.Width)
	}

	sizes := make([]int, n)
	remainders := make([]float64, n)
	assigned := 0
	for i, c := range cols {
		exact := float64(c.Width) * 12 / float64(totalWeight)
		sizes[i] = int(exact)
		if sizes[i] < 1 {
			sizes[i] = 1
		}
		remainders[i] = exact - float64(int(exact))
		assigned += sizes[i]
	}

	// Distribute leftover units to the largest remainders; steal from the
	// widest columns if minimums pushed the sum over 12.
	for assigned < 12 {
		best := 0
		for i := 1; i < n; i++ {
			if remainders[i] > remainders[best] {
				best = i
			}
		}
		sizes[best]++
		remainders[best] = -1
		assigned++
	}
	for assigned > 12 {
		widest := 0
		for i := 1; i < n; i++ {
			if sizes[i] > sizes[widest] {
				widest = i
			}
		}
		sizes[widest]--
		assigned--
	}

	return sizes
}
