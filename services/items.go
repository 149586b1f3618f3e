package services

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// LineItem is one editable row of a quotation. Qty and Price are kept as
// the raw strings the user typed so a transiently empty or invalid field is
// preserved in the form while computing as zero. Total is maintained at
// 2-decimal rounding on every qty/price change.
type LineItem struct {
	ID           string
	ProductID    string
	Name         string
	Description  string
	PartNumber   string
	Manufacturer string
	Qty          string
	Price        string
	NormalPrice  float64
	Total        float64
}

// QtyValue parses the raw quantity, treating missing/invalid input as 0.
func (li LineItem) QtyValue() float64 {
	return parseNumeric(li.Qty)
}

// PriceValue parses the raw unit price, treating missing/invalid input as 0.
func (li LineItem) PriceValue() float64 {
	return parseNumeric(li.Price)
}

func parseNumeric(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ProductInfo is the subset of a product used to populate a line item.
type ProductInfo struct {
	ID           string
	Name         string
	Description  string
	PartNumber   string
	Manufacturer string
	Price        float64
	NormalPrice  float64
}

// ProductLookup resolves a product by id. Implemented over the products
// collection in production and by fakes in tests.
type ProductLookup interface {
	FindProduct(id string) (*ProductInfo, error)
}

// Editor holds the in-memory line items of a quotation form and keeps their
// totals consistent through edits. Items keep insertion order, which is also
// the display and print order.
//
// Product resolutions are asynchronous and may settle out of order. Each
// resolution request gets a per-item monotonic token; a result is applied
// only if its token is still the latest issued for that item, so a slow
// stale response can never overwrite a newer selection.
type Editor struct {
	mu    sync.Mutex
	items []LineItem
	seq   map[string]uint64
}

// NewEditor returns an empty line item editor.
func NewEditor() *Editor {
	return &Editor{seq: make(map[string]uint64)}
}

// AddItem appends a blank item and returns its locally generated id. The id
// is only used for form diffing; it is never a durable key.
func (ed *Editor) AddItem() string {
	ed.mu.Lock()
	defer ed.mu.Unlock()

	id := uuid.NewString()
	ed.items = append(ed.items, LineItem{ID: id})
	return id
}

// RemoveItem drops the item with the given id. Unknown ids are ignored.
func (ed *Editor) RemoveItem(id string) {
	ed.mu.Lock()
	defer ed.mu.Unlock()

	for i, it := range ed.items {
		if it.ID == id {
			ed.items = append(ed.items[:i], ed.items[i+1:]...)
			break
		}
	}
	delete(ed.seq, id)
}

// ChangeField updates one editable field by name. Quantity and price edits
// recompute the item's total immediately.
func (ed *Editor) ChangeField(id, field, raw string) {
	ed.mu.Lock()
	defer ed.mu.Unlock()

	it := ed.find(id)
	if it == nil {
		return
	}

	switch field {
	case "name":
		it.Name = raw
	case "description":
		it.Description = raw
	case "part_number":
		it.PartNumber = raw
	case "manufacturer":
		it.Manufacturer = raw
	case "qty":
		it.Qty = raw
		it.Total = CalcLineTotal(it.QtyValue(), it.PriceValue())
	case "price":
		it.Price = raw
		it.Total = CalcLineTotal(it.QtyValue(), it.PriceValue())
	}
}

// BeginResolve records a new product selection for the item and returns the
// token that the eventual resolution result must present.
func (ed *Editor) BeginResolve(id, productID string) uint64 {
	ed.mu.Lock()
	defer ed.mu.Unlock()

	if it := ed.find(id); it != nil {
		it.ProductID = productID
	}
	ed.seq[id]++
	return ed.seq[id]
}

// ApplyResolution applies the outcome of a product lookup. Stale tokens are
// discarded. On success the product fields overwrite the item, preserving
// any already-entered quantity; on failure (info == nil) the derived fields
// are cleared and the total zeroed, still preserving quantity.
func (ed *Editor) ApplyResolution(id string, token uint64, info *ProductInfo) bool {
	ed.mu.Lock()
	defer ed.mu.Unlock()

	if token != ed.seq[id] {
		return false
	}
	it := ed.find(id)
	if it == nil {
		return false
	}

	if info == nil {
		it.Name = ""
		it.Description = ""
		it.PartNumber = ""
		it.Manufacturer = ""
		it.Price = ""
		it.NormalPrice = 0
		it.Total = 0
		return true
	}

	it.Name = info.Name
	it.Description = info.Description
	it.PartNumber = info.PartNumber
	it.Manufacturer = info.Manufacturer
	it.Price = strconv.FormatFloat(info.Price, 'f', -1, 64)
	it.NormalPrice = info.NormalPrice
	it.Total = CalcLineTotal(it.QtyValue(), it.PriceValue())
	return true
}

// ResolveProduct runs a lookup and applies the result under the token
// discipline. Lookup errors are swallowed: they surface only as cleared
// item fields, never blocking the rest of the form.
func (ed *Editor) ResolveProduct(id, productID string, lookup ProductLookup) {
	token := ed.BeginResolve(id, productID)
	info, err := lookup.FindProduct(productID)
	if err != nil {
		info = nil
	}
	ed.ApplyResolution(id, token, info)
}

// Items returns a copy of the current items in order.
func (ed *Editor) Items() []LineItem {
	ed.mu.Lock()
	defer ed.mu.Unlock()

	out := make([]LineItem, len(ed.items))
	copy(out, ed.items)
	return out
}

// Totals recomputes the quotation totals from the current items.
func (ed *Editor) Totals(discountType string, discountValue, taxRate float64) QuotationTotals {
	return CalcQuotationTotals(ed.Items(), discountType, discountValue, taxRate)
}

func (ed *Editor) find(id string) *LineItem {
	for i := range ed.items {
		if ed.items[i].ID == id {
			return &ed.items[i]
		}
	}
	return nil
}
