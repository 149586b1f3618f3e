package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
)

// QuotationExportData holds all data needed to render a single quotation
// document (PDF, Excel or CSV).
type QuotationExportData struct {
	// Issuer (from settings)
	CompanyName    string
	CompanyAddress string
	CompanyEmail   string
	CompanyPhone   string
	BankDetails    string

	// Header
	Code          string
	GeneratedDate string
	CreatedDate   string
	ValidUntil    string
	ETA           string
	Status        string

	// Customer (denormalized snapshot on the quotation)
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string

	Reference string
	Attention string

	Items []QuotationExportItem

	// Financials
	Currency       string
	Subtotal       float64
	DiscountType   string
	DiscountValue  float64
	DiscountAmount float64
	TaxRate        float64
	TaxAmount      float64
	TotalQuantity  float64
	TotalAmount    float64
	ExpectedIncome float64

	Notes string
	Terms string
}

// QuotationExportItem is one printable item row.
type QuotationExportItem struct {
	Seq          int
	Name         string
	Description  string
	PartNumber   string
	Manufacturer string
	Qty          float64
	Price        float64
	NormalPrice  float64
	Total        float64
}

// Value returns the cell value for a column key, already formatted for
// display. Unknown keys render the missing-value placeholder.
func (it QuotationExportItem) Value(key, currency string) string {
	switch key {
	case SeqColumnKey:
		return fmt.Sprintf("%d", it.Seq)
	case "name":
		return it.Name
	case "description":
		return it.Description
	case "part_number":
		return it.PartNumber
	case "manufacturer":
		return it.Manufacturer
	case "qty":
		return FormatQty(it.Qty)
	case "price":
		return FormatMoney(it.Price, currency)
	case "total":
		return FormatMoney(it.Total, currency)
	}
	return MissingValue
}

// BuildQuotationExportData assembles everything needed to render one
// quotation from its records. Totals are recomputed from the items rather
// than trusted from the stored record, so an export always reflects the
// current line items.
func BuildQuotationExportData(app *pocketbase.PocketBase, quotationID string) (*QuotationExportData, error) {
	q, err := app.FindRecordById("quotations", quotationID)
	if err != nil {
		return nil, fmt.Errorf("quotation not found: %w", err)
	}

	data := &QuotationExportData{
		Code:            q.GetString("code"),
		GeneratedDate:   time.Now().Format("02 Jan 2006"),
		Status:          q.GetString("status"),
		CustomerName:    q.GetString("customer_name"),
		CustomerEmail:   q.GetString("customer_email"),
		CustomerAddress: q.GetString("customer_address"),
		Reference:       q.GetString("reference"),
		Attention:       q.GetString("attention"),
		DiscountType:    q.GetString("discount_type"),
		DiscountValue:   q.GetFloat("discount_value"),
		TaxRate:         q.GetFloat("tax_rate"),
		Notes:           q.GetString("notes"),
		Terms:           q.GetString("terms"),
	}

	if dt := q.GetDateTime("created"); !dt.IsZero() {
		data.CreatedDate = dt.Time().Format("02 Jan 2006")
	}
	if dt := q.GetDateTime("valid_until"); !dt.IsZero() {
		data.ValidUntil = dt.Time().Format("02 Jan 2006")
	}
	if dt := q.GetDateTime("eta"); !dt.IsZero() {
		data.ETA = dt.Time().Format("02 Jan 2006")
	}

	fillCompanyDetails(app, data)

	data.Currency = LoadRateTable(app).Base
	if c := strings.TrimSpace(q.GetString("currency")); c != "" {
		data.Currency = c
	}

	items, err := app.FindRecordsByFilter(
		"quotation_items",
		"quotation = {:qId}",
		"sort_order",
		0,
		0,
		map[string]any{"qId": quotationID},
	)
	if err != nil {
		items = nil
	}

	var lineItems []LineItem
	for i, rec := range items {
		qty := rec.GetFloat("qty")
		price := rec.GetFloat("price")
		data.Items = append(data.Items, QuotationExportItem{
			Seq:          i + 1,
			Name:         rec.GetString("name"),
			Description:  rec.GetString("description"),
			PartNumber:   rec.GetString("part_number"),
			Manufacturer: rec.GetString("manufacturer"),
			Qty:          qty,
			Price:        price,
			NormalPrice:  rec.GetFloat("normal_price"),
			Total:        CalcLineTotal(qty, price),
		})
		lineItems = append(lineItems, LineItem{
			Qty:   strconv.FormatFloat(qty, 'f', -1, 64),
			Price: strconv.FormatFloat(price, 'f', -1, 64),
		})
	}

	totals := CalcQuotationTotals(lineItems, data.DiscountType, data.DiscountValue, data.TaxRate)
	data.Subtotal = totals.Subtotal
	data.DiscountAmount = totals.DiscountAmount
	data.TaxAmount = totals.Tax
	data.TotalQuantity = totals.TotalQuantity
	data.TotalAmount = totals.TotalAmount
	data.ExpectedIncome = totals.ExpectedIncome

	return data, nil
}

func fillCompanyDetails(app *pocketbase.PocketBase, data *QuotationExportData) {
	settings, err := app.FindFirstRecordByFilter("settings", "id != ''")
	if err != nil {
		log.Printf("export_data: settings record missing: %v", err)
		return
	}
	data.CompanyName = settings.GetString("company_name")
	data.CompanyAddress = settings.GetString("company_address")
	data.CompanyEmail = settings.GetString("company_email")
	data.CompanyPhone = settings.GetString("company_phone")
	data.BankDetails = settings.GetString("bank_details")
}

// SummaryRow is one quotation line in the multi-quotation summary.
type SummaryRow struct {
	Code         string
	CustomerName string
	CreatedDate  string
	Status       string
	TotalAmount  float64
}

// SummaryData holds the aggregates and rows for the summary PDF.
type SummaryData struct {
	From          string
	To            string
	GeneratedAt   string
	Currency      string
	Count         int
	GrandTotal    float64
	AverageValue  float64
	CustomerCount int
	Rows          []SummaryRow
}

// BuildQuotationSummaryData aggregates the quotations matching the given
// status and date range. Empty filter values mean "all".
func BuildQuotationSummaryData(app *pocketbase.PocketBase, status string, from, to time.Time) (*SummaryData, error) {
	filters := []string{"id != ''"}
	params := map[string]any{}
	if status != "" {
		filters = append(filters, "status = {:status}")
		params["status"] = status
	}
	if !from.IsZero() {
		filters = append(filters, "created >= {:from}")
		params["from"] = from.UTC().Format("2006-01-02 15:04:05.000Z")
	}
	if !to.IsZero() {
		filters = append(filters, "created <= {:to}")
		params["to"] = to.UTC().Format("2006-01-02 15:04:05.000Z")
	}

	records, err := app.FindRecordsByFilter(
		"quotations",
		strings.Join(filters, " && "),
		"-created",
		0,
		0,
		params,
	)
	if err != nil {
		return nil, fmt.Errorf("query quotations: %w", err)
	}

	rt := LoadRateTable(app)

	data := &SummaryData{
		GeneratedAt: time.Now().Format("02 Jan 2006 15:04"),
		Currency:    rt.Base,
	}
	if !from.IsZero() {
		data.From = from.Format("02 Jan 2006")
	}
	if !to.IsZero() {
		data.To = to.Format("02 Jan 2006")
	}

	customers := make(map[string]struct{})
	for _, rec := range records {
		total := rec.GetFloat("total_amount")
		data.GrandTotal += total
		if name := rec.GetString("customer_name"); name != "" {
			customers[name] = struct{}{}
		}

		created := ""
		if dt := rec.GetDateTime("created"); !dt.IsZero() {
			created = dt.Time().Format("02 Jan 2006")
		}
		data.Rows = append(data.Rows, SummaryRow{
			Code:         rec.GetString("code"),
			CustomerName: rec.GetString("customer_name"),
			CreatedDate:  created,
			Status:       rec.GetString("status"),
			TotalAmount:  total,
		})
	}

	data.Count = len(records)
	data.CustomerCount = len(customers)
	if data.Count > 0 {
		data.AverageValue = Round2(data.GrandTotal / float64(data.Count))
	}

	return data, nil
}
