package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfColorDark  = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfColorGray  = &props.Color{Red: 100, Green: 100, Blue: 100}
	pdfColorWhite = &props.Color{Red: 255, Green: 255, Blue: 255}
	pdfColorFaint = &props.Color{Red: 245, Green: 245, Blue: 245}
)

// contentWidthMM is the printable width of the legal page after margins.
const contentWidthMM = 215.9 - 20

// pdfBlock couples a planner Block with the maroto rows that draw it. The
// row heights always sum to the block height, so the planner's arithmetic
// matches what maroto lays out.
type pdfBlock struct {
	id     string
	height float64
	rows   []core.Row
}

// GenerateQuotationPDF renders a single quotation as a paginated PDF using
// the given column selection for the item table. The sequence column is
// injected when missing. It returns the raw PDF bytes.
func GenerateQuotationPDF(data *QuotationExportData, columns []ItemColumn) ([]byte, error) {
	eng, err := getEngine()
	if err != nil {
		return nil, err
	}

	cols := SelectItemColumns(columnKeys(columns))
	sizes := GridSizes(cols)

	var blocks []pdfBlock
	blocks = append(blocks, headerBlock(eng, data))
	blocks = append(blocks, addressBlock(data))
	if data.Reference != "" || data.Attention != "" {
		blocks = append(blocks, referenceBlock(data))
	}
	blocks = append(blocks, itemTableHeaderBlock(cols, sizes))
	for _, it := range data.Items {
		blocks = append(blocks, itemRowBlock(it, cols, sizes, data.Currency))
	}
	if data.ETA != "" {
		blocks = append(blocks, etaBannerBlock(data.ETA))
	}
	blocks = append(blocks, totalsBlock(data))
	blocks = append(blocks, signatureBlock(eng))
	if data.Notes != "" {
		blocks = append(blocks, paragraphBlock("notes", "Notes", data.Notes))
	}
	if data.Terms != "" {
		blocks = append(blocks, paragraphBlock("terms", "Terms & Conditions", data.Terms))
	}

	return renderPlannedPDF(eng, data, blocks)
}

// renderPlannedPDF runs the page planner over the blocks and materializes
// each planned page as an explicit maroto page with exactly one footer.
// Content never enters the footer reservation: the planner closes the page
// first, and the leftover space becomes a spacer row above the footer.
func renderPlannedPDF(eng *documentEngine, data *QuotationExportData, blocks []pdfBlock) ([]byte, error) {
	planned := PlanPages(plannerBlocks(blocks), eng.geometry)

	byID := make(map[string]pdfBlock, len(blocks))
	for _, b := range blocks {
		byID[b.id] = b
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.Legal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Quotation "+data.Code, true).
		Build()

	m := maroto.New(cfg)

	for i, pl := range planned {
		p := page.New()
		for _, b := range pl.Blocks {
			p.Add(byID[b.ID].rows...)
		}
		if pl.Remaining > 0 {
			p.Add(row.New(pl.Remaining))
		}
		p.Add(footerRow(data, i+1))
		m.AddPages(p)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate quotation PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func plannerBlocks(blocks []pdfBlock) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = Block{ID: b.id, Height: b.height}
	}
	return out
}

func columnKeys(cols []ItemColumn) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

// footerRow draws the per-page footer: bank remittance details on the left,
// page number and generation date on the right.
func footerRow(data *QuotationExportData, pageNum int) core.Row {
	return row.New(10).Add(
		col.New(8).Add(
			text.New(data.BankDetails, props.Text{
				Size: 6.5, Align: align.Left, Color: pdfColorGray, Top: 3,
			}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("Page %d | Generated on %s", pageNum, data.GeneratedDate), props.Text{
				Size: 6.5, Align: align.Right, Color: pdfColorGray, Top: 3,
			}),
		),
	)
}

// headerBlock: logo (when available), document title, quotation code and
// the generated / valid-until dates.
func headerBlock(eng *documentEngine, data *QuotationExportData) pdfBlock {
	left := col.New(6)
	if eng.logo != nil {
		left.Add(image.NewFromBytes(eng.logo, extension.Png, props.Rect{Percent: 80}))
	} else {
		left.Add(text.New(data.CompanyName, props.Text{
			Size: 15, Style: fontstyle.Bold, Align: align.Left, Top: 2,
		}))
	}

	r1 := row.New(18).Add(
		left,
		col.New(6).Add(
			text.New("QUOTATION", props.Text{
				Size: 16, Style: fontstyle.Bold, Align: align.Right, Color: pdfColorDark, Top: 1,
			}),
			text.New(data.Code, props.Text{
				Size: 11, Style: fontstyle.Bold, Align: align.Right, Top: 9,
			}),
			text.New("Date: "+data.GeneratedDate+"   Valid until: "+data.ValidUntil, props.Text{
				Size: 8, Align: align.Right, Color: pdfColorGray, Top: 15,
			}),
		),
	)
	r2 := line.NewRow(2, props.Line{Color: pdfColorDark, Thickness: 0.5})

	return pdfBlock{id: "header", height: 20, rows: []core.Row{r1, r2}}
}

// addressBlock: issuer details left, customer snapshot right.
func addressBlock(data *QuotationExportData) pdfBlock {
	label := props.Text{Size: 7, Style: fontstyle.Bold, Color: pdfColorGray, Top: 1}
	name := props.Text{Size: 9, Style: fontstyle.Bold, Top: 6}
	detail := props.Text{Size: 8, Color: pdfColorGray, Top: 12}

	labelR := label
	labelR.Align = align.Right
	nameR := name
	nameR.Align = align.Right
	detailR := detail
	detailR.Align = align.Right

	r := row.New(26).Add(
		col.New(6).Add(
			text.New("FROM", label),
			text.New(data.CompanyName, name),
			text.New(joinNonEmpty(data.CompanyAddress, data.CompanyEmail, data.CompanyPhone), detail),
		),
		col.New(6).Add(
			text.New("TO", labelR),
			text.New(data.CustomerName, nameR),
			text.New(joinNonEmpty(data.CustomerAddress, data.CustomerEmail), detailR),
		),
	)

	return pdfBlock{id: "addresses", height: 26, rows: []core.Row{r}}
}

// referenceBlock: reference left, attention right.
func referenceBlock(data *QuotationExportData) pdfBlock {
	r := row.New(10).Add(
		col.New(6).Add(
			text.New("Ref: "+data.Reference, props.Text{Size: 8, Top: 2}),
		),
		col.New(6).Add(
			text.New("Attn: "+data.Attention, props.Text{Size: 8, Align: align.Right, Top: 2}),
		),
	)
	return pdfBlock{id: "reference", height: 10, rows: []core.Row{r}}
}

func itemTableHeaderBlock(cols []ItemColumn, sizes []int) pdfBlock {
	headerCell := props.Cell{BackgroundColor: pdfColorDark}

	r := row.New(8)
	for i, c := range cols {
		style := props.Text{
			Size: 8, Style: fontstyle.Bold, Align: align.Center,
			Color: pdfColorWhite, Top: 2,
		}
		if c.Width >= WidthWideMid {
			style.Align = align.Left
			style.Left = 1
		}
		r.Add(col.New(sizes[i]).Add(text.New(c.Label, style)).WithStyle(&headerCell))
	}

	return pdfBlock{id: "table_header", height: 8, rows: []core.Row{r}}
}

func itemRowBlock(it QuotationExportItem, cols []ItemColumn, sizes []int, currency string) pdfBlock {
	// Row height grows with the wrapped description so the planner knows
	// the real vertical cost of the row.
	height := 7.0
	for i, c := range cols {
		if c.Key == "description" {
			lines := estimateWrappedLines(it.Description, gridWidthMM(sizes[i]))
			if h := 3 + float64(lines)*3.5; h > height {
				height = h
			}
		}
	}

	zebra := props.Cell{BackgroundColor: pdfColorFaint}
	r := row.New(height)
	for i, c := range cols {
		style := props.Text{Size: 8, Top: 1.5}
		switch c.Key {
		case "qty", "price", "total":
			style.Align = align.Right
			style.Right = 1
		case SeqColumnKey:
			style.Align = align.Center
		default:
			style.Align = align.Left
			style.Left = 1
		}
		cell := col.New(sizes[i]).Add(text.New(it.Value(c.Key, currency), style))
		if it.Seq%2 == 0 {
			cell = cell.WithStyle(&zebra)
		}
		r.Add(cell)
	}

	return pdfBlock{id: fmt.Sprintf("item_%d", it.Seq), height: height, rows: []core.Row{r}}
}

// etaBannerBlock: a filled rectangle with centered white text, right
// aligned under the item table.
func etaBannerBlock(eta string) pdfBlock {
	banner := props.Cell{BackgroundColor: pdfColorDark}
	r := row.New(9).Add(
		col.New(7),
		col.New(5).Add(
			text.New("Estimated arrival: "+eta, props.Text{
				Size: 8, Style: fontstyle.Bold, Align: align.Center,
				Color: pdfColorWhite, Top: 2.5,
			}),
		).WithStyle(&banner),
	)
	return pdfBlock{id: "eta", height: 9, rows: []core.Row{r}}
}

// totalsBlock: right-aligned financial summary sized to roughly 35% of the
// content width. The discount label carries the percentage suffix or the
// currency prefix depending on the discount type.
func totalsBlock(data *QuotationExportData) pdfBlock {
	labelStyle := props.Text{Size: 8, Align: align.Right, Right: 2, Top: 1}
	valueStyle := props.Text{Size: 8, Align: align.Right, Right: 1, Top: 1}
	box := props.Cell{BackgroundColor: pdfColorFaint}

	discountLabel := "Discount"
	if data.DiscountType == DiscountPercentage {
		discountLabel = fmt.Sprintf("Discount (%s%%)", FormatQty(data.DiscountValue))
	} else if data.DiscountValue > 0 {
		discountLabel = fmt.Sprintf("Discount (%s)", FormatMoney(data.DiscountValue, data.Currency))
	}

	summaryLine := func(label, value string) core.Row {
		return row.New(6).Add(
			col.New(7),
			col.New(3).Add(text.New(label, labelStyle)).WithStyle(&box),
			col.New(2).Add(text.New(value, valueStyle)).WithStyle(&box),
		)
	}

	rows := []core.Row{
		row.New(3),
		summaryLine("Subtotal", FormatMoney(data.Subtotal, data.Currency)),
		summaryLine(discountLabel, "-"+FormatMoney(data.DiscountAmount, data.Currency)),
		summaryLine(fmt.Sprintf("Tax (%s%%)", FormatQty(data.TaxRate)), FormatMoney(data.TaxAmount, data.Currency)),
		summaryLine("Total quantity", FormatQty(data.TotalQuantity)),
		row.New(8).Add(
			col.New(7),
			col.New(3).Add(text.New("TOTAL", props.Text{
				Size: 10, Style: fontstyle.Bold, Align: align.Right, Right: 2, Top: 1.5,
			})).WithStyle(&box),
			col.New(2).Add(text.New(FormatMoney(data.TotalAmount, data.Currency), props.Text{
				Size: 10, Style: fontstyle.Bold, Align: align.Right, Right: 1, Top: 1.5,
			})).WithStyle(&box),
		),
	}

	return pdfBlock{id: "totals", height: 3 + 4*6 + 8, rows: rows}
}

// signatureBlock: manager signature and company stamp side by side, stamp
// shifted left so the images overlap like the wet-ink original.
func signatureBlock(eng *documentEngine) pdfBlock {
	r := row.New(28)
	r.Add(col.New(6))

	sig := col.New(3)
	if eng.signature != nil {
		sig.Add(image.NewFromBytes(eng.signature, extension.Png, props.Rect{Percent: 90, Top: 2}))
	}
	sig.Add(text.New("Authorized Signatory", props.Text{
		Size: 7, Align: align.Center, Color: pdfColorGray, Top: 24,
	}))
	r.Add(sig)

	stamp := col.New(3)
	if eng.stamp != nil {
		stamp.Add(image.NewFromBytes(eng.stamp, extension.Png, props.Rect{Percent: 90, Left: -6}))
	}
	r.Add(stamp)

	return pdfBlock{id: "signature", height: 28, rows: []core.Row{r}}
}

func paragraphBlock(id, title, body string) pdfBlock {
	lines := estimateWrappedLines(body, contentWidthMM)
	height := 6 + float64(lines)*3.5

	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New(title, props.Text{
			Size: 8, Style: fontstyle.Bold, Top: 2,
		}))),
		row.New(height - 6).Add(col.New(12).Add(text.New(body, props.Text{
			Size: 7.5, Color: pdfColorGray,
		}))),
	}
	return pdfBlock{id: id, height: height, rows: rows}
}

// gridWidthMM converts a 12-grid column size to millimeters of content.
func gridWidthMM(size int) float64 {
	return float64(size) / 12 * contentWidthMM
}

// estimateWrappedLines approximates how many lines a text wraps to in a
// column of the given width at the table font size. Used only for height
// planning; maroto does the actual wrapping.
func estimateWrappedLines(s string, widthMM float64) int {
	if s == "" {
		return 1
	}
	charsPerLine := int(widthMM / 1.7)
	if charsPerLine < 1 {
		charsPerLine = 1
	}
	lines := (len(s) + charsPerLine - 1) / charsPerLine
	if lines < 1 {
		lines = 1
	}
	return lines
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	out := ""
	for i, p := range kept {
		if i > 0 {
			out += "  |  "
		}
		out += p
	}
	return out
}
