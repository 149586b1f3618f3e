package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateSummaryPDF renders the multi-quotation summary: a date-range
// header, four metric cards and a flat table of one row per quotation.
// Unlike the single-quotation layout this uses maroto's automatic page
// breaking with a page-number footer, matching the simpler report style.
func GenerateSummaryPDF(data *SummaryData) ([]byte, error) {
	if _, err := getEngine(); err != nil {
		return nil, err
	}
	if data.Count == 0 {
		return nil, ErrNoData
	}

	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   pdfColorGray,
		}).
		Build()

	m := maroto.New(cfg)

	addSummaryHeader(m, data)
	addSummaryMetricCards(m, data)
	addSummaryTableHeader(m)
	for _, r := range data.Rows {
		addSummaryTableRow(m, r, data.Currency)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addSummaryHeader(m core.Maroto, data *SummaryData) {
	m.AddRows(
		row.New(10).Add(
			col.New(12).Add(
				text.New("Quotation Summary", props.Text{
					Size: 15, Style: fontstyle.Bold, Align: align.Center,
				}),
			),
		),
	)

	rangeLabel := "All dates"
	if data.From != "" || data.To != "" {
		rangeLabel = fmt.Sprintf("%s — %s", orDash(data.From), orDash(data.To))
	}
	m.AddRows(
		row.New(7).Add(
			col.New(6).Add(
				text.New(rangeLabel, props.Text{Size: 9, Align: align.Left, Color: pdfColorGray}),
			),
			col.New(6).Add(
				text.New("Generated "+data.GeneratedAt, props.Text{Size: 9, Align: align.Right, Color: pdfColorGray}),
			),
		),
		row.New(4),
	)
}

// addSummaryMetricCards: four equal cards with a value and caption each.
func addSummaryMetricCards(m core.Maroto, data *SummaryData) {
	card := props.Cell{BackgroundColor: pdfColorFaint}
	valueStyle := props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Center, Top: 2}
	captionStyle := props.Text{Size: 7, Align: align.Center, Color: pdfColorGray, Top: 9}

	metric := func(value, caption string) core.Col {
		return col.New(3).Add(
			text.New(value, valueStyle),
			text.New(caption, captionStyle),
		).WithStyle(&card)
	}

	m.AddRows(
		row.New(14).Add(
			metric(fmt.Sprintf("%d", data.Count), "Quotations"),
			metric(FormatMoney(data.GrandTotal, data.Currency), "Grand Total"),
			metric(FormatMoney(data.AverageValue, data.Currency), "Average Value"),
			metric(fmt.Sprintf("%d", data.CustomerCount), "Customers"),
		),
		row.New(5),
	)
}

func addSummaryTableHeader(m core.Maroto) {
	headerCell := props.Cell{BackgroundColor: pdfColorDark}
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Size: 8, Style: fontstyle.Bold, Align: a, Color: pdfColorWhite, Top: 2, Left: 1, Right: 1,
		})).WithStyle(&headerCell)
	}
	m.AddRows(
		row.New(8).Add(
			h("Code", 3, align.Left),
			h("Customer", 4, align.Left),
			h("Date", 2, align.Center),
			h("Status", 1, align.Center),
			h("Total", 2, align.Right),
		),
	)
}

func addSummaryTableRow(m core.Maroto, r SummaryRow, currency string) {
	m.AddRows(
		row.New(7).Add(
			col.New(3).Add(text.New(r.Code, props.Text{Size: 8, Top: 1.5, Left: 1})),
			col.New(4).Add(text.New(r.CustomerName, props.Text{Size: 8, Top: 1.5, Left: 1})),
			col.New(2).Add(text.New(r.CreatedDate, props.Text{Size: 8, Align: align.Center, Top: 1.5})),
			col.New(1).Add(text.New(r.Status, props.Text{Size: 7.5, Align: align.Center, Top: 1.5})),
			col.New(2).Add(text.New(FormatMoney(r.TotalAmount, currency), props.Text{Size: 8, Align: align.Right, Top: 1.5, Right: 1})),
		),
	)
}

func orDash(s string) string {
	if s == "" {
		return "…"
	}
	return s
}
