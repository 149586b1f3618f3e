package services

// Block is one indivisible vertical chunk of document content with a known
// height in page units (mm for the PDF renderer).
type Block struct {
	ID     string
	Height float64
}

// PageGeometry describes the vertical budget of a page. FooterHeight is a
// reservation at the bottom of every page that content must never cross.
type PageGeometry struct {
	PageHeight   float64
	TopMargin    float64
	BottomMargin float64
	FooterHeight float64
}

// ContentHeight is the vertical space available to content blocks on one
// page: page height minus margins minus the footer reservation.
func (g PageGeometry) ContentHeight() float64 {
	return g.PageHeight - g.TopMargin - g.BottomMargin - g.FooterHeight
}

// PlannedPage is one output page: the blocks placed on it and the leftover
// space between the last block and the footer reservation.
type PlannedPage struct {
	Blocks    []Block
	Remaining float64
}

// PlanPages distributes blocks over pages. Before placing a block that
// would cross the footer reservation, the current page is closed and a new
// one started. A block taller than a whole page's content height still gets
// a page of its own (the renderer clips it rather than the planner
// splitting it). The returned slice always has at least one page, so a
// document with no blocks still renders one page with a footer.
func PlanPages(blocks []Block, geom PageGeometry) []PlannedPage {
	limit := geom.ContentHeight()

	pages := []PlannedPage{{Remaining: limit}}
	cursor := 0.0

	for _, b := range blocks {
		if cursor > 0 && cursor+b.Height > limit {
			pages[len(pages)-1].Remaining = clampNonNegative(limit - cursor)
			pages = append(pages, PlannedPage{})
			cursor = 0
		}
		last := &pages[len(pages)-1]
		last.Blocks = append(last.Blocks, b)
		cursor += b.Height
	}

	pages[len(pages)-1].Remaining = limit - cursor
	if pages[len(pages)-1].Remaining < 0 {
		pages[len(pages)-1].Remaining = 0
	}
	return pages
}
