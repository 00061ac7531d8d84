// Package pdf renders a finalized quote as a PDF document with maroto/v2.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// QuoteItem is one rendered line of the document.
type QuoteItem struct {
	Description string
	PartNumber  string
	Quantity    int
	Origin      string
	Mode        string
	TotalUSD    string // preformatted currency strings
	TotalLocal  string
}

// QuoteData is everything the document template needs.
type QuoteData struct {
	Number       string
	Date         string
	AnalystName  string
	CustomerName string
	CustomerRIF  string
	Items        []QuoteItem
	TotalUSD     string
	TotalLocal   string // empty when the quote is USD-only
	Notes        string
}

// QuotePDF renders the document and returns the raw bytes.
func QuotePDF(data QuoteData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, data)
	addTableHeader(m)
	for _, it := range data.Items {
		addItemRow(m, it)
	}
	addTotals(m, data)
	if data.Notes != "" {
		addNotes(m, data.Notes)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, data QuoteData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New("COTIZACIÓN "+data.Number, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)
	gray := &props.Color{Red: 80, Green: 80, Blue: 80}
	m.AddRows(
		row.New(7).Add(
			col.New(6).Add(
				text.New("Cliente: "+data.CustomerName, props.Text{Size: 9, Align: align.Left, Color: gray}),
			),
			col.New(6).Add(
				text.New("Fecha: "+data.Date, props.Text{Size: 9, Align: align.Right, Color: gray}),
			),
		),
		row.New(7).Add(
			col.New(6).Add(
				text.New("RIF: "+data.CustomerRIF, props.Text{Size: 9, Align: align.Left, Color: gray}),
			),
			col.New(6).Add(
				text.New("Analista: "+data.AnalystName, props.Text{Size: 9, Align: align.Right, Color: gray}),
			),
		),
		row.New(4),
	)
}

func addTableHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(4).Add(text.New("Descripción", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Parte", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Cant.", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Origen/Vía", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Total USD", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Total Bs", headerText)).WithStyle(&headerCell),
		),
	)
}

func addItemRow(m core.Maroto, it QuoteItem) {
	cell := props.Text{Size: 8, Align: align.Center}
	left := props.Text{Size: 8, Align: align.Left}
	right := props.Text{Size: 8, Align: align.Right}

	m.AddRows(
		row.New(7).Add(
			col.New(4).Add(text.New(it.Description, left)),
			col.New(2).Add(text.New(it.PartNumber, cell)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), cell)),
			col.New(2).Add(text.New(it.Origin+" / "+it.Mode, cell)),
			col.New(2).Add(text.New(it.TotalUSD, right)),
			col.New(1).Add(text.New(it.TotalLocal, right)),
		),
	)
}

func addTotals(m core.Maroto, data QuoteData) {
	bold := props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}
	m.AddRows(
		row.New(4),
		row.New(8).Add(
			col.New(9).Add(text.New("TOTAL USD", bold)),
			col.New(3).Add(text.New(data.TotalUSD, bold)),
		),
	)
	if data.TotalLocal != "" {
		m.AddRows(
			row.New(8).Add(
				col.New(9).Add(text.New("TOTAL Bs", bold)),
				col.New(3).Add(text.New(data.TotalLocal, bold)),
			),
		)
	}
}

func addNotes(m core.Maroto, notes string) {
	m.AddRows(
		row.New(4),
		row.New(10).Add(
			col.New(12).Add(
				text.New("Notas: "+notes, props.Text{Size: 8, Align: align.Left}),
			),
		),
	)
}
