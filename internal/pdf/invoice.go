// Package pdf renders printable invoices.
package pdf

import (
	"fmt"
	"strings"

	"github.com/diewo77/bespoke-tuition/internal/services"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

const dateLayout = "02/01/2006"

var (
	bold       = props.Text{Style: fontstyle.Bold}
	boldRight  = props.Text{Style: fontstyle.Bold, Align: align.Right}
	right      = props.Text{Align: align.Right}
	smallMuted = props.Text{Size: 8, Style: fontstyle.Italic}
)

// Renderer turns an invoice detail into a PDF document.
type Renderer struct {
	BusinessName string
}

func NewRenderer(businessName string) *Renderer {
	return &Renderer{BusinessName: businessName}
}

func amount(d decimal.Decimal) string {
	return "£" + d.StringFixed(2)
}

// Invoice renders d and returns the PDF bytes.
func (r *Renderer) Invoice(d *services.InvoiceDetail) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRows(r.header(d)...)
	m.AddRows(line.NewRow(6))
	m.AddRows(lineItems(d)...)
	m.AddRows(line.NewRow(6))
	m.AddRows(totals(d)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", d.Invoice.InvoiceNumber, err)
	}
	return doc.GetBytes(), nil
}

func (r *Renderer) header(d *services.InvoiceDetail) []core.Row {
	inv := d.Invoice
	rows := []core.Row{
		text.NewRow(12, r.BusinessName, props.Text{Size: 16, Style: fontstyle.Bold}),
		row.New(7).Add(
			text.NewCol(6, "Invoice "+inv.InvoiceNumber, bold),
			text.NewCol(6, "Date "+inv.DateCreated.Format(dateLayout), right),
		),
		row.New(7).Add(
			text.NewCol(6, clientName(d)),
			text.NewCol(6, "Status: "+inv.Status.String(), right),
		),
	}
	for _, l := range d.Address.Lines() {
		rows = append(rows, text.NewRow(5, l))
	}
	if d.Contact != nil {
		rows = append(rows, text.NewRow(5, d.Contact.EmailAddress, smallMuted))
	}
	if len(d.Students) > 0 {
		rows = append(rows, text.NewRow(7, "Students: "+strings.Join(d.Students, ", "), props.Text{Top: 2}))
	}
	return rows
}

func clientName(d *services.InvoiceDetail) string {
	if d.Invoice.Client == nil {
		return ""
	}
	return d.Invoice.Client.FullName()
}

func lineItems(d *services.InvoiceDetail) []core.Row {
	rows := []core.Row{
		row.New(7).Add(
			text.NewCol(6, "Lesson", bold),
			text.NewCol(2, "Quantity", boldRight),
			text.NewCol(2, "Unit price", boldRight),
			text.NewCol(2, "Total", boldRight),
		),
	}
	for _, li := range d.Lines {
		rows = append(rows, row.New(6).Add(
			text.NewCol(6, li.Product),
			text.NewCol(2, fmt.Sprint(li.Quantity), right),
			text.NewCol(2, amount(li.UnitPrice), right),
			text.NewCol(2, amount(li.LineTotal), right),
		))
	}
	return rows
}

func totals(d *services.InvoiceDetail) []core.Row {
	inv := d.Invoice
	rows := []core.Row{
		row.New(6).Add(text.NewCol(10, "Total", boldRight), text.NewCol(2, amount(inv.TotalAmount), right)),
		row.New(6).Add(text.NewCol(10, "Paid", boldRight), text.NewCol(2, amount(inv.AmountPaid), right)),
		row.New(6).Add(text.NewCol(10, "Outstanding", boldRight), text.NewCol(2, amount(inv.AmountOutstanding), boldRight)),
	}
	if inv.IsSettled() {
		rows = append(rows, text.NewRow(8, "Paid in full. Thank you.", props.Text{Top: 3, Style: fontstyle.Bold}))
	}
	return rows
}
