package robotorder

import (
	"io"
	"robotorder/lib/orders"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	// footers hold file names, upper casing would name files that do not exist
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// WriteSummary renders one row per processed order.
func WriteSummary(w io.Writer, report Report) {
	t := newTable(w)
	t.SetTitle("run " + report.RunId)
	t.AppendHeader(table.Row{"Order number", "Receipt code", "Attempts", "Receipt", "Preview"})
	for _, r := range report.Results {
		t.AppendRow(table.Row{r.Order.Number, r.ReceiptCode, r.Attempts, r.ReceiptPath, r.PreviewPath})
	}
	if report.Archive != "" {
		t.AppendFooter(table.Row{"Archive", report.Archive, "", "", ""})
	}
	t.Render()
}

// WriteOrders renders the order sequence as read from the order file.
func WriteOrders(w io.Writer, list []orders.Order) {
	t := newTable(w)
	t.AppendHeader(table.Row{orders.ColumnNumber, orders.ColumnHead, orders.ColumnBody, orders.ColumnLegs, orders.ColumnAddress})
	for _, o := range list {
		t.AppendRow(table.Row{o.Number, o.Head, o.Body, o.Legs, o.Address})
	}
	t.Render()
}
