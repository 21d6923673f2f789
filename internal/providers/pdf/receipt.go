// Package pdf renders customer-facing documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	saledomain "github.com/tillworks/tillpos/internal/sale/domain"
)

// ReceiptData carries everything a printed receipt shows.
type ReceiptData struct {
	StoreName string
	Footer    string
	Sale      saledomain.Sale
}

// Provider renders sale receipts.
type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

type receiptProvider struct{}

func NewProvider() Provider {
	return &receiptProvider{}
}

func (p *receiptProvider) GenerateReceipt(_ context.Context, data ReceiptData) (io.Reader, error) {
	cfg := config.NewBuilder().Build()
	m := maroto.New(cfg)

	sale := data.Sale

	m.AddRow(20,
		text.NewCol(8, data.StoreName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "Receipt", props.Text{
			Size:  12,
			Align: align.Right,
		}),
	)

	m.AddRow(16,
		col.New(12).Add(
			text.New("Sale: "+sale.ID.String(), props.Text{Top: 0, Size: 9}),
			text.New("Date: "+sale.CreatedAt.Format("2006-01-02 15:04"), props.Text{Top: 4, Size: 9}),
			text.New("Paid by: "+sale.PaymentMethod, props.Text{Top: 8, Size: 9}),
		),
	)

	m.AddRow(8,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, item := range sale.Items {
		m.AddRow(8,
			text.NewCol(6, item.ProductName, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.UnitPrice, sale.Currency), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.LineTotal, sale.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, money(sale.Subtotal, sale.Currency), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Tax", props.Text{Size: 9}),
		text.NewCol(2, money(sale.TaxAmount, sale.Currency), props.Text{Size: 9, Align: align.Right}),
	)
	if sale.DiscountAmount > 0 {
		m.AddRow(8,
			col.New(8),
			text.NewCol(2, "Discount", props.Text{Size: 9}),
			text.NewCol(2, "-"+money(sale.DiscountAmount, sale.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, money(sale.Total, sale.Currency), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	if sale.Refunded() {
		m.AddRow(10,
			text.NewCol(12, "REFUNDED", props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Center}),
		)
	}
	if data.Footer != "" {
		m.AddRow(12,
			text.NewCol(12, data.Footer, props.Text{Size: 8, Align: align.Center, Top: 4}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func money(v float64, currency string) string {
	return fmt.Sprintf("%.2f %s", v, currency)
}
