package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrInvoiceUnpaid is returned for orders that have not been paid
var ErrInvoiceUnpaid = shared.NewDomainError("INVALID_STATE", "An invoice is available once the order is paid")

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// InvoiceRenderer produces the PDF invoice of a paid order
type InvoiceRenderer struct {
	pdf       PDFRenderer
	tmpl      *template.Template
	storeName string
	symbol    string
	printer   *message.Printer
	title     cases.Caser
	loc       *time.Location
}

// NewInvoiceRenderer creates the renderer for currencyCode (ISO 4217).
// Amounts use en-IN digit grouping.
func NewInvoiceRenderer(pdf PDFRenderer, storeName, currencyCode string) (*InvoiceRenderer, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice currency %q: %w", currencyCode, err)
	}
	symbol, ok := currencySymbols[unit.String()]
	if !ok {
		symbol = unit.String() + " "
	}
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.UTC
	}

	r := &InvoiceRenderer{
		pdf:       pdf,
		storeName: storeName,
		symbol:    symbol,
		printer:   message.NewPrinter(language.MustParse("en-IN")),
		title:     cases.Title(language.English),
		loc:       loc,
	}
	r.tmpl, err = template.New("invoice").Funcs(template.FuncMap{
		"money": r.money,
		"date":  r.date,
		"title": r.title.String,
	}).Parse(invoiceTemplate)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplate, "invoice template does not parse", err)
	}
	return r, nil
}

// Invoice renders o to PDF
func (r *InvoiceRenderer) Invoice(ctx context.Context, o *order.Order) ([]byte, error) {
	html, err := r.HTML(o)
	if err != nil {
		return nil, err
	}
	res, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      "Invoice " + o.OrderNumber,
		FooterHTML: invoiceFooter,
	})
	if err != nil {
		return nil, err
	}
	return res.PDFData, nil
}

// HTML renders the invoice document
func (r *InvoiceRenderer) HTML(o *order.Order) (string, error) {
	if !o.IsPaid() {
		return "", ErrInvoiceUnpaid
	}
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, struct {
		Store string
		Order *order.Order
	}{r.storeName, o})
	if err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to render invoice", err)
	}
	return buf.String(), nil
}

func (r *InvoiceRenderer) money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return r.symbol + r.printer.Sprint(number.Decimal(f, number.Scale(2)))
}

func (r *InvoiceRenderer) date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(r.loc).Format("02 Jan 2006")
}

const invoiceFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#888">
Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

const invoiceTemplate = `<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>Invoice {{.Order.OrderNumber}}</title>
<style>
body{font-family:"Helvetica Neue",Arial,sans-serif;font-size:12px;color:#222}
h1{font-size:20px;margin:0 0 4px}
table{width:100%;border-collapse:collapse;margin-top:16px}
th,td{padding:6px 8px;border-bottom:1px solid #ddd;text-align:left}
td.num,th.num{text-align:right}
.cols{display:flex;justify-content:space-between;margin-top:16px}
.totals td{border:none}
.grand td{font-weight:bold;border-top:2px solid #222}
</style></head>
<body>
<h1>{{.Store}}</h1>
<div>Tax invoice for order <strong>{{.Order.OrderNumber}}</strong></div>
<div>Paid on {{date .Order.PaidAt}}</div>
<div class="cols">
  <div><strong>Ship to</strong><br>{{with .Order.Address}}{{.FullName}}<br>{{.Address}}{{if .Apartment}}, {{.Apartment}}{{end}}<br>{{.City}}, {{.State}} {{.ZipCode}}<br>{{.Phone}}{{end}}</div>
  <div><strong>Bill to</strong><br>{{with .Order.BillingAddress}}{{.FullName}}<br>{{.Address}}{{if .Apartment}}, {{.Apartment}}{{end}}<br>{{.City}}, {{.State}} {{.ZipCode}}<br>{{.Email}}{{end}}</div>
</div>
<table>
<thead><tr><th>Item</th><th>Variant</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Amount</th></tr></thead>
<tbody>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td>{{.Color}}{{if and .Color .Size}} / {{end}}{{.Size}}</td><td class="num">{{.Quantity}}</td><td class="num">{{money .UnitPrice}}</td><td class="num">{{money .LineTotal}}</td></tr>
{{end}}</tbody>
</table>
<table class="totals">
<tr><td>Subtotal</td><td class="num">{{money .Order.Subtotal}}</td></tr>
<tr><td>Shipping ({{title .Order.ShippingInfo.CourierName}})</td><td class="num">{{money .Order.ShippingAmount}}</td></tr>
<tr><td>GST</td><td class="num">{{money .Order.TaxAmount}}</td></tr>
<tr class="grand"><td>Total</td><td class="num">{{money .Order.TotalAmount}}</td></tr>
</table>
</body></html>`
