// Package report renders estimate and invoice snapshots to HTML and,
// through Gotenberg, to PDF. The billing services hand it fully
// resolved snapshots; no markup lives outside this package.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/keystone-billing/keystone/internal/money"
	"github.com/keystone-billing/keystone/internal/settings"
)

// SnapshotLine is one resolved document line.
type SnapshotLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitRate    money.Money
	Total       money.Money
}

// Snapshot is a fully resolved document ready for rendering. All
// derived amounts are computed by the owning service before handoff.
type Snapshot struct {
	Kind        string
	Number      string
	Status      string
	Company     settings.Letterhead
	ProjectName string
	Client      string
	DateIssued  time.Time
	DateDue     time.Time
	Lines       []SnapshotLine
	Subtotal    money.Money
	TaxRate     decimal.Decimal
	TaxAmount   money.Money
	Total       money.Money
	PaidAmount  money.Money
	BalanceDue  money.Money
	ShowBalance bool
	Notes       string
}

var printer = message.NewPrinter(language.AmericanEnglish)

// formatAmount renders an amount with grouping separators, e.g.
// "$12,500.00". Display formatting only; arithmetic stays decimal.
func formatAmount(m money.Money) string {
	f, _ := m.Decimal().Float64()
	return printer.Sprintf("$%v", number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

func formatPercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String() + "%"
}

var documentTemplate = template.Must(template.New("document").Funcs(template.FuncMap{
	"amount":  formatAmount,
	"percent": formatPercent,
	"date":    func(t time.Time) string { return t.Format("January 2, 2006") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Kind}} {{.Number}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 2.5em; }
h1 { font-size: 1.5em; margin-bottom: 0; }
.meta { color: #555; margin-bottom: 2em; }
table { width: 100%; border-collapse: collapse; }
th, td { text-align: left; padding: 0.4em 0.6em; border-bottom: 1px solid #ddd; }
th.num, td.num { text-align: right; }
.totals { margin-top: 1.5em; width: 40%; margin-left: auto; }
.totals td { border: none; }
.totals .grand { font-weight: bold; border-top: 2px solid #1a1a1a; }
.notes { margin-top: 2em; color: #555; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Company.Name}}</h1>
<div class="meta">
{{if .Company.Address}}{{.Company.Address}}<br>{{end}}
{{if .Company.Phone}}{{.Company.Phone}}<br>{{end}}
</div>
<h2>{{.Kind}} {{.Number}}</h2>
<div class="meta">
Project: {{.ProjectName}}{{if .Client}} &mdash; {{.Client}}{{end}}<br>
Issued: {{date .DateIssued}}{{if not .DateDue.IsZero}} &middot; Due: {{date .DateDue}}{{end}}<br>
Status: {{.Status}}
</div>
<table>
<thead><tr><th>Description</th><th class="num">Qty</th><th class="num">Rate</th><th class="num">Amount</th></tr></thead>
<tbody>
{{range .Lines}}<tr><td>{{.Description}}</td><td class="num">{{.Quantity}}</td><td class="num">{{amount .UnitRate}}</td><td class="num">{{amount .Total}}</td></tr>
{{end}}</tbody>
</table>
<table class="totals">
<tr><td>Subtotal</td><td class="num">{{amount .Subtotal}}</td></tr>
<tr><td>Tax ({{percent .TaxRate}})</td><td class="num">{{amount .TaxAmount}}</td></tr>
<tr class="grand"><td>Total</td><td class="num">{{amount .Total}}</td></tr>
{{if .ShowBalance}}<tr><td>Paid</td><td class="num">{{amount .PaidAmount}}</td></tr>
<tr><td>Balance due</td><td class="num">{{amount .BalanceDue}}</td></tr>{{end}}
</table>
{{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
</body>
</html>
`))

// RenderHTML renders a snapshot to an HTML document.
func RenderHTML(snap Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, snap); err != nil {
		return "", fmt.Errorf("render %s %s: %w", snap.Kind, snap.Number, err)
	}
	return buf.String(), nil
}
