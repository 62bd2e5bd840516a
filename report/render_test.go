package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/keystone-billing/keystone/internal/money"
	"github.com/keystone-billing/keystone/internal/settings"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Kind:   "Invoice",
		Number: "INV-1150",
		Status: "PARTIAL",
		Company: settings.Letterhead{
			Name:    "Keystone Builders",
			Address: "200 Quarry Rd, Bozeman MT",
			Phone:   "(406) 555-0148",
		},
		ProjectName: "Northside Duplex",
		Client:      "Hartwell Homes",
		DateIssued:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DateDue:     time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Lines: []SnapshotLine{
			{Description: "Framing labor", Quantity: decimal.NewFromInt(250), UnitRate: money.MustParse("50.00"), Total: money.MustParse("12500.00")},
			{Description: "Lumber package", Quantity: decimal.NewFromInt(1), UnitRate: money.MustParse("150.00"), Total: money.MustParse("150.00")},
		},
		Subtotal:    money.MustParse("12650.00"),
		TaxRate:     decimal.RequireFromString("0.0875"),
		TaxAmount:   money.MustParse("1106.88"),
		Total:       money.MustParse("13756.88"),
		PaidAmount:  money.MustParse("5000.00"),
		BalanceDue:  money.MustParse("8756.88"),
		ShowBalance: true,
		Notes:       "Net 30. Retainage released on final inspection.",
	}
}

func TestRenderHTMLFormatsAmounts(t *testing.T) {
	html, err := RenderHTML(sampleSnapshot())
	require.NoError(t, err)

	require.Contains(t, html, "Invoice INV-1150")
	require.Contains(t, html, "Keystone Builders")
	require.Contains(t, html, "Framing labor")
	require.Contains(t, html, "$12,500.00", "amounts carry grouping separators")
	require.Contains(t, html, "$13,756.88")
	require.Contains(t, html, "8.75%")
	require.Contains(t, html, "Balance due")
	require.Contains(t, html, "March 1, 2026")
}

func TestRenderHTMLEstimateHidesBalance(t *testing.T) {
	snap := sampleSnapshot()
	snap.Kind = "Estimate"
	snap.Number = "EST-0042"
	snap.ShowBalance = false

	html, err := RenderHTML(snap)
	require.NoError(t, err)
	require.Contains(t, html, "Estimate EST-0042")
	require.NotContains(t, html, "Balance due")
}

func TestRenderHTMLEscapesUserContent(t *testing.T) {
	snap := sampleSnapshot()
	snap.Lines[0].Description = `<script>alert("x")</script>`

	html, err := RenderHTML(snap)
	require.NoError(t, err)
	require.NotContains(t, html, "<script>alert")
	require.True(t, strings.Contains(html, "&lt;script&gt;"))
}
