package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestArithmeticIsExact(t *testing.T) {
	a := MustParse("0.10")
	b := MustParse("0.20")
	require.Equal(t, "0.30", a.Add(b).String())

	sum := Zero
	for i := 0; i < 100; i++ {
		sum = sum.Add(MustParse("0.01"))
	}
	require.Equal(t, "1.00", sum.String())
	require.True(t, sum.Equal(FromCents(100)))
}

func TestMulQuantityRoundsPerLine(t *testing.T) {
	rate := MustParse("0.333")
	qty := decimal.NewFromInt(3)
	// 0.333 * 3 = 0.999 -> 1.00 half-up at the minor unit
	require.Equal(t, "1.00", rate.MulQuantity(qty).String())

	require.Equal(t, "500.00", MustParse("50.00").MulQuantity(decimal.NewFromInt(10)).String())
}

func TestPercentOfRoundsHalfUp(t *testing.T) {
	total := MustParse("333.33")
	require.Equal(t, "250.00", total.PercentOf(decimal.NewFromInt(75)).String())
	require.Equal(t, "83.33", total.PercentOf(decimal.NewFromInt(25)).String())

	// 10.05 * 50% = 5.025 -> 5.03 half-up
	require.Equal(t, "5.03", MustParse("10.05").PercentOf(decimal.NewFromInt(50)).String())
}

func TestRateOf(t *testing.T) {
	subtotal := MustParse("500.00")
	rate := decimal.RequireFromString("0.0875")
	require.Equal(t, "43.75", subtotal.RateOf(rate).String())
}

func TestCompare(t *testing.T) {
	require.True(t, MustParse("1.00").GreaterThan(MustParse("0.99")))
	require.True(t, MustParse("-0.01").IsNegative())
	require.True(t, Zero.IsZero())
	require.Equal(t, 0, MustParse("5.50").Cmp(FromCents(550)))
}

func TestJSONRoundTrip(t *testing.T) {
	m := MustParse("543.75")
	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, `"543.75"`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, m.Equal(back))

	var fromNumber Money
	require.NoError(t, json.Unmarshal([]byte(`300`), &fromNumber))
	require.Equal(t, "300.00", fromNumber.String())
}

func TestScanValue(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("243.75"))
	require.Equal(t, "243.75", m.String())

	v, err := m.Value()
	require.NoError(t, err)
	require.Equal(t, "243.75", v)
}
