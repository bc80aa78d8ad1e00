package conversion_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"vcasino_wallet/internal/conversion"
)

func newPolicy() *conversion.Policy {
	return conversion.NewPolicy(conversion.DefaultRates())
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRoundVcoins(t *testing.T) {
	p := newPolicy()
	cases := []struct {
		amount, want string
	}{
		{"1999", "1000"},
		{"1000", "1000"},
		{"999", "0"},
		{"250000", "250000"},
		{"250999", "250000"},
		{"100001", "100000"},
	}
	for _, c := range cases {
		got := p.RoundVcoins(dec(c.amount))
		assert.True(t, got.Equal(dec(c.want)), "round %s: got %s want %s", c.amount, got, c.want)
	}
}

func TestVcoinsToVdollars(t *testing.T) {
	p := newPolicy()

	quote, err := p.VcoinsToVdollars(dec("250000"), dec("1000000"))
	assert.NoError(t, err)
	assert.True(t, quote.Rounded.Equal(dec("250000")))
	assert.True(t, quote.Remainder.Equal(dec("0")))
	assert.True(t, quote.Credited.Equal(dec("2.50")))

	quote, err = p.VcoinsToVdollars(dec("250999"), dec("1000000"))
	assert.NoError(t, err)
	assert.True(t, quote.Rounded.Equal(dec("250000")))
	assert.True(t, quote.Remainder.Equal(dec("999")))
	assert.True(t, quote.Credited.Equal(dec("2.50")))

	// Truncation, never rounding up: 199000 / 100000 = 1.99
	quote, err = p.VcoinsToVdollars(dec("199999"), dec("1000000"))
	assert.NoError(t, err)
	assert.True(t, quote.Credited.Equal(dec("1.99")))
}

func TestVcoinsToVdollars_Conservation(t *testing.T) {
	p := newPolicy()
	for _, amount := range []string{"100000", "123456", "999999", "678901"} {
		quote, err := p.VcoinsToVdollars(dec(amount), dec("1000000"))
		assert.NoError(t, err)
		// No coins created or destroyed
		assert.True(t, quote.Rounded.Add(quote.Remainder).Equal(dec(amount)))
	}
}

func TestVcoinsToVdollars_BelowMinimum(t *testing.T) {
	p := newPolicy()

	// Funds exist but the amount is under the minimum
	_, err := p.VcoinsToVdollars(dec("50000"), dec("100000"))
	assert.ErrorIs(t, err, conversion.ErrBelowMinimumAmount)

	_, err = p.VcoinsToVdollars(dec("99999"), dec("1000000"))
	assert.ErrorIs(t, err, conversion.ErrBelowMinimumAmount)

	// Exactly the minimum is allowed
	_, err = p.VcoinsToVdollars(dec("100000"), dec("100000"))
	assert.NoError(t, err)
}

func TestVcoinsToVdollars_InsufficientFunds(t *testing.T) {
	p := newPolicy()
	_, err := p.VcoinsToVdollars(dec("100000"), dec("90000"))
	assert.ErrorIs(t, err, conversion.ErrInsufficientFunds)
}

func TestVcoinsToVdollars_InvalidAmount(t *testing.T) {
	p := newPolicy()
	_, err := p.VcoinsToVdollars(dec("-100000"), dec("1000000"))
	assert.ErrorIs(t, err, conversion.ErrInvalidAmount)
	_, err = p.VcoinsToVdollars(dec("0"), dec("1000000"))
	assert.ErrorIs(t, err, conversion.ErrInvalidAmount)
	_, err = p.VcoinsToVdollars(dec("100000.5"), dec("1000000"))
	assert.ErrorIs(t, err, conversion.ErrInvalidAmount)
}

func TestVdollarsToVcoins(t *testing.T) {
	p := newPolicy()

	coins, err := p.VdollarsToVcoins(dec("1.00"), dec("1.00"))
	assert.NoError(t, err)
	assert.True(t, coins.Equal(dec("90000")))

	coins, err = p.VdollarsToVcoins(dec("2.50"), dec("10.00"))
	assert.NoError(t, err)
	assert.True(t, coins.Equal(dec("225000")))
}

func TestVdollarsToVcoins_BelowMinimum(t *testing.T) {
	p := newPolicy()
	_, err := p.VdollarsToVcoins(dec("0.99"), dec("10.00"))
	assert.ErrorIs(t, err, conversion.ErrBelowMinimumAmount)
}

func TestVdollarsToVcoins_InsufficientFunds(t *testing.T) {
	p := newPolicy()
	_, err := p.VdollarsToVcoins(dec("1.00"), dec("0.99"))
	assert.ErrorIs(t, err, conversion.ErrInsufficientFunds)
}

func TestVdollarsToVcoins_InvalidAmount(t *testing.T) {
	p := newPolicy()
	_, err := p.VdollarsToVcoins(dec("1.005"), dec("10.00"))
	assert.ErrorIs(t, err, conversion.ErrInvalidAmount)
	_, err = p.VdollarsToVcoins(dec("-1"), dec("10.00"))
	assert.ErrorIs(t, err, conversion.ErrInvalidAmount)
}

// The 100,000-in / 90,000-out spread makes a round trip lossy by design.
func TestRoundTripIsLossy(t *testing.T) {
	p := newPolicy()
	start := dec("100000")

	quote, err := p.VcoinsToVdollars(start, start)
	assert.NoError(t, err)

	back, err := p.VdollarsToVcoins(quote.Credited, quote.Credited)
	assert.NoError(t, err)

	assert.True(t, back.Add(quote.Remainder).LessThan(start),
		"round trip must lose value: started with %s, came back with %s", start, back)
}
