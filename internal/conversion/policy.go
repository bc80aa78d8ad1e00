package conversion

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrBelowMinimumAmount = errors.New("amount is below the minimum convertible amount")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("amount must be a positive value")
)

// Rates holds the conversion constants. The spread between BuyRate (VCoins
// per VDollar bought) and SellRate (VCoins per VDollar sold) is the
// platform's fee.
type Rates struct {
	BuyRate      decimal.Decimal
	SellRate     decimal.Decimal
	RoundingStep decimal.Decimal
	MinVcoins    decimal.Decimal
	MinVdollars  decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{
		BuyRate:      decimal.NewFromInt(100000),
		SellRate:     decimal.NewFromInt(90000),
		RoundingStep: decimal.NewFromInt(1000),
		MinVcoins:    decimal.NewFromInt(100000),
		MinVdollars:  decimal.NewFromInt(1),
	}
}

// Policy computes conversion outcomes. Truncation is always toward zero.
type Policy struct {
	rates Rates
}

func NewPolicy(rates Rates) *Policy {
	return &Policy{rates: rates}
}

// VcoinsQuote is the settled outcome of a VCoin->VDollar conversion:
// Rounded is consumed, Remainder stays on the account, Credited lands on
// the wallet.
type VcoinsQuote struct {
	Rounded   decimal.Decimal
	Remainder decimal.Decimal
	Credited  decimal.Decimal
}

func (p *Policy) VcoinsToVdollars(amount, accountBalance decimal.Decimal) (VcoinsQuote, error) {
	if amount.Sign() <= 0 || !amount.IsInteger() {
		return VcoinsQuote{}, ErrInvalidAmount
	}
	if amount.Cmp(p.rates.MinVcoins) < 0 {
		return VcoinsQuote{}, ErrBelowMinimumAmount
	}
	if amount.Cmp(accountBalance) > 0 {
		return VcoinsQuote{}, ErrInsufficientFunds
	}

	rounded := p.RoundVcoins(amount)
	if rounded.Sign() == 0 {
		return VcoinsQuote{}, ErrBelowMinimumAmount
	}

	return VcoinsQuote{
		Rounded:   rounded,
		Remainder: amount.Sub(rounded),
		Credited:  rounded.Div(p.rates.BuyRate).Truncate(2),
	}, nil
}

func (p *Policy) VdollarsToVcoins(amount, walletBalance decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 || !amount.Equal(amount.Truncate(2)) {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.Cmp(p.rates.MinVdollars) < 0 {
		return decimal.Zero, ErrBelowMinimumAmount
	}
	if amount.Cmp(walletBalance) > 0 {
		return decimal.Zero, ErrInsufficientFunds
	}
	return amount.Mul(p.rates.SellRate), nil
}

// RoundVcoins rounds down to the nearest rounding step.
func (p *Policy) RoundVcoins(amount decimal.Decimal) decimal.Decimal {
	return amount.Sub(amount.Mod(p.rates.RoundingStep))
}
