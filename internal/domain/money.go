package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, cur currency.Unit) Money {
	return Money{Amount: amount, Currency: cur}
}

func ZeroMoney(cur currency.Unit) Money {
	return Money{Amount: decimal.Zero, Currency: cur}
}

// Add keeps the currency of m; callers only ever mix amounts of one currency.
func (m Money) Add(b Money) Money {
	return Money{Amount: m.Amount.Add(b.Amount), Currency: m.Currency}
}

func (m Money) Mul(factor int64) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(factor)), Currency: m.Currency}
}

// ApplyRate returns m × rate rounded to the currency minor unit.
func (m Money) ApplyRate(rate decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(rate), Currency: m.Currency}.Round()
}

func (m Money) Round() Money {
	return Money{Amount: m.Amount.Round(m.Scale()), Currency: m.Currency}
}

// Scale is the number of minor-unit digits of the currency, 2 for BRL.
func (m Money) Scale() int32 {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return int32(scale)
}

func (m Money) Equal(b Money) bool {
	return m.Currency == b.Currency && m.Amount.Equal(b.Amount)
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Format renders the amount as "<symbol> <number>" using the number
// conventions of tag, e.g. "R$ 1.234,50" for pt-BR. Digits come from the
// decimal itself so large amounts print exactly.
func (m Money) Format(tag language.Tag) string {
	p := message.NewPrinter(tag)
	rounded := m.Round().Amount
	scale := m.Scale()

	symbol := p.Sprint(currency.Symbol(m.Currency))

	whole, frac, _ := strings.Cut(rounded.Abs().StringFixed(scale), ".")
	intPart, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return symbol + " " + rounded.StringFixed(scale)
	}

	amount := p.Sprint(number.Decimal(intPart))
	if frac != "" {
		amount += decimalSeparator(p) + frac
	}
	if rounded.IsNegative() {
		amount = "-" + amount
	}

	return symbol + " " + amount
}

// decimalSeparator is the locale separator between the integer and fraction digits.
func decimalSeparator(p *message.Printer) string {
	s := p.Sprint(number.Decimal(1.5, number.Scale(1)))
	return s[1 : len(s)-1]
}
