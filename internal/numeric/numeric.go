// Package numeric converts monetary values between shopspring decimals, Postgres
// numeric(12,2) columns and their JSON wire form.
package numeric

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	Scale            int32 = 2
	MaxIntegerDigits int32 = 10
)

var (
	ErrNull     = errors.New("numeric is null")
	ErrNaN      = errors.New("numeric is NaN")
	ErrInfinity = errors.New("numeric is infinite")
)

var upperBound = decimal.New(1, MaxIntegerDigits)

func ToPgNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:   new(big.Int).Set(d.Coefficient()),
		Exp:   d.Exponent(),
		Valid: true,
	}
}

func FromPgNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	switch {
	case !n.Valid:
		return decimal.Zero, ErrNull
	case n.NaN:
		return decimal.Zero, ErrNaN
	case n.InfinityModifier != pgtype.Finite:
		return decimal.Zero, ErrInfinity
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

// IsMoney reports whether d is storable as numeric(12,2) without rounding.
func IsMoney(d decimal.Decimal) bool {
	if d.IsNegative() {
		return false
	}
	if !d.Equal(d.Truncate(Scale)) {
		return false
	}
	return d.LessThan(upperBound)
}

// Money is the wire form of an amount: a bare JSON number with two fractional digits.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(Scale)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("failed parsing money with error=%w", err)
	}
	m.Decimal = d
	return nil
}

func (m Money) String() string {
	return m.StringFixed(Scale)
}
