package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	"github.com/Alturino/shopping-cart/internal/numeric"
)

type line struct {
	Code     *string          `json:"code"     validate:"omitnil,min=1,max=64"`
	Price    *decimal.Decimal `json:"price"    validate:"required,money"`
	Quantity int32            `json:"quantity" validate:"gte=1"`
}

type order struct {
	Amount   numeric.Money `json:"amount"   validate:"money"`
	ID       string        `json:"id"       validate:"omitempty,uuid"`
	Currency string        `json:"currency" validate:"required,currency"`
	Lines    []line        `json:"lines"    validate:"required,dive"`
}

func ptr[T any](v T) *T {
	return &v
}

func TestValidatorStruct(t *testing.T) {
	v := New()

	t.Run("valid", func(t *testing.T) {
		err := v.Struct(order{
			Amount:   numeric.NewMoney(decimal.RequireFromString("10.50")),
			ID:       "3d5e67a5-0df5-4c08-9ad0-5f7c1c57c3d4",
			Currency: "USD",
			Lines: []line{
				{Price: ptr(decimal.Zero), Quantity: 1},
				{Price: ptr(decimal.RequireFromString("129.99")), Quantity: 2, Code: ptr("WELCOME10")},
			},
		})
		assert.NoError(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		err := v.Struct(order{
			Amount:   numeric.NewMoney(decimal.RequireFromString("-1")),
			ID:       "not-a-uuid",
			Currency: "US",
			Lines: []line{
				{Price: ptr(decimal.RequireFromString("1.001")), Quantity: 0, Code: ptr("")},
				{Quantity: 1},
			},
		})

		var validationErr *inErrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.ErrorIs(t, err, inErrors.ErrValidation)

		expected := []inErrors.Violation{
			{
				Field:   "amount",
				Rule:    TagMoney,
				Message: "amount must be a non-negative amount with at most 2 decimal places",
			},
			{Field: "id", Rule: "uuid", Message: "id must be a UUID"},
			{
				Field:   "currency",
				Rule:    TagCurrency,
				Message: "currency must be a 3 letter uppercase ISO 4217 code",
			},
			{
				Field:   "lines[0].code",
				Rule:    "min",
				Message: "lines[0].code must be longer than or equal to 1 characters",
			},
			{
				Field:   "lines[0].price",
				Rule:    TagMoney,
				Message: "lines[0].price must be a non-negative amount with at most 2 decimal places",
			},
			{
				Field:   "lines[0].quantity",
				Rule:    "gte",
				Message: "lines[0].quantity must not be less than 1",
			},
			{
				Field:   "lines[1].price",
				Rule:    "required",
				Message: "lines[1].price should not be empty",
			},
		}
		assert.Equal(t, expected, validationErr.Violations)
	})
}
