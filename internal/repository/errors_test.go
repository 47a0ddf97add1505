package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantField string
		wantRule  string
		wantIs    error
	}{
		{
			name:   "unique violation",
			err:    &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "ux_shopping_cart_item_cart_product"},
			wantIs: inErrors.ErrConflict,
		},
		{
			name:      "check violation",
			err:       &pgconn.PgError{Code: codeCheckViolation, TableName: "shopping_cart_item", ConstraintName: "shopping_cart_item_quantity_check"},
			wantField: "quantity",
			wantRule:  "check",
			wantIs:    inErrors.ErrValidation,
		},
		{
			name:      "numeric overflow",
			err:       fmt.Errorf("failed inserting items with error=%w", &pgconn.PgError{Code: codeNumericOutOfRange}),
			wantField: fieldNumeric,
			wantRule:  "range",
			wantIs:    inErrors.ErrValidation,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := translateError(test.err)
			assert.ErrorIs(t, err, test.wantIs)
			if test.wantField == "" {
				return
			}
			var validationErr *inErrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Len(t, validationErr.Violations, 1)
			assert.Equal(t, test.wantField, validationErr.Violations[0].Field)
			assert.Equal(t, test.wantRule, validationErr.Violations[0].Rule)
		})
	}
}

func TestTranslateErrorPassesThrough(t *testing.T) {
	err := errors.New("connection reset")
	assert.Same(t, err, translateError(err))
}
