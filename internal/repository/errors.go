package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
)

const (
	codeUniqueViolation   = "23505"
	codeCheckViolation    = "23514"
	codeNumericOutOfRange = "22003"

	fieldNumeric = "numeric"
)

var checkColumns = map[string]string{
	"subtotal":    "subtotal",
	"tax":         "tax",
	"shipping":    "shipping",
	"total":       "total",
	"quantity":    "quantity",
	"unit_price":  "unitPrice",
	"total_price": "totalPrice",
	"amount":      "amount",
}

// translateError maps constraint violations and numeric overflows reported by Postgres to the
// error taxonomy and leaves every other error untouched.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return &inErrors.ConflictError{Constraint: pgErr.ConstraintName, Detail: pgErr.Detail}
	case codeCheckViolation:
		field := checkField(pgErr.TableName, pgErr.ConstraintName)
		return inErrors.NewValidationError(inErrors.Violation{
			Field:   field,
			Rule:    "check",
			Message: field + " is out of range",
		})
	case codeNumericOutOfRange:
		return inErrors.NewValidationError(inErrors.Violation{
			Field:   fieldNumeric,
			Rule:    "range",
			Message: "a numeric value is out of range",
		})
	default:
		return err
	}
}

// checkField recovers the column from a generated name such as shopping_cart_item_quantity_check.
func checkField(table string, constraint string) string {
	column := strings.TrimSuffix(constraint, "_check")
	column = strings.TrimPrefix(column, table+"_")
	if field, ok := checkColumns[column]; ok {
		return field
	}
	return column
}
