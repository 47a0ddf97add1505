package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	"github.com/Alturino/shopping-cart/internal/numeric"
)

const (
	TagMoney    = "money"
	TagCurrency = "currency"
)

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	v.RegisterCustomTypeFunc(DecimalValue, decimal.Decimal{}, numeric.Money{})
	// registration only fails on an empty tag or a nil func
	_ = v.RegisterValidation(TagMoney, ValidateMoney)
	_ = v.RegisterValidation(TagCurrency, ValidateCurrency)
	return &Validator{validate: v}
}

// Struct validates s and reports every failed field, in declaration order, as a
// *errors.ValidationError.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("failed validating request with error=%w", err)
	}
	violations := make([]inErrors.Violation, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		field := fieldName(fieldErr)
		violations = append(violations, inErrors.Violation{
			Field:   field,
			Rule:    fieldErr.Tag(),
			Message: message(field, fieldErr),
		})
	}
	return inErrors.NewValidationError(violations...)
}

// DecimalValue exposes decimals to the validator as their string form.
func DecimalValue(v reflect.Value) interface{} {
	switch d := v.Interface().(type) {
	case decimal.Decimal:
		return d.String()
	case numeric.Money:
		return d.Decimal.String()
	default:
		return nil
	}
}

func ValidateMoney(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	return numeric.IsMoney(d)
}

func ValidateCurrency(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return currencyRegex.MatchString(value)
}

func jsonName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

// fieldName drops the root struct from the namespace, CreateShoppingCart.items[0].name
// becomes items[0].name.
func fieldName(fieldErr validator.FieldError) string {
	namespace := fieldErr.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func moneyMessage(field string) string {
	return fmt.Sprintf("%s must be a non-negative amount with at most 2 decimal places", field)
}

// MoneyViolation reports an amount derived after validation that does not fit the money rule.
func MoneyViolation(field string) inErrors.Violation {
	return inErrors.Violation{Field: field, Rule: TagMoney, Message: moneyMessage(field)}
}

func message(field string, fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", field)
	case TagMoney:
		return moneyMessage(field)
	case TagCurrency:
		return fmt.Sprintf("%s must be a 3 letter uppercase ISO 4217 code", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a UUID", field)
	case "gte", "min":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("%s must be longer than or equal to %s characters", field, fieldErr.Param())
		}
		return fmt.Sprintf("%s must not be less than %s", field, fieldErr.Param())
	case "lte", "max":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("%s must be shorter than or equal to %s characters", field, fieldErr.Param())
		}
		return fmt.Sprintf("%s must not be greater than %s", field, fieldErr.Param())
	default:
		return fmt.Sprintf("%s failed on the %s rule", field, fieldErr.Tag())
	}
}
