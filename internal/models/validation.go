package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ValidationError reports a missing or malformed input field. It is a client
// error and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Bounds of the INTEGER quantity and DECIMAL(10,2) money columns.
const MaxQuantity = math.MaxInt32

var MaxAmount = decimal.RequireFromString("99999999.99")

// ValidateQuantity accepts 1..MaxQuantity.
func ValidateQuantity(field string, quantity int) error {
	switch {
	case quantity <= 0:
		return NewValidationError(field, "must be greater than zero")
	case quantity > MaxQuantity:
		return NewValidationError(field, fmt.Sprintf("must not exceed %d", MaxQuantity))
	}
	return nil
}

// ValidateAmount accepts a non-negative amount in whole cents that fits a
// money column. Anything the column would round or reject is refused here.
func ValidateAmount(field string, amount decimal.Decimal) error {
	switch {
	case amount.IsNegative():
		return NewValidationError(field, "must not be negative")
	case !amount.Equal(amount.Round(2)):
		return NewValidationError(field, "must not have more than two decimal places")
	case amount.GreaterThan(MaxAmount):
		return NewValidationError(field, "must not exceed "+MaxAmount.StringFixed(2))
	}
	return nil
}
