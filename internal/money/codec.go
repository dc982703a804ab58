package money

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errInexact = errors.New("value cannot be stored exactly as decimal128")

// ToStorage converts an amount to Decimal128 through its text form. Values
// that Decimal128 can only approximate are rejected.
func ToStorage(a Amount) (primitive.Decimal128, error) {
	text := a.String()
	d, err := primitive.ParseDecimal128(text)
	if err != nil {
		return primitive.Decimal128{}, &ParseError{Input: text, Err: err}
	}
	if back, err := FromStorage(d); err != nil || !back.Identical(a) {
		return primitive.Decimal128{}, &ParseError{Input: text, Err: errInexact}
	}
	return d, nil
}

// FromStorage converts a stored Decimal128 back to an amount.
func FromStorage(d primitive.Decimal128) (Amount, error) {
	return Parse(d.String())
}
