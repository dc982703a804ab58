// Package money holds the exact decimal type used for prices and its codec
// against the storage engine's Decimal128 representation.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal128 limits: 34 significant digits, exponent of the integer
// coefficient in [-6176, 6111].
const (
	maxDigits   = 34
	minExponent = -6176
	maxExponent = 6111
)

var maxCoefficient = new(big.Int).Exp(big.NewInt(10), big.NewInt(maxDigits), nil)

var (
	// ErrNotDecimal is reported when a JSON value is neither a string nor a number.
	ErrNotDecimal = errors.New("value is not a decimal string or number")
	// ErrOutOfRange is reported for values with more digits or a larger
	// exponent than a stored price can hold.
	ErrOutOfRange = errors.New("decimal exceeds 34 digits or the decimal128 exponent range")
)

// ParseError describes input that cannot be turned into an Amount.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid decimal %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Amount is an exact decimal number that remembers its scale, so "8.500"
// is rendered back as "8.500" and never as "8.5".
type Amount struct {
	d decimal.Decimal
	// negZero keeps the sign of "-0.00", which decimal.Decimal drops.
	negZero bool
}

// Parse reads a decimal literal. The range is checked on the exponent and
// coefficient before any digits are rendered.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, &ParseError{Input: s, Err: err}
	}

	exp := d.Exponent()
	if exp < minExponent || exp > maxExponent || d.Coefficient().CmpAbs(maxCoefficient) >= 0 {
		return Amount{}, &ParseError{Input: s, Err: ErrOutOfRange}
	}

	return Amount{
		d:       d,
		negZero: d.IsZero() && strings.HasPrefix(s, "-"),
	}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the amount keeping every fractional digit it was parsed with.
func (a Amount) String() string {
	var text string
	if exp := a.d.Exponent(); exp < 0 {
		text = a.d.StringFixed(-exp)
	} else {
		text = a.d.String()
	}
	if a.negZero {
		return "-" + text
	}
	return text
}

// Decimal exposes the underlying value for arithmetic.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// Identical reports whether both amounts have the same digits and scale.
func (a Amount) Identical(b Amount) bool {
	return a.String() == b.String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a JSON string ("8.500") or a JSON number (8.500). For
// numbers the literal text is parsed, so no float64 is involved.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var text string
	switch {
	case len(data) > 0 && data[0] == '"':
		if err := json.Unmarshal(data, &text); err != nil {
			return &ParseError{Input: string(data), Err: err}
		}
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		text = string(data)
	default:
		return &ParseError{Input: string(data), Err: ErrNotDecimal}
	}

	parsed, err := Parse(text)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
