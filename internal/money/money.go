package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a currency value in minor units (cents).
type Amount int64

var (
	ErrTooPrecise   = errors.New("amount has more than two decimal places")
	ErrNotParseable = errors.New("amount is not a valid number")
)

// Parse converts a decimal currency string like "200" or "200.50"
// into minor units. At most two decimal places are accepted.
func Parse(raw string) (Amount, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrNotParseable
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotParseable, raw)
	}
	return FromDecimal(d)
}

// FromDecimal converts a decimal currency value into minor units.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, ErrTooPrecise
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: out of range", ErrNotParseable)
	}
	return Amount(shifted.IntPart()), nil
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// String renders the amount in major units with two decimal places.
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as a JSON number in major units.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return ErrNotParseable
	}
	if len(raw) >= 2 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %s", ErrNotParseable, raw)
		}
		raw = s
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
