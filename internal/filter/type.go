package filter

import (
	"fmt"
	"strings"
)

// Type selects the low-pass variant owned by a LowPassFilter.
// The zero value is FirstOrder.
type Type uint8

const (
	FirstOrder Type = iota
	SecondOrder
)

func (t Type) String() string {
	switch t {
	case FirstOrder:
		return "first_order"
	case SecondOrder:
		return "second_order"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the declared variants.
func (t Type) Valid() bool {
	return t == FirstOrder || t == SecondOrder
}

// ParseType accepts "first_order", "first", "1" and the second-order
// equivalents, case-insensitively.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first_order", "first-order", "first", "1":
		return FirstOrder, nil
	case "second_order", "second-order", "second", "2":
		return SecondOrder, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFilterType, s)
}

func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFilterType, uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
