package filter

import (
	"fmt"
	"strings"
)

// Option configures filter construction.
type Option func(*options)

type options struct {
	angular AngularFrequencyFunc
}

func defaultOptions() options {
	return options{angular: LiteralAngularFrequency}
}

// WithAngularFrequency replaces the angular-frequency step of the
// second-order variant. It has no effect on FirstOrder filters.
// A nil fn keeps the default.
func WithAngularFrequency(fn AngularFrequencyFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.angular = fn
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Names accepted by AngularFrequencyByName.
const (
	AngularLiteral    = "literal"
	AngularNormalized = "normalized"
)

// AngularFrequencyByName resolves a configured angle construction. The empty
// name selects the literal default.
func AngularFrequencyByName(name string) (AngularFrequencyFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AngularLiteral:
		return LiteralAngularFrequency, nil
	case AngularNormalized:
		return NormalizedAngularFrequency, nil
	default:
		return nil, fmt.Errorf("filter: unknown angular frequency %q", name)
	}
}
