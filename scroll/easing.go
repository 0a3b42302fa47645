package scroll

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// EasingFunc maps normalized progress in [0,1] to an eased progress value.
type EasingFunc func(p float64) float64

const (
	EaseOutSine    = "easeOutSine"
	EaseInOutSine  = "easeInOutSine"
	EaseInOutQuint = "easeInOutQuint"
)

// Equations from https://github.com/danro/easing-js
var easings = map[string]EasingFunc{
	EaseOutSine: func(p float64) float64 {
		return math.Sin(p * (math.Pi / 2))
	},
	EaseInOutSine: func(p float64) float64 {
		return -0.5 * (math.Cos(math.Pi*p) - 1)
	},
	EaseInOutQuint: func(p float64) float64 {
		q := p / 0.5
		if q < 1 {
			return 0.5 * math.Pow(q, 5)
		}
		return 0.5 * (math.Pow(q-2, 5) + 2)
	},
}

// Easing returns the easing function registered under name.
func Easing(name string) (EasingFunc, error) {
	fn, ok := easings[name]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "unknown easing %q", name)
	}
	return fn, nil
}

// ValidEasing reports whether name is a supported easing.
func ValidEasing(name string) bool {
	_, ok := easings[name]
	return ok
}

// EasingNames returns the supported easing names in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
