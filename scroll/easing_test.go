package scroll

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

const tolerance = 1e-9

func TestEasingBoundaries(t *testing.T) {
	for _, name := range EasingNames() {
		fn, err := Easing(name)
		if err != nil {
			t.Fatalf("Easing(%q): %v", name, err)
		}
		if got := fn(0); math.Abs(got) > tolerance {
			t.Errorf("%s(0) = %v, expected 0", name, got)
		}
		if got := fn(1); math.Abs(got-1) > tolerance {
			t.Errorf("%s(1) = %v, expected 1", name, got)
		}
	}
}

func TestEasingValues(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		want float64
	}{
		{EaseOutSine, 0.5, math.Sin(math.Pi / 4)},
		{EaseInOutSine, 0.5, 0.5},
		{EaseInOutQuint, 0.5, 0.5},
		{EaseInOutQuint, 0.25, 0.5 * math.Pow(0.5, 5)},
		{EaseInOutQuint, 0.75, 0.5 * (math.Pow(-0.5, 5) + 2)},
	}

	for _, tt := range tests {
		fn, err := Easing(tt.name)
		if err != nil {
			t.Fatalf("Easing(%q): %v", tt.name, err)
		}
		if got := fn(tt.p); math.Abs(got-tt.want) > tolerance {
			t.Errorf("%s(%v) = %v, expected %v", tt.name, tt.p, got, tt.want)
		}
	}
}

func TestEasingMonotonic(t *testing.T) {
	for _, name := range EasingNames() {
		fn, _ := Easing(name)
		prev := fn(0)
		for i := 1; i <= 100; i++ {
			cur := fn(float64(i) / 100)
			if cur < prev-tolerance {
				t.Errorf("%s decreases at p=%v: %v < %v", name, float64(i)/100, cur, prev)
				break
			}
			prev = cur
		}
	}
}

func TestEasingUnknown(t *testing.T) {
	_, err := Easing("bogus")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if ValidEasing("bogus") {
		t.Error("expected bogus to be invalid")
	}
	if !ValidEasing(DefaultEasing) {
		t.Errorf("expected %s to be valid", DefaultEasing)
	}
}

func TestEasingNamesSorted(t *testing.T) {
	names := EasingNames()
	want := []string{EaseInOutQuint, EaseInOutSine, EaseOutSine}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, expected %s", i, names[i], want[i])
		}
	}
}
