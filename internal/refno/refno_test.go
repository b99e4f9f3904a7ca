package refno

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestOrderRef(t *testing.T) {
	// 2025-04-04 10:30:15.250 local -> 37815250 ms into the day.
	at := time.Date(2025, 4, 4, 10, 30, 15, 250_000_000, time.UTC)
	gen := NewWithClock(fixedClock(at))

	got := gen.OrderRef()
	want := "040425-37815250"
	if got != want {
		t.Fatalf("OrderRef() = %q, want %q", got, want)
	}
}

func TestOrderRefMidnight(t *testing.T) {
	at := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	gen := NewWithClock(fixedClock(at))

	got := gen.OrderRef()
	want := "311225-00000000"
	if got != want {
		t.Fatalf("OrderRef() = %q, want %q", got, want)
	}
}

func TestOrderRefIncreasesWithinDay(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	gen := NewWithClock(fixedClock(base))
	first := gen.OrderRef()

	gen = NewWithClock(fixedClock(base.Add(5 * time.Millisecond)))
	second := gen.OrderRef()

	if second <= first {
		t.Fatalf("expected %q > %q", second, first)
	}
}

func TestProductCode(t *testing.T) {
	at := time.UnixMilli(1743758400000)
	gen := NewWithClock(fixedClock(at))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain name", in: "Sugar 1kg", want: "SUG-1743758400000"},
		{name: "short name", in: "Oil", want: "OIL-1743758400000"},
		{name: "leading spaces and digits", in: " 3-in-1 Coffee", want: "3IN-1743758400000"},
		{name: "empty name", in: "", want: "GEN-1743758400000"},
		{name: "symbols only", in: "***", want: "GEN-1743758400000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gen.ProductCode(tt.in); got != tt.want {
				t.Fatalf("ProductCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewWithClockNil(t *testing.T) {
	gen := NewWithClock(nil)
	if gen.OrderRef() == "" {
		t.Fatal("expected a reference from the system clock")
	}
}
