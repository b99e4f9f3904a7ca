// Package refno issues human-readable order reference numbers and synthesized
// product codes. References are time-derived; nothing is persisted across
// restarts, so uniqueness is probabilistic under sub-millisecond call rates.
// The process has a single writer, which keeps that acceptable.
package refno

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Clock supplies the current time; swapped out in tests.
type Clock func() time.Time

// Generator derives order references and product codes from wall time.
type Generator struct {
	now Clock
}

// New returns a Generator on the system clock.
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock returns a Generator on a fixed clock source.
func NewWithClock(now Clock) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// OrderRef formats a ddMMyy date prefix followed by the zero-padded
// millisecond of the day, e.g. 040425-41087123. Within one day the value is
// strictly increasing for calls at least a millisecond apart.
func (g *Generator) OrderRef() string {
	t := g.now()
	msOfDay := t.Hour()*3600_000 + t.Minute()*60_000 + t.Second()*1000 + t.Nanosecond()/1e6
	return fmt.Sprintf("%s-%08d", t.Format("020106"), msOfDay)
}

// ProductCode synthesizes a code for a product entered without a barcode:
// the leading letters of the name upper-cased, then the unix millisecond
// timestamp. Barcoded products never pass through here.
func (g *Generator) ProductCode(name string) string {
	return fmt.Sprintf("%s-%d", namePrefix(name), g.now().UnixMilli())
}

func namePrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
		if b.Len() >= 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "GEN"
	}
	return b.String()
}
