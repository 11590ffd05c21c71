// Package scale computes the colour classification used by the monument
// density map: boundary values for a set of observations, the bin each
// observation falls into, and the legend labels for those bins.
package scale

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Method selects the binning rule.
type Method string

// Classification methods.
const (
	MethodQuantile      Method = "quantile"
	MethodEqualInterval Method = "equal-interval"
	MethodPowerOfTen    Method = "power-of-ten"
)

// Methods lists the supported methods in display order.
var Methods = []Method{MethodQuantile, MethodPowerOfTen, MethodEqualInterval}

// Sentinel errors returned by Compute.
var (
	ErrInvalidInput    = eris.New("scale: invalid input")
	ErrDegenerateScale = eris.New("scale: degenerate scale")
)

// equalIntervalPoints is the number of boundaries of an equal-interval scale.
const equalIntervalPoints = 5

// ParseMethod parses a method name. The Dutch labels of the dashboard are
// accepted as aliases.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quantile", "quantiles", "kwartielen":
		return MethodQuantile, nil
	case "equal-interval", "equal_interval", "gelijke intervals":
		return MethodEqualInterval, nil
	case "power-of-ten", "power_of_ten", "machten van 10":
		return MethodPowerOfTen, nil
	}
	return "", eris.Errorf("scale: unknown classification method %q", s)
}

// Scale is an ascending, deduplicated boundary sequence starting at 0.
type Scale struct {
	Method Method    `json:"method"`
	Bounds []float64 `json:"bounds"`
}

// NumBins returns the number of coloured bins, excluding the zero bin.
func (s Scale) NumBins() int {
	if len(s.Bounds) < 2 {
		return 0
	}
	return len(s.Bounds) - 1
}

// Degenerate reports whether the scale has fewer than two boundaries.
func (s Scale) Degenerate() bool {
	return len(s.Bounds) < 2
}

// Compute derives a Scale from values using method. values must be
// non-empty, finite and non-negative.
//
// When deduplication leaves fewer than two boundaries the scale is still
// returned together with an error wrapping ErrDegenerateScale, so callers can
// fall back to a single colour.
func Compute(values []float64, method Method) (Scale, error) {
	if len(values) == 0 {
		return Scale{}, eris.Wrap(ErrInvalidInput, "no values")
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Scale{}, eris.Wrapf(ErrInvalidInput, "value %d is not finite", i)
		}
		if v < 0 {
			return Scale{}, eris.Wrapf(ErrInvalidInput, "value %d is negative (%g)", i, v)
		}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	maxV := sorted[len(sorted)-1]

	var bounds []float64
	switch method {
	case MethodQuantile:
		bounds = []float64{
			0,
			quantile(sorted, 0.25),
			quantile(sorted, 0.5),
			quantile(sorted, 0.75),
			maxV,
		}
	case MethodEqualInterval:
		bounds = linspace(0, maxV, equalIntervalPoints)
	case MethodPowerOfTen:
		bounds = powersOfTen(maxV)
	default:
		return Scale{}, eris.Wrapf(ErrInvalidInput, "unknown method %q", method)
	}

	slices.Sort(bounds)
	bounds = slices.Compact(bounds)

	s := Scale{Method: method, Bounds: bounds}
	if s.Degenerate() {
		return s, eris.Wrapf(ErrDegenerateScale, "%s scale collapsed to %d boundaries", method, len(bounds))
	}
	return s, nil
}

// quantile returns the q-th quantile of sorted using linear interpolation
// between closest ranks, h = (n-1)q.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * q
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// linspace returns n evenly spaced points from start to stop inclusive.
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// powersOfTen returns [0, 10, 100, ..., 10^d] where d is the number of
// decimal digits of floor(maxV). A maximum below 10 still yields [0, 10].
func powersOfTen(maxV float64) []float64 {
	digits := len(strconv.FormatFloat(math.Floor(maxV), 'f', 0, 64))
	out := make([]float64, 0, digits+1)
	out = append(out, 0)
	for i := 1; i <= digits; i++ {
		out = append(out, math.Pow10(i))
	}
	return out
}
