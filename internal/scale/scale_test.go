package scale

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		method   Method
		expected []float64
	}{
		{
			name:     "quantile with linear interpolation",
			values:   []float64{0, 10, 20, 30, 40, 100},
			method:   MethodQuantile,
			expected: []float64{0, 12.5, 25, 37.5, 100},
		},
		{
			name:     "quantile input order does not matter",
			values:   []float64{100, 30, 0, 40, 10, 20},
			method:   MethodQuantile,
			expected: []float64{0, 12.5, 25, 37.5, 100},
		},
		{
			name:     "quantile collapses repeated zeros",
			values:   []float64{0, 0, 0, 0, 8},
			method:   MethodQuantile,
			expected: []float64{0, 8},
		},
		{
			name:     "quantile single value",
			values:   []float64{7},
			method:   MethodQuantile,
			expected: []float64{0, 7},
		},
		{
			name:     "equal interval max 100",
			values:   []float64{3, 100, 42},
			method:   MethodEqualInterval,
			expected: []float64{0, 25, 50, 75, 100},
		},
		{
			name:     "equal interval fractional max",
			values:   []float64{0.5, 2},
			method:   MethodEqualInterval,
			expected: []float64{0, 0.5, 1, 1.5, 2},
		},
		{
			name:     "power of ten three digits",
			values:   []float64{1, 12, 340},
			method:   MethodPowerOfTen,
			expected: []float64{0, 10, 100, 1000},
		},
		{
			name:     "power of ten exactly ten",
			values:   []float64{10},
			method:   MethodPowerOfTen,
			expected: []float64{0, 10, 100},
		},
		{
			name:     "power of ten below ten degenerates to one bin",
			values:   []float64{2, 9.9},
			method:   MethodPowerOfTen,
			expected: []float64{0, 10},
		},
		{
			name:     "power of ten fractional max",
			values:   []float64{0.4},
			method:   MethodPowerOfTen,
			expected: []float64{0, 10},
		},
		{
			name:     "power of ten five digits",
			values:   []float64{12345.6},
			method:   MethodPowerOfTen,
			expected: []float64{0, 10, 100, 1000, 10000, 100000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Compute(tt.values, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.method, s.Method)
			assert.InDeltaSlice(t, tt.expected, s.Bounds, 1e-9)
		})
	}
}

func TestCompute_BoundsStrictlyIncreasingFromZero(t *testing.T) {
	inputs := [][]float64{
		{0, 10, 20, 30, 40, 100},
		{5, 5, 5, 5},
		{0, 0, 1},
		{0.1, 0.2, 0.3},
		{1, 1, 1, 2, 2, 2, 900},
		{12.7, 3.3, 77.1, 0, 0},
	}
	for _, values := range inputs {
		for _, m := range Methods {
			s, err := Compute(values, m)
			require.NoError(t, err, "values=%v method=%s", values, m)
			require.NotEmpty(t, s.Bounds)
			assert.Equal(t, 0.0, s.Bounds[0])
			for i := 1; i < len(s.Bounds); i++ {
				assert.Greater(t, s.Bounds[i], s.Bounds[i-1], "values=%v method=%s", values, m)
			}
		}
	}
}

func TestCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		method Method
	}{
		{"empty", nil, MethodQuantile},
		{"negative", []float64{1, -2, 3}, MethodEqualInterval},
		{"nan", []float64{1, math.NaN()}, MethodPowerOfTen},
		{"infinite", []float64{math.Inf(1)}, MethodQuantile},
		{"unknown method", []float64{1, 2}, Method("jenks")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.values, tt.method)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalidInput))
			assert.False(t, eris.Is(err, ErrDegenerateScale))
		})
	}
}

func TestCompute_AllZeros(t *testing.T) {
	for _, m := range []Method{MethodQuantile, MethodEqualInterval} {
		t.Run(string(m), func(t *testing.T) {
			s, err := Compute([]float64{0, 0, 0}, m)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrDegenerateScale))
			assert.True(t, s.Degenerate())
			assert.Equal(t, []float64{0}, s.Bounds)
			assert.Equal(t, 0, s.NumBins())
		})
	}

	// floor(0) still has one digit, so power-of-ten keeps [0, 10].
	s, err := Compute([]float64{0, 0, 0}, MethodPowerOfTen)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10}, s.Bounds)
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in       string
		expected Method
	}{
		{"quantile", MethodQuantile},
		{"kwartielen", MethodQuantile},
		{" Equal-Interval ", MethodEqualInterval},
		{"gelijke intervals", MethodEqualInterval},
		{"power-of-ten", MethodPowerOfTen},
		{"machten van 10", MethodPowerOfTen},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseMethod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}

	_, err := ParseMethod("natural-breaks")
	assert.Error(t, err)
}

func TestCompute_PowerOfTenBeyondInt64(t *testing.T) {
	s, err := Compute([]float64{3, 1e20}, MethodPowerOfTen)
	require.NoError(t, err)
	require.Len(t, s.Bounds, 22)
	assert.Equal(t, 0.0, s.Bounds[0])
	assert.Equal(t, math.Pow10(21), s.Bounds[21])
	assert.Equal(t, 20, s.Bin(1e20))
	assert.Equal(t, 21, s.Bin(5e20))
}
