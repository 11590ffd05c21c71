package scale

import (
	"math"
	"sort"
	"strconv"
)

// NoMonumentsLabel is the legend label of the zero bin.
const NoMonumentsLabel = "no monuments"

// DefaultPalette is the five-step fill ramp of the density map, light to dark.
var DefaultPalette = Palette{
	Colors:      []string{"#FCFFC9", "#E8C167", "#D67500", "#913640", "#1D0B14"},
	NoDataColor: "#F0F0F0",
}

// Palette maps bin indices to fill colours. Bin 0 is the zero bin and always
// uses NoDataColor.
type Palette struct {
	Colors      []string `json:"colors" mapstructure:"colors"`
	NoDataColor string   `json:"no_data_color" mapstructure:"no_data_color"`
}

// Color returns the colour for bin. Bins past the end of the palette reuse
// the last colour.
func (p Palette) Color(bin int) string {
	if bin <= 0 || len(p.Colors) == 0 {
		return p.NoDataColor
	}
	if bin > len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[bin-1]
}

// Bin returns the bin index for v. Zero (and anything below it) is bin 0.
// Otherwise the result is the first i >= 1 with v <= Bounds[i], so a value
// equal to a boundary lands in the lower bin. Values above the last boundary
// go to the last bin. On a degenerate scale every positive value is bin 1.
func (s Scale) Bin(v float64) int {
	if v <= 0 {
		return 0
	}
	n := s.NumBins()
	if n == 0 {
		return 1
	}
	i := sort.SearchFloat64s(s.Bounds, v)
	if i < 1 {
		i = 1
	}
	if i > n {
		i = n
	}
	return i
}

// LabelFormat controls how boundary values are printed in legend labels.
type LabelFormat int

// Label formats.
const (
	LabelDecimal LabelFormat = iota // rounded to one decimal
	LabelInteger                    // truncated to an integer
)

// LabelFormatFor returns the label format for a method and measure. Only
// quantile boundaries of absolute counts are printed as integers.
func LabelFormatFor(method Method, absolute bool) LabelFormat {
	if method == MethodQuantile && absolute {
		return LabelInteger
	}
	return LabelDecimal
}

func (f LabelFormat) format(v float64) string {
	if f == LabelInteger {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

// Labels returns the legend labels: NoMonumentsLabel followed by one
// "(from, to]" label per bin. The result always has NumBins()+1 entries.
func (s Scale) Labels(format LabelFormat) []string {
	labels := make([]string, 0, s.NumBins()+1)
	labels = append(labels, NoMonumentsLabel)
	for i := 1; i < len(s.Bounds); i++ {
		labels = append(labels, "("+format.format(s.Bounds[i-1])+", "+format.format(s.Bounds[i])+"]")
	}
	return labels
}
