package pipeline

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/monument-map/internal/model"
	"github.com/sells-group/monument-map/internal/scale"
)

// OptionSet lists the choices the UI offers for the current selection.
type OptionSet struct {
	Modes          []MapMode      `json:"modes"`
	Measures       []Measure      `json:"measures"`
	Methods        []scale.Method `json:"methods"`
	MainCategories []string       `json:"main_categories"`
	SubCategories  []string       `json:"sub_categories"`
	Municipalities []string       `json:"municipalities"`
}

// Options returns the selectable values given the current selection. Main
// categories come from the count mapping on the density map and from the
// monuments themselves on the locations map. "all" is always listed first.
func Options(ds *model.Dataset, sel Selection) OptionSet {
	sel = sel.Normalize()
	out := OptionSet{
		Modes:          slices.Clone(Modes),
		Measures:       slices.Clone(Measures),
		Methods:        slices.Clone(scale.Methods),
		MainCategories: []string{model.All},
		SubCategories:  []string{model.All},
	}
	if ds == nil {
		return out
	}

	var mains, subs []string
	if sel.Mode == ModeLocations {
		mains, subs = monumentCategories(ds.Monuments, sel.MainCategory)
	} else if ds.Categories != nil {
		mains = ds.Categories.MainCategories()
		if sel.MainCategory != model.All {
			// Unknown main categories simply have no subcategories.
			subs, _ = ds.Categories.SubCategories(sel.MainCategory)
		}
	}
	out.MainCategories = append(out.MainCategories, dutchSorted(mains)...)
	out.SubCategories = append(out.SubCategories, dutchSorted(nonEmpty(subs))...)
	out.Municipalities = Municipalities(ds)
	return out
}

// Municipalities returns every municipality name in Dutch collation order.
func Municipalities(ds *model.Dataset) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, r := range ds.Regions {
		add(r.Name)
	}
	for _, m := range ds.Monuments {
		add(m.Municipality)
	}
	return dutchSorted(names)
}

func monumentCategories(monuments []model.Monument, main string) (mains, subs []string) {
	seenMain := make(map[string]bool)
	seenSub := make(map[string]bool)
	for _, m := range monuments {
		if m.MainCategory != "" && !seenMain[m.MainCategory] {
			seenMain[m.MainCategory] = true
			mains = append(mains, m.MainCategory)
		}
		if main != model.All && m.MainCategory == main && !seenSub[m.SubCategory] {
			seenSub[m.SubCategory] = true
			subs = append(subs, m.SubCategory)
		}
	}
	return mains, subs
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// dutchSorted returns a sorted copy using Dutch collation, so "'s-Gravenhage"
// and accented names sort the way Dutch readers expect.
func dutchSorted(in []string) []string {
	out := slices.Clone(in)
	collate.New(language.Dutch, collate.IgnoreCase).SortStrings(out)
	return out
}

// FormatValue prints a map value the way the tooltips do: whole numbers for
// absolute counts, one decimal for per-capita values.
func FormatValue(v float64, measure Measure) string {
	p := message.NewPrinter(language.Dutch)
	if measure == MeasureAbsolute {
		return p.Sprintf("%d", int64(v+0.5))
	}
	return p.Sprintf("%.1f", v)
}

// FormatShare prints a national share as a percentage with one decimal.
func FormatShare(share float64) string {
	return message.NewPrinter(language.Dutch).Sprintf("%.1f%%", share*100)
}
