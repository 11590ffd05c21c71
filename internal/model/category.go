package model

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// All selects every category. The Dutch "Alles" of the dashboard is accepted
// as an alias by IsAll.
const All = "all"

// IsAll reports whether s selects every category.
func IsAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, All) || strings.EqualFold(s, "alles")
}

// ErrUnknownCategory is returned for a main or subcategory not in the index.
var ErrUnknownCategory = eris.New("model: unknown category")

// CategoryColumn maps one (main category, subcategory) pair to the dataset
// count column that holds its per-region totals.
type CategoryColumn struct {
	MainCategory string `json:"main_category" yaml:"hoofdcategorie"`
	SubCategory  string `json:"sub_category" yaml:"subcategorie"`
	Column       string `json:"column" yaml:"column_mapping"`
}

type categoryKey struct {
	main, sub string
}

// CategoryIndex resolves category selections to count columns. It is built
// once when a dataset is loaded and is read-only afterwards.
type CategoryIndex struct {
	rows    []CategoryColumn
	mains   []string
	subs    map[string][]string
	columns map[categoryKey][]string
}

// NewCategoryIndex builds an index from mapping rows. Rows must name a main
// category and a column; duplicate columns for one pair are merged.
func NewCategoryIndex(rows []CategoryColumn) (*CategoryIndex, error) {
	ix := &CategoryIndex{
		subs:    make(map[string][]string),
		columns: make(map[categoryKey][]string),
	}
	for i, r := range rows {
		r.MainCategory = strings.TrimSpace(r.MainCategory)
		r.SubCategory = strings.TrimSpace(r.SubCategory)
		r.Column = strings.TrimSpace(r.Column)
		if r.MainCategory == "" || r.Column == "" {
			return nil, eris.Errorf("model: category row %d has no main category or column", i)
		}

		key := categoryKey{r.MainCategory, r.SubCategory}
		if slices.Contains(ix.columns[key], r.Column) {
			continue
		}
		if _, ok := ix.subs[r.MainCategory]; !ok {
			ix.mains = append(ix.mains, r.MainCategory)
		}
		if len(ix.columns[key]) == 0 {
			ix.subs[r.MainCategory] = append(ix.subs[r.MainCategory], r.SubCategory)
		}
		ix.columns[key] = append(ix.columns[key], r.Column)
		ix.rows = append(ix.rows, r)
	}

	slices.Sort(ix.mains)
	for _, s := range ix.subs {
		slices.Sort(s)
	}
	return ix, nil
}

// Rows returns the normalised mapping rows in load order.
func (ix *CategoryIndex) Rows() []CategoryColumn {
	return slices.Clone(ix.rows)
}

// MainCategories returns the sorted main categories.
func (ix *CategoryIndex) MainCategories() []string {
	return slices.Clone(ix.mains)
}

// SubCategories returns the sorted subcategories of main.
func (ix *CategoryIndex) SubCategories(main string) ([]string, error) {
	subs, ok := ix.subs[main]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownCategory, "main category %q", main)
	}
	return slices.Clone(subs), nil
}

// Columns returns the count columns selected by main and sub. Passing All
// (or "Alles") widens the selection to every column of that level.
func (ix *CategoryIndex) Columns(main, sub string) ([]string, error) {
	if IsAll(main) {
		return ix.AllColumns(), nil
	}
	subs, err := ix.SubCategories(main)
	if err != nil {
		return nil, err
	}
	if IsAll(sub) {
		var out []string
		for _, s := range subs {
			out = append(out, ix.columns[categoryKey{main, s}]...)
		}
		return out, nil
	}
	cols, ok := ix.columns[categoryKey{main, sub}]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownCategory, "subcategory %q of %q", sub, main)
	}
	return slices.Clone(cols), nil
}

// AllColumns returns every mapped column in load order.
func (ix *CategoryIndex) AllColumns() []string {
	out := make([]string, 0, len(ix.rows))
	for _, r := range ix.rows {
		out = append(out, r.Column)
	}
	return out
}
