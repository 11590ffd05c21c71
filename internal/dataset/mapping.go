package dataset

import (
	"context"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/monument-map/internal/fetcher"
	"github.com/sells-group/monument-map/internal/model"
)

// Column headers of the category mapping table.
const (
	colMainCategory = "hoofdcategorie"
	colSubCategory  = "subcategorie"
	colMapping      = "column_mapping"
)

// ReadMappingCSV reads the category to count-column mapping from CSV.
func ReadMappingCSV(ctx context.Context, r io.Reader) ([]model.CategoryColumn, error) {
	header, rows, err := fetcher.ReadCSV(ctx, r, fetcher.CSVOptions{TrimSpace: true})
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read mapping csv")
	}
	return mappingFromTable(header, rows)
}

// ReadMappingXLSX reads the mapping from the first sheet of a workbook.
func ReadMappingXLSX(path string) ([]model.CategoryColumn, error) {
	header, rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read mapping xlsx")
	}
	return mappingFromTable(header, rows)
}

// ReadMappingYAML reads the mapping from a YAML list of
// {hoofdcategorie, subcategorie, column_mapping} entries.
func ReadMappingYAML(r io.Reader) ([]model.CategoryColumn, error) {
	var rows []model.CategoryColumn
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		return nil, eris.Wrap(err, "dataset: decode mapping yaml")
	}
	return rows, nil
}

func mappingFromTable(header []string, rows [][]string) ([]model.CategoryColumn, error) {
	idx := map[string]int{colMainCategory: -1, colSubCategory: -1, colMapping: -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if _, ok := idx[h]; ok {
			idx[h] = i
		}
	}
	for col, i := range idx {
		if i < 0 {
			return nil, eris.Errorf("dataset: mapping has no %q column", col)
		}
	}

	cell := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]model.CategoryColumn, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.CategoryColumn{
			MainCategory: cell(row, colMainCategory),
			SubCategory:  cell(row, colSubCategory),
			Column:       cell(row, colMapping),
		})
	}
	return out, nil
}
