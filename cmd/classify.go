package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/monument-map/internal/fetcher"
	"github.com/sells-group/monument-map/internal/scale"
)

var (
	classifyFile      string
	classifyColumn    int
	classifyHeader    bool
	classifyMethod    string
	classifyPerCapita bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Compute colour bins for a column of values",
	Long:  "Reads numeric values from a CSV file (or stdin) and prints the scale boundaries and legend for the chosen method.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("classify"); err != nil {
			return err
		}
		method, err := scale.ParseMethod(classifyMethod)
		if err != nil {
			return err
		}

		var r io.Reader = cmd.InOrStdin()
		if classifyFile != "" && classifyFile != "-" {
			f, err := os.Open(classifyFile)
			if err != nil {
				return eris.Wrapf(err, "classify: open %s", classifyFile)
			}
			defer f.Close() //nolint:errcheck
			r = f
		}

		values, err := readValues(cmd.Context(), r, classifyColumn, classifyHeader)
		if err != nil {
			return err
		}

		format := scale.LabelFormatFor(method, !classifyPerCapita)
		cls, err := scale.NewClassifier(values, method, format, paletteFromConfig(cfg.Map))
		if err != nil {
			return eris.Wrap(err, "classify")
		}
		return formatClassification(cmd.OutOrStdout(), cls)
	},
}

// readValues parses one numeric column. Blank cells are skipped; anything
// else that is not a number is an error naming the row.
func readValues(ctx context.Context, r io.Reader, column int, header bool) ([]float64, error) {
	if column < 0 {
		return nil, eris.Errorf("classify: column must be >= 0, got %d", column)
	}
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{HasHeader: header, TrimSpace: true})

	var values []float64
	var parseErr error
	line := 0
	for row := range rowCh {
		line++
		if parseErr != nil {
			continue
		}
		if column >= len(row) || row[column] == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(row[column], ",", "."), 64)
		if err != nil {
			parseErr = eris.Wrapf(err, "classify: row %d", line)
			continue
		}
		values = append(values, v)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return values, nil
}

func formatClassification(w io.Writer, cls *scale.Classifier) error {
	bounds := make([]string, len(cls.Scale.Bounds))
	for i, b := range cls.Scale.Bounds {
		bounds[i] = strconv.FormatFloat(b, 'f', -1, 64)
	}
	fmt.Fprintf(w, "method: %s\n", cls.Scale.Method)
	fmt.Fprintf(w, "bounds: [%s]\n", strings.Join(bounds, ", "))
	if cls.Uniform {
		fmt.Fprintln(w, "degenerate scale: every value is zero")
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BIN\tLABEL\tCOLOR")
	for i, e := range cls.Legend() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, e.Label, e.Color)
	}
	return tw.Flush()
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "CSV file to read (default stdin)")
	classifyCmd.Flags().IntVar(&classifyColumn, "column", 0, "zero-based column holding the values")
	classifyCmd.Flags().BoolVar(&classifyHeader, "header", false, "skip the first row")
	classifyCmd.Flags().StringVar(&classifyMethod, "method", string(scale.MethodQuantile), "quantile, equal-interval or power-of-ten")
	classifyCmd.Flags().BoolVar(&classifyPerCapita, "per-capita", false, "values are per 100,000 inhabitants (decimal labels)")
	rootCmd.AddCommand(classifyCmd)
}
