package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/monument-map/internal/pipeline"
	"github.com/sells-group/monument-map/internal/scale"
)

var (
	rankMain      string
	rankSub       string
	rankMeasure   string
	rankMethod    string
	rankLimit     int
	rankFromFiles bool
	rankSources   sourceFlags
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print municipalities ordered by monument count",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("rank"); err != nil {
			return err
		}

		measure, err := pipeline.ParseMeasure(rankMeasure)
		if err != nil {
			return err
		}
		method, err := scale.ParseMethod(rankMethod)
		if err != nil {
			return err
		}
		sel := pipeline.Selection{
			Mode:         pipeline.ModeDensity,
			MainCategory: rankMain,
			SubCategory:  rankSub,
			Measure:      measure,
			Method:       method,
		}

		ds, err := loadDataset(ctx, rankFromFiles, rankSources)
		if err != nil {
			return err
		}
		res, err := pipeline.Density(ds, sel, paletteFromConfig(cfg.Map))
		if err != nil {
			return err
		}
		return formatRanking(cmd.OutOrStdout(), res, paletteFromConfig(cfg.Map), rankLimit)
	},
}

func formatRanking(w io.Writer, res *pipeline.DensityResult, palette scale.Palette, limit int) error {
	rows := res.Ranking
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if res.Selection.Measure == pipeline.MeasureAbsolute {
		fmt.Fprintln(tw, "#\tMUNICIPALITY\tCOUNT\tSHARE\tCOLOR")
	} else {
		fmt.Fprintln(tw, "#\tMUNICIPALITY\tPER 100.000\tCOLOR")
	}
	for _, r := range rows {
		value := pipeline.FormatValue(r.Value, res.Selection.Measure)
		color := res.Color(r.Value, palette)
		if r.Share != nil {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Rank, r.Name, value, pipeline.FormatShare(*r.Share), color)
		} else {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Rank, r.Name, value, color)
		}
	}
	return tw.Flush()
}

func init() {
	rankCmd.Flags().StringVar(&rankMain, "main", "", "main category (default all)")
	rankCmd.Flags().StringVar(&rankSub, "sub", "", "subcategory (default all)")
	rankCmd.Flags().StringVar(&rankMeasure, "measure", string(pipeline.MeasureAbsolute), "absolute or per-capita")
	rankCmd.Flags().StringVar(&rankMethod, "method", string(scale.MethodQuantile), "classification method for the colour column")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 0, "show only the first N rows (0 = all)")
	rankCmd.Flags().BoolVar(&rankFromFiles, "from-files", false, "read the source files instead of the latest stored import")
	rankCmd.Flags().StringVar(&rankSources.regions, "regions", "", "regions GeoJSON, shapefile or ZIP (default from config)")
	rankCmd.Flags().StringVar(&rankSources.monuments, "monuments", "", "monuments GeoJSON (default from config)")
	rankCmd.Flags().StringVar(&rankSources.mapping, "mapping", "", "category mapping CSV, XLSX or YAML (default from config)")
	rootCmd.AddCommand(rankCmd)
}
