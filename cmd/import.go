package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importSources sourceFlags

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the dataset source files into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		src := importSources.sources(cfg.Dataset)
		cfg.Dataset.Regions, cfg.Dataset.Mapping = src.Regions, src.Mapping
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		loader, err := newLoader(cfg)
		if err != nil {
			return err
		}
		ds, err := loader.Load(ctx, src)
		if err != nil {
			return eris.Wrap(err, "import: load dataset")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		imp, err := st.SaveDataset(ctx, ds)
		if err != nil {
			return eris.Wrap(err, "import: save dataset")
		}

		zap.L().Info("import complete",
			zap.String("id", imp.ID),
			zap.Int("regions", imp.Regions),
			zap.Int("monuments", imp.Monuments),
			zap.Int("columns", imp.Columns),
		)
		fmt.Fprintln(cmd.OutOrStdout(), imp.ID)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSources.regions, "regions", "", "regions GeoJSON, shapefile or ZIP (default from config)")
	importCmd.Flags().StringVar(&importSources.monuments, "monuments", "", "monuments GeoJSON (default from config)")
	importCmd.Flags().StringVar(&importSources.mapping, "mapping", "", "category mapping CSV, XLSX or YAML (default from config)")
	rootCmd.AddCommand(importCmd)
}
