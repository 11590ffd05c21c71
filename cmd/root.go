package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/monument-map/internal/config"
)

var cfg *config.Config

// logLevel overrides log.level from config when set.
var logLevel string

var rootCmd = &cobra.Command{
	Use:   "monument-map",
	Short: "Dutch heritage monument density and location maps",
	Long: `Maps rijksmonumenten per municipality.

  serve     serve the density and location maps over HTTP
  import    load the region, monument and category files into the store
  imports   list stored imports
  classify  compute colour bins for a column of values
  rank      print municipalities ordered by monument count

Configuration comes from config.yaml and MONUMENT_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		applyOverrides(c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func applyOverrides(c *config.Config) {
	if logLevel != "" {
		c.Log.Level = logLevel
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides log.level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
