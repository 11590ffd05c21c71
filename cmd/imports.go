package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/monument-map/internal/model"
)

var importsLimit int

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "List dataset imports in the store, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("imports"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		imps, err := st.ListImports(ctx, importsLimit)
		if err != nil {
			return err
		}
		return formatImports(cmd.OutOrStdout(), imps)
	},
}

func formatImports(w io.Writer, imps []model.Import) error {
	if len(imps) == 0 {
		fmt.Fprintln(w, "no imports")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tREGIONS\tMONUMENTS\tCOLUMNS\tSOURCE")
	for _, imp := range imps {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			imp.ID, imp.CreatedAt.UTC().Format(time.RFC3339), imp.Regions, imp.Monuments, imp.Columns, imp.Source)
	}
	return tw.Flush()
}

func init() {
	importsCmd.Flags().IntVar(&importsLimit, "limit", 20, "maximum number of imports to list")
	rootCmd.AddCommand(importsCmd)
}
