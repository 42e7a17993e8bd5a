package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"Drivecalc/internal/calc/batch"
	"Drivecalc/internal/calc/importer"
	"Drivecalc/internal/session"
)

// NewImportCommand .
func NewImportCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Run the pipeline for every row of a spreadsheet",
		Long: "Run the pipeline for every row of a spreadsheet. The first sheet must start with a header row; " +
			"columns are P, n, L and optionally bevel_driver, bevel_driven, hb1, hb2, spur_driver, spur_driven.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "open sheet")
			}
			defer f.Close()

			items, skipped, err := importer.Read(f)
			if err != nil {
				return err
			}
			for _, s := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "row %d skipped: %s\n", s.Row, s.Msg)
			}
			if len(items) == 0 {
				return errors.New("no valid rows")
			}

			res, err := batch.Run(cmd.Context(), items)
			if err != nil {
				return err
			}
			if asJSON {
				return jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout()).Encode(res)
			}
			printBatch(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func printBatch(out io.Writer, res batch.Result) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "#\tstage\tu1\tu2\tz1\tz2\terror")
	for _, it := range res.Items {
		get := func(name string) string {
			for _, e := range it.Results {
				if e.Name == name {
					return e.Data
				}
			}
			return "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", it.Index+1, it.Stage,
			get("u1"), get("u2"), get("chain_z1"), get("chain_z2"), it.Error)
	}
	fmt.Fprintf(tw, "\n%d of %d complete (%d stages each)\n", res.Completed, len(res.Items), session.StageCount)
}
