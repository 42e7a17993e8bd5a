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
	"Drivecalc/internal/calc/report"
	"Drivecalc/internal/catalog"
	"Drivecalc/internal/session"
)

type runOptions struct {
	item     batch.Item
	bevel    []string
	hardness []float64
	spur     []string
	asJSON   bool
	pdfPath  string
	xlsxPath string
}

func pair(vals []string, flag string) (catalog.MaterialID, catalog.MaterialID, error) {
	switch len(vals) {
	case 0:
		return "", "", nil
	case 2:
		return catalog.MaterialID(vals[0]), catalog.MaterialID(vals[1]), nil
	}
	return "", "", errors.Errorf("--%s takes two materials, driver and driven", flag)
}

func (o *runOptions) complete() error {
	var err error
	if o.item.BevelDriver, o.item.BevelDriven, err = pair(o.bevel, "bevel"); err != nil {
		return err
	}
	if o.item.SpurDriver, o.item.SpurDriven, err = pair(o.spur, "spur"); err != nil {
		return err
	}
	switch len(o.hardness) {
	case 0:
	case 2:
		o.item.HB1, o.item.HB2 = o.hardness[0], o.hardness[1]
	default:
		return errors.New("--hb takes two values, HB1 and HB2")
	}
	return nil
}

// NewRunCommand .
func NewRunCommand() *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all eight stages for one set of inputs",
		Example: `  drivecalc run --power 5 --speed 60 --life 5
  drivecalc run -P 5 -n 60 -L 5 --bevel 40XH,50X --hb 280,250 --pdf report.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.complete(); err != nil {
				return err
			}
			m, runErr := batch.Pipeline(cmd.Context(), o.item)
			if err := o.write(cmd.OutOrStdout(), m); err != nil {
				return err
			}
			if runErr != nil {
				return errors.Wrapf(runErr, "stopped at %s", m.Stage())
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64VarP(&o.item.PowerKW, "power", "P", 0, "required output power, kW")
	f.Float64VarP(&o.item.SpeedRPM, "speed", "n", 0, "output shaft speed, rpm")
	f.Float64VarP(&o.item.LifeYears, "life", "L", 0, "service life, years")
	f.StringSliceVar(&o.bevel, "bevel", nil, "bevel gear materials driver,driven (default 40XH,50X)")
	f.Float64SliceVar(&o.hardness, "hb", nil, "bevel gear Brinell hardness HB1,HB2 (default band midpoints)")
	f.StringSliceVar(&o.spur, "spur", nil, "spur gear materials driver,driven (default: same as bevel)")
	f.BoolVar(&o.asJSON, "json", false, "print the session as JSON")
	f.StringVar(&o.pdfPath, "pdf", "", "also write a PDF report to this file")
	f.StringVar(&o.xlsxPath, "xlsx", "", "also write the results to this XLSX file")
	cmd.MarkFlagRequired("power")
	cmd.MarkFlagRequired("speed")
	cmd.MarkFlagRequired("life")
	return cmd
}

func (o *runOptions) write(out io.Writer, m *session.Machine) error {
	snap := m.Snapshot()
	if o.asJSON {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(session.NewView("cli", snap)); err != nil {
			return errors.Wrap(err, "encode session")
		}
	} else {
		printResults(out, snap)
	}

	if o.pdfPath != "" {
		f, err := os.Create(o.pdfPath)
		if err != nil {
			return errors.Wrap(err, "create report")
		}
		defer f.Close()
		if err := report.Render(f, report.Input{Code: "cli", Session: snap}); err != nil {
			return err
		}
	}
	if o.xlsxPath != "" {
		x, err := importer.Export(snap.Results.Entries())
		if err != nil {
			return err
		}
		defer x.Close()
		if err := x.SaveAs(o.xlsxPath); err != nil {
			return errors.Wrap(err, "save results")
		}
	}
	return nil
}

func printResults(out io.Writer, s session.CalculatorSession) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "Stage\t%d/%d %s\n", int(s.Stage), session.StageCount, s.Stage)
	fmt.Fprintf(tw, "Complete\t%t\n\n", s.Complete())
	for _, e := range s.Results.Entries() {
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.Data)
	}
}
