package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"Drivecalc/internal/calc/importer"
)

func execute(args ...string) (string, error) {
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	rq := require.New(t)
	dir := t.TempDir()
	pdf := filepath.Join(dir, "r.pdf")
	xlsx := filepath.Join(dir, "r.xlsx")

	out, err := execute("run", "-P", "5", "-n", "60", "-L", "5", "--bevel", "40XH,50X", "--hb", "280,250", "--pdf", pdf, "--xlsx", xlsx)
	rq.NoError(err)
	rq.Contains(out, "8/8 ChainDesign")
	rq.Contains(out, "chain_z1")

	_, err = os.Stat(pdf)
	rq.NoError(err)
	f, err := excelize.OpenFile(xlsx)
	rq.NoError(err)
	defer f.Close()
	rows, err := f.GetRows(importer.ResultsSheet)
	rq.NoError(err)
	rq.Equal([]string{"chain_z2", "90"}, rows[len(rows)-1])
}

func TestRunCommandStops(t *testing.T) {
	rq := require.New(t)
	out, err := execute("run", "-P", "5", "-n", "60", "-L", "5", "--hb", "250,250")
	rq.ErrorContains(err, "stopped at BevelDesign")
	rq.Contains(out, "6/8 BevelDesign")

	_, err = execute("run", "-P", "5", "-n", "60", "-L", "5", "--bevel", "40XH")
	rq.ErrorContains(err, "--bevel takes two materials")

	_, err = execute("run", "-P", "5")
	rq.Error(err)
}

func TestImportCommand(t *testing.T) {
	rq := require.New(t)
	f, err := importer.Template()
	rq.NoError(err)
	sheet := f.GetSheetName(0)
	rq.NoError(f.SetSheetRow(sheet, "A2", &[]any{5, 60, 5}))
	rq.NoError(f.SetSheetRow(sheet, "A3", &[]any{"oops", 60, 5}))
	path := filepath.Join(t.TempDir(), "batch.xlsx")
	rq.NoError(f.SaveAs(path))
	rq.NoError(f.Close())

	out, err := execute("import", path)
	rq.NoError(err)
	rq.Contains(out, "row 3 skipped")
	rq.Contains(out, "1 of 1 complete")
}

func TestTokenCommand(t *testing.T) {
	rq := require.New(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TOKEN_KEY", "secret")

	out, err := execute("token", "--login", "alice")
	rq.NoError(err)
	rq.Regexp(`^[\w-]+\.[\w-]+\.[\w-]+\n$`, out)
}
