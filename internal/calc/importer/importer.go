// Package importer moves pipeline data in and out of spreadsheets: batch
// inputs come in as rows of an XLSX sheet, session results go out as one.
package importer

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"Drivecalc/internal/calc/batch"
	"Drivecalc/internal/catalog"
	"Drivecalc/internal/session"
)

// Columns is the expected header of an import sheet. Only the first three
// are required in each row.
var Columns = []string{"P", "n", "L", "bevel_driver", "bevel_driven", "hb1", "hb2", "spur_driver", "spur_driven"}

const ResultsSheet = "Results"

// RowError describes a sheet row that could not be parsed. Row is 1-based
// like in the spreadsheet.
type RowError struct {
	Row int    `json:"row"`
	Msg string `json:"error"`
}

// Read parses the first sheet of an XLSX file.
func Read(r io.Reader) ([]batch.Item, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open workbook")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, errors.Wrap(err, "read sheet")
	}
	if len(rows) < 2 {
		return nil, nil, errors.New("sheet has no data rows")
	}
	items, bad := ParseRows(rows[1:], 2)
	return items, bad, nil
}

// ParseRows converts sheet rows to batch items; first is the sheet row
// number of rows[0]. Blank rows are skipped silently.
func ParseRows(rows [][]string, first int) ([]batch.Item, []RowError) {
	var (
		items []batch.Item
		bad   []RowError
	)
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		it, err := parseRow(row)
		if err != nil {
			bad = append(bad, RowError{Row: first + i, Msg: err.Error()})
			continue
		}
		items = append(items, it)
	}
	return items, bad
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func number(row []string, i int, required bool) (float64, error) {
	s := strings.ReplaceAll(cell(row, i), ",", ".")
	if s == "" {
		if required {
			return 0, errors.Errorf("%s is required", Columns[i])
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Errorf("%s: %q is not a number", Columns[i], s)
	}
	return v, nil
}

func parseRow(row []string) (batch.Item, error) {
	var (
		vals [7]float64
		err  error
	)
	for _, i := range []int{0, 1, 2, 5, 6} {
		if vals[i], err = number(row, i, i < 3); err != nil {
			return batch.Item{}, err
		}
	}
	return batch.Item{
		PowerKW:     vals[0],
		SpeedRPM:    vals[1],
		LifeYears:   vals[2],
		BevelDriver: catalog.MaterialID(cell(row, 3)),
		BevelDriven: catalog.MaterialID(cell(row, 4)),
		HB1:         vals[5],
		HB2:         vals[6],
		SpurDriver:  catalog.MaterialID(cell(row, 7)),
		SpurDriven:  catalog.MaterialID(cell(row, 8)),
	}, nil
}

// Export builds a workbook listing entries in order under a Name/Data
// header.
func Export(entries []session.ResultEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), ResultsSheet); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "name sheet")
	}
	if err := f.SetSheetRow(ResultsSheet, "A1", &[]any{"Name", "Data"}); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "write header")
	}
	for i, e := range entries {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "locate %s", e.Name)
		}
		if err := f.SetSheetRow(ResultsSheet, cellRef, &[]any{e.Name, e.Data}); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "write %s", e.Name)
		}
	}
	for col, width := range map[string]float64{"A": 18, "B": 40} {
		if err := f.SetColWidth(ResultsSheet, col, col, width); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "size column %s", col)
		}
	}
	return f, nil
}

// Template returns an empty import workbook with the header row filled.
func Template() (*excelize.File, error) {
	f := excelize.NewFile()
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(f.GetSheetName(0), "A1", &header); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "write header")
	}
	return f, nil
}
