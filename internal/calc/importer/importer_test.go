package importer

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"Drivecalc/internal/catalog"
	"Drivecalc/internal/session"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f, err := Template()
	require.NoError(t, err)
	defer f.Close()
	for i, row := range rows {
		ref, _ := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, f.SetSheetRow(f.GetSheetName(0), ref, &row))
	}
	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf
}

func TestParseRows(t *testing.T) {
	rq := require.New(t)
	items, bad := ParseRows([][]string{
		{"5", "60", "5"},
		{},
		{"7,5", "45", "8", "50X", "40XH", "300", "260", "40XH", "40XH"},
		{"x", "60", "5"},
		{"5", "", "5"},
	}, 2)

	rq.Len(items, 2)
	rq.Equal(5.0, items[0].PowerKW)
	rq.Empty(items[0].BevelDriver)
	rq.Equal(7.5, items[1].PowerKW)
	rq.Equal(catalog.Steel50X, items[1].BevelDriver)
	rq.Equal(260.0, items[1].HB2)
	rq.Equal(catalog.Steel40XH, items[1].SpurDriven)

	rq.Equal([]RowError{
		{Row: 5, Msg: `P: "x" is not a number`},
		{Row: 6, Msg: "n is required"},
	}, bad)
}

func TestRead(t *testing.T) {
	rq := require.New(t)
	buf := workbook(t, [][]any{
		{5, 60, 5},
		{7.5, 45, 8, "50X", "40XH", 300, 260},
	})

	items, bad, err := Read(buf)
	rq.NoError(err)
	rq.Empty(bad)
	rq.Len(items, 2)
	rq.Equal(45.0, items[1].SpeedRPM)
	rq.Equal(300.0, items[1].HB1)
}

func TestReadEmptySheet(t *testing.T) {
	_, _, err := Read(workbook(t, nil))
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	rq := require.New(t)
	f, err := Export([]session.ResultEntry{{Name: "u1", Data: "2.874"}, {Name: "u2", Data: "4.175"}})
	rq.NoError(err)
	defer f.Close()

	rows, err := f.GetRows(ResultsSheet)
	rq.NoError(err)
	rq.Equal([][]string{{"Name", "Data"}, {"u1", "2.874"}, {"u2", "4.175"}}, rows)

	for col, want := range map[string]float64{"A": 18, "B": 40} {
		width, err := f.GetColWidth(ResultsSheet, col)
		rq.NoError(err)
		rq.Equal(want, width)
	}
}

func TestImportHandler(t *testing.T) {
	rq := require.New(t)
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "batch.xlsx")
	rq.NoError(err)
	_, err = part.Write(workbook(t, [][]any{{5, 60, 5}, {"bad", 60, 5}}).Bytes())
	rq.NoError(err)
	rq.NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tools/batch/import", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, req)
	rq.Equal(http.StatusOK, rec.Code)

	var res ImportResult
	rq.NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	rq.Equal(1, res.Count)
	rq.Len(res.Skipped, 1)
	rq.Equal(1, res.Batch.Completed)
}

func TestImportHandlerRequiresFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/tools/batch/import", nil)
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
