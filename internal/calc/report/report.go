// Package report renders a calculation session as a PDF.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/pkg/errors"

	"Drivecalc/internal/calc/characteristic"
	"Drivecalc/internal/session"
)

// headline lists the results summarised at the top of the report, in order.
var headline = []struct{ name, label string }{
	{"eta_sys", "Drive efficiency"},
	{"P_ct", "Required motor power, kW"},
	{"u_ch", "Overall ratio"},
	{"u1", "Bevel stage ratio"},
	{"u2", "Spur stage ratio"},
	{"chain_z1", "Driving sprocket teeth"},
	{"chain_z2", "Driven sprocket teeth"},
}

type Input struct {
	Code    string
	Title   string
	Author  string
	Session session.CalculatorSession
}

func (in Input) title() string {
	if in.Title == "" {
		return "Drive calculation report"
	}
	return in.Title
}

// Render writes the report: inputs, the shaft characteristic table and the
// ordered result list.
func Render(w io.Writer, in Input) error {
	s := in.Session

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(in.title(), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(in.title()))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Session: %s", in.Code)))
	pdf.Ln(6)
	if in.Author != "" {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Author: %s", in.Author)))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Stage: %d/%d %s", int(s.Stage), session.StageCount, s.Stage.Title())))
	pdf.Ln(10)

	heading(pdf, "Input data")
	pdf.Cell(0, 6, fmt.Sprintf("P = %g kW    n = %g rpm    L = %g years", s.PowerKW, s.SpeedRPM, s.LifeYears))
	pdf.Ln(10)

	if lines := summary(&s.Results); len(lines) > 0 {
		heading(pdf, "Summary")
		for _, l := range lines {
			pdf.Cell(0, 6, tr(l))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	if len(s.Characteristic) > 0 {
		heading(pdf, "Shaft characteristics")
		characteristicTable(pdf, s.Characteristic)
		pdf.Ln(4)
	}

	heading(pdf, "Results")
	if s.Results.Len() == 0 {
		pdf.Cell(0, 6, "No stage has been calculated yet.")
		pdf.Ln(6)
	}
	pdf.SetFont("Courier", "", 10)
	for _, e := range s.Results.Entries() {
		pdf.CellFormat(45, 6, tr(e.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(e.Data), "1", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "render pdf")
	}
	return nil
}

// summary picks the headline results that have been recorded so far.
func summary(r *session.Results) []string {
	var lines []string
	for _, h := range headline {
		if v, ok := r.Get(h.name); ok {
			lines = append(lines, fmt.Sprintf("%s (%s): %s", h.label, h.name, v))
		}
	}
	return lines
}

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, text)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
}

func characteristicTable(pdf *gofpdf.Fpdf, rows []characteristic.Row) {
	widths := []float64{25, 40, 40, 45}
	header := []string{"Shaft", "P, kW", "n, rpm", "T, N*mm"}
	pdf.SetFont("Helvetica", "B", 11)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 11)
	for _, r := range rows {
		cells := []string{
			r.Shaft,
			strconv.FormatFloat(r.PowerKW, 'f', 3, 64),
			strconv.FormatFloat(r.SpeedRPM, 'f', 3, 64),
			strconv.FormatInt(r.TorqueNmm, 10),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}
