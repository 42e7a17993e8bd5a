package report

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"Drivecalc/internal/session"
)

type Handler struct {
	Registry *session.Registry
}

// Generate renders the addressed session. Optional title and author come
// from the query string.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	m := session.MachineFor(h.Registry, r)
	in := Input{
		Code:    m.Code(),
		Title:   r.URL.Query().Get("title"),
		Author:  r.URL.Query().Get("author"),
		Session: m.Snapshot(),
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	if err := Render(w, in); err != nil {
		logrus.WithField("session", m.Code()).Errorf("report generation failed: %v", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}
