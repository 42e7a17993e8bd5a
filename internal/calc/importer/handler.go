package importer

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"Drivecalc/internal/calc/batch"
	"Drivecalc/internal/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxUpload bounds the multipart body of an import.
const maxUpload = 8 << 20

type ImportResult struct {
	Count   int          `json:"count"`
	Skipped []RowError   `json:"skipped,omitempty"`
	Batch   batch.Result `json:"batch"`
}

type Handler struct {
	Registry *session.Registry
}

// Import runs the batch pipeline over an uploaded XLSX file.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	items, skipped, err := Read(file)
	if err != nil {
		http.Error(w, "Invalid file: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(items) == 0 {
		http.Error(w, "No valid rows", http.StatusBadRequest)
		return
	}
	res, err := batch.Run(r.Context(), items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ImportResult{Count: len(items), Skipped: skipped, Batch: res})
}

// Export streams the addressed session's results as XLSX.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	m := session.MachineFor(h.Registry, r)
	f, err := Export(m.Results())
	if err != nil {
		logrus.WithField("session", m.Code()).Errorf("results export failed: %v", err)
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"results.xlsx\"")
	if err := f.Write(w); err != nil {
		logrus.WithField("session", m.Code()).Errorf("results export failed: %v", err)
	}
}

// Template serves an empty import sheet.
func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	f, err := Template()
	if err != nil {
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"batch-template.xlsx\"")
	f.Write(w)
}
