package session

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"Drivecalc/internal/auth"
	"Drivecalc/internal/catalog"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type inputRequest struct {
	Field InputField `json:"field" validate:"required,oneof=P n L"`
	Value *float64   `json:"value" validate:"required"`
}

type rowRequest struct {
	Value *float64 `json:"value" validate:"required"`
}

type tuningRequest struct {
	Name  TuningParam `json:"name" validate:"required,oneof=K_be c_K psi_ba psi_bd_max"`
	Value *float64    `json:"value" validate:"required"`
}

type materialRequest struct {
	Stage    string             `json:"stage" validate:"required,oneof=BevelDesign SpurDesign"`
	Slot     Slot               `json:"slot" validate:"required,oneof=driver driven"`
	Material catalog.MaterialID `json:"material" validate:"required"`
}

type hardnessRequest struct {
	Slot  Slot     `json:"slot" validate:"required,oneof=driver driven"`
	Value *float64 `json:"value" validate:"required"`
}

// Handler exposes the machines of a Registry over HTTP. Session codes in the
// URL are scoped to the token owner when auth is enabled.
type Handler struct {
	Registry *Registry
}

func NewHandler(reg *Registry) *Handler {
	return &Handler{Registry: reg}
}

// Routes mounts the session API on r, which is expected to be the
// /api/sessions subrouter.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/{code}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/{code}/advance", h.Advance).Methods(http.MethodPost)
	r.HandleFunc("/{code}/retreat", h.Retreat).Methods(http.MethodPost)
	r.HandleFunc("/{code}/inputs", h.SetInput).Methods(http.MethodPut)
	r.HandleFunc("/{code}/rows/{table}/{index:[0-9]+}", h.SetRow).Methods(http.MethodPut)
	r.HandleFunc("/{code}/tuning", h.SetTuning).Methods(http.MethodPut)
	r.HandleFunc("/{code}/materials", h.SelectMaterial).Methods(http.MethodPut)
	r.HandleFunc("/{code}/hardness", h.SetHardness).Methods(http.MethodPut)
	r.HandleFunc("/{code}/results", h.Results).Methods(http.MethodGet)
}

// MachineFor resolves the machine addressed by the {code} route variable.
func MachineFor(reg *Registry, r *http.Request) *Machine {
	code := auth.Scope(r.Context(), mux.Vars(r)["code"])
	return reg.Get(r.Context(), code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// fail maps machine errors to statuses: refused input is the caller's to
// fix, anything else aborted the calculation.
func fail(w http.ResponseWriter, m *Machine, err error) {
	if IsValidation(err) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	logrus.WithField("session", m.Code()).Errorf("request failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "calculation aborted"})
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request, m *Machine) {
	writeJSON(w, http.StatusOK, NewView(mux.Vars(r)["code"], m.Snapshot()))
}

// Create hands out a fresh session code.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	code := xid.New().String()
	m := h.Registry.Get(r.Context(), auth.Scope(r.Context(), code))
	writeJSON(w, http.StatusCreated, NewView(code, m.Snapshot()))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, MachineFor(h.Registry, r))
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	m := MachineFor(h.Registry, r)
	if err := m.Advance(r.Context()); err != nil {
		fail(w, m, err)
		return
	}
	h.view(w, r, m)
}

func (h *Handler) Retreat(w http.ResponseWriter, r *http.Request) {
	m := MachineFor(h.Registry, r)
	m.Retreat(r.Context())
	h.view(w, r, m)
}

func (h *Handler) SetInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decode(w, r, &req) {
		return
	}
	m := MachineFor(h.Registry, r)
	if err := m.SetInput(r.Context(), req.Field, *req.Value); err != nil {
		fail(w, m, err)
		return
	}
	h.view(w, r, m)
}

func (h *Handler) SetRow(w http.ResponseWriter, r *http.Request) {
	var req rowRequest
	if !decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		http.Error(w, "Invalid row index", http.StatusBadRequest)
		return
	}
	m := MachineFor(h.Registry, r)
	if err := m.SetWorkingRowValue(r.Context(), Table(vars["table"]), index, *req.Value); err != nil {
		fail(w, m, err)
		return
	}
	h.view(w, r, m)
}

func (h *Handler) SetTuning(w http.ResponseWriter, r *http.Request) {
	var req tuningRequest
	if !decode(w, r, &req) {
		return
	}
	m := MachineFor(h.Registry, r)
	if err := m.SetTuningParam(r.Context(), req.Name, *req.Value); err != nil {
		fail(w, m, err)
		return
	}
	h.view(w, r, m)
}

func (h *Handler) SelectMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if !decode(w, r, &req) {
		return
	}
	stage, _ := ParseStage(req.Stage)
	m := MachineFor(h.Registry, r)
	if err := m.SelectMaterial(r.Context(), stage, req.Slot, req.Material); err != nil {
		fail(w, m, err)
		return
	}
	h.view(w, r, m)
}

func (h *Handler) SetHardness(w http.ResponseWriter, r *http.Request) {
	var req hardnessRequest
	if !decode(w, r, &req) {
		return
	}
	m := MachineFor(h.Registry, r)
	if err := m.SetHardness(r.Context(), req.Slot, *req.Value); err != nil {
		fail(w, m, err)
		return
	}
	h.view(w, r, m)
}

func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MachineFor(h.Registry, r).Results())
}
