package session

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"Drivecalc/internal/catalog"
	"Drivecalc/internal/metrics"
)

// Store persists opaque session snapshots. Load returns nil data and a nil
// error when nothing is stored under code.
type Store interface {
	Save(ctx context.Context, code string, snapshot []byte) error
	Load(ctx context.Context, code string) ([]byte, error)
}

const DefaultSaveTimeout = 2 * time.Second

// Machine owns one CalculatorSession and drives it through the stages.
// Every mutation is followed by a best-effort snapshot save; a failed save
// is logged and never changes the outcome of the operation.
type Machine struct {
	mu          sync.Mutex
	code        string
	s           CalculatorSession
	store       Store
	saveTimeout time.Duration
	log         *logrus.Entry
}

type Option func(*Machine)

func WithSaveTimeout(d time.Duration) Option {
	return func(m *Machine) { m.saveTimeout = d }
}

func WithLogger(l *logrus.Entry) Option {
	return func(m *Machine) { m.log = l }
}

// Open resumes the session stored under code, or starts a fresh one. A nil
// store keeps the session in memory only.
func Open(ctx context.Context, code string, store Store, opts ...Option) *Machine {
	m := &Machine{
		code:        code,
		store:       store,
		saveTimeout: DefaultSaveTimeout,
		log:         logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.WithField("session", code)
	m.s = m.load(ctx)
	return m
}

func (m *Machine) load(ctx context.Context) CalculatorSession {
	if m.store == nil {
		return New()
	}
	ctx, cancel := context.WithTimeout(ctx, m.saveTimeout)
	defer cancel()

	data, err := m.store.Load(ctx, m.code)
	if err != nil {
		metrics.PersistenceFailures.WithLabelValues("load").Inc()
		m.log.Warnf("failed to load snapshot, starting fresh: %v", err)
		return New()
	}
	if data == nil {
		return New()
	}
	s, err := Decode(data)
	if err != nil {
		m.log.Warnf("discarding unreadable snapshot: %v", err)
		return New()
	}
	m.log.WithField("stage", s.Stage).Debug("session resumed")
	return s
}

func (m *Machine) persist(ctx context.Context) {
	if m.store == nil {
		return
	}
	data, err := Encode(&m.s)
	if err != nil {
		metrics.PersistenceFailures.WithLabelValues("encode").Inc()
		m.log.Errorf("failed to encode snapshot: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, m.saveTimeout)
	defer cancel()
	if err := m.store.Save(ctx, m.code, data); err != nil {
		metrics.PersistenceFailures.WithLabelValues("save").Inc()
		m.log.Warnf("failed to save snapshot: %v", err)
	}
}

func (m *Machine) Code() string {
	return m.code
}

func (m *Machine) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Stage
}

// Advance resolves the current stage's calculation and moves one stage
// forward. On the last stage the chain calculation runs and the stage stays
// put. On error nothing changes: a *ValidationError asks for corrected
// input, anything else is an aborted calculation.
func (m *Machine) Advance(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stage := m.s.Stage
	out, err := m.s.evaluate(stage)
	if err != nil {
		if IsValidation(err) {
			metrics.ValidationFailures.WithLabelValues(stage.String()).Inc()
			m.log.WithField("stage", stage).Infof("advance refused: %v", err)
		} else {
			metrics.CalculationErrors.WithLabelValues(stage.String()).Inc()
			m.log.WithField("stage", stage).Errorf("calculation aborted: %v", err)
		}
		return err
	}

	for _, r := range out.records {
		m.s.Results.Upsert(r.Name, r.Data)
	}
	if out.apply != nil {
		out.apply(&m.s)
	}
	if stage < LastStage {
		m.s.Stage = stage + 1
	}
	metrics.StageTransitions.WithLabelValues(stage.String()).Inc()
	m.persist(ctx)
	return nil
}

// Retreat steps back one stage without recomputing anything.
func (m *Machine) Retreat(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.s.Stage <= FirstStage {
		return
	}
	m.s.Stage--
	m.persist(ctx)
}

func (m *Machine) SetInput(ctx context.Context, field InputField, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return m.refuse(invalid(m.s.Stage, "%s must be a non-negative number", field))
	}
	switch field {
	case InputPower:
		m.s.PowerKW = v
	case InputSpeed:
		m.s.SpeedRPM = v
	case InputLife:
		m.s.LifeYears = v
	default:
		return m.refuse(invalid(m.s.Stage, "unknown input %q", field))
	}
	m.persist(ctx)
	return nil
}

func (m *Machine) SetWorkingRowValue(ctx context.Context, table Table, index int, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.s.rows(table)
	if !ok {
		return m.refuse(invalid(m.s.Stage, "unknown table %q", table))
	}
	if index < 0 || index >= len(rows) {
		return m.refuse(invalid(m.s.Stage, "%s row %d does not exist", table, index))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return m.refuse(invalid(m.s.Stage, "%s must be a number", rows[index].Label))
	}
	v = catalog.Round(v, rowDecimals(table))
	if !rows[index].Bounds.Contains(v) {
		return m.refuse(invalid(m.s.Stage, "%s must lie in %s", rows[index].Label, rows[index].Bounds))
	}
	rows[index].Value = v
	m.persist(ctx)
	return nil
}

func (m *Machine) SetTuningParam(ctx context.Context, name TuningParam, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return m.refuse(invalid(m.s.Stage, "%s must be positive", name))
	}
	switch name {
	case ParamKbe:
		if v >= 1 {
			return m.refuse(invalid(m.s.Stage, "K_be must lie in (0, 1)"))
		}
		m.s.Tuning.Kbe = v
	case ParamCK:
		m.s.Tuning.CK = v
	case ParamPsiBa:
		m.s.Tuning.PsiBa = v
	case ParamPsiBdMax:
		m.s.Tuning.PsiBdMax = v
	default:
		return m.refuse(invalid(m.s.Stage, "unknown tuning parameter %q", name))
	}
	m.persist(ctx)
	return nil
}

// SelectMaterial picks a catalog material for one gear of the bevel or spur
// stage. For bevel gears a hardness outside the new material's band is
// reset to the band midpoint.
func (m *Machine) SelectMaterial(ctx context.Context, stage Stage, slot Slot, id catalog.MaterialID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slot != SlotDriver && slot != SlotDriven {
		return m.refuse(invalid(stage, "unknown slot %q", slot))
	}
	mat, ok := catalog.Material(id)
	if !ok {
		return m.refuse(invalid(stage, "unknown material %q", id))
	}
	switch stage {
	case StageBevelDesign:
		m.s.Bevel.set(slot, id)
		if hb := m.s.Bevel.hardness(slot); !mat.Hardness.Contains(*hb) {
			*hb = mat.Hardness.Mid()
		}
	case StageSpurDesign:
		m.s.Spur.set(slot, id)
	default:
		return m.refuse(invalid(stage, "stage has no material selection"))
	}
	m.persist(ctx)
	return nil
}

// SetHardness sets the Brinell hardness of a bevel gear; its material must
// already be selected.
func (m *Machine) SetHardness(ctx context.Context, slot Slot, hb float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slot != SlotDriver && slot != SlotDriven {
		return m.refuse(invalid(StageBevelDesign, "unknown slot %q", slot))
	}
	mat, ok := catalog.Material(m.s.Bevel.get(slot))
	if !ok {
		return m.refuse(invalid(StageBevelDesign, "select the %s material first", slot))
	}
	if !mat.Hardness.Contains(hb) {
		return m.refuse(invalid(StageBevelDesign, "HB must lie in %s for %s", mat.Hardness, mat.Label))
	}
	*m.s.Bevel.hardness(slot) = hb
	m.persist(ctx)
	return nil
}

func (m *Machine) refuse(err error) error {
	if v, ok := err.(*ValidationError); ok {
		metrics.ValidationFailures.WithLabelValues(v.Stage.String()).Inc()
	}
	return err
}

// Results returns the result entries in insertion order.
func (m *Machine) Results() []ResultEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Results.Entries()
}

// Snapshot returns a deep copy of the session state.
func (m *Machine) Snapshot() CalculatorSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Clone()
}
