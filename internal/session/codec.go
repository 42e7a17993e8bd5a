package session

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"Drivecalc/internal/catalog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const snapshotVersion = 1

var ErrSnapshotVersion = errors.New("unsupported snapshot version")

func Encode(s *CalculatorSession) ([]byte, error) {
	s.Version = snapshotVersion
	return json.Marshal(s)
}

// Decode restores a snapshot written by Encode. Snapshots whose row layout
// no longer matches the catalog are rejected.
func Decode(data []byte) (CalculatorSession, error) {
	var s CalculatorSession
	if err := json.Unmarshal(data, &s); err != nil {
		return CalculatorSession{}, errors.Wrap(err, "decode snapshot")
	}
	if s.Version != snapshotVersion {
		return CalculatorSession{}, errors.Wrapf(ErrSnapshotVersion, "got %d", s.Version)
	}
	if !s.Stage.Valid() {
		return CalculatorSession{}, errors.Errorf("snapshot stage %d out of range", int(s.Stage))
	}
	if len(s.Efficiency) != len(catalog.Efficiency()) || len(s.Ratios) != len(catalog.Ratios()) {
		return CalculatorSession{}, errors.New("snapshot rows do not match catalog")
	}
	return s, nil
}
