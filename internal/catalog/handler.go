package catalog

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

type listing struct {
	Efficiency []EfficiencyEntry `json:"efficiency"`
	Ratios     []RatioEntry      `json:"ratios"`
	Materials  []MaterialEntry   `json:"materials"`
}

// Handler serves the reference tables.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(listing{
		Efficiency: Efficiency(),
		Ratios:     Ratios(),
		Materials:  Materials(),
	})
}
