package calc

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = validator.New(validator.WithRequiredStructEnabled())

// Endpoint wraps a pure calculator as a stateless JSON handler.
func Endpoint[I, R any](name string, fn func(I) (R, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input I
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(input); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := fn(input)
		if err != nil {
			if IsValidation(err) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			logrus.WithField("calc", name).Errorf("calculation failed: %v", err)
			http.Error(w, "Calculation error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	}
}
