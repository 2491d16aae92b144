package utils

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/riteshkumar/credit-ledger/internal/errors"
	"github.com/riteshkumar/credit-ledger/internal/models"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func WriteError(w http.ResponseWriter, status int, errorMsg, details string) {
	response := models.ErrorResponse{
		Error:   errorMsg,
		Message: details,
	}
	WriteJSON(w, status, response)
}

// DayParam reads the required non-negative integer "day" query parameter.
func DayParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("day")
	if raw == "" {
		return 0, errors.NewValidationError("day", "query parameter is required")
	}
	day, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError("day", "must be an integer")
	}
	if day < 0 {
		return 0, errors.ErrInvalidDay
	}
	return day, nil
}
