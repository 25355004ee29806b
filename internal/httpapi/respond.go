package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// All error responses share the {"message": ...} envelope.
func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("Failed to write JSON response", "error", err)
		}
	}
}

func respondMessage(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"message": message})
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondMessage(w, code, message)
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation, writing the 400 response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "Request body is empty")
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
			}
			respondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(fields, "; "))
			return false
		}
		respondError(w, http.StatusBadRequest, "Validation failed")
		return false
	}
	return true
}
