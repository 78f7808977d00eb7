package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/tempizhere/dealhub/internal/models"
)

// writeError отвечает JSON-ошибкой в общем формате API
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Success: false, Error: message})
}
