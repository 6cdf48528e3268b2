package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the same error envelope the handlers produce.
func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"message": message,
			"code":    code,
		},
	})
}
