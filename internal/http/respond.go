// internal/http/respond.go
package httpserver

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Decode reads a JSON body into v with a 1MB cap and rejects trailing
// content.
func Decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)) // 1MB
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errExtraContent
	}
	return nil
}

var errExtraContent = &extraContentError{}

type extraContentError struct{}

func (*extraContentError) Error() string { return "invalid JSON (extra content)" }
