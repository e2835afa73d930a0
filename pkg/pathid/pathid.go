// Package pathid rejects requests whose mux id variables are not UUIDs, so a
// mistyped link never reaches Postgres or a Redis key.
package pathid

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Valid reports whether id is a UUID in its canonical hyphenated form.
func Valid(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func isIDVar(name string) bool {
	return name == "id" || strings.HasSuffix(name, "Id")
}

// Middleware checks every `id` and `*Id` route variable. A bad device id is a
// client fault (400); any other bad id names nothing that exists (404).
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for name, value := range mux.Vars(r) {
			if !isIDVar(name) || Valid(value) {
				continue
			}
			if name == "deviceId" {
				http.Error(w, "invalid device id", http.StatusBadRequest)
			} else {
				http.Error(w, "not found", http.StatusNotFound)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}
