package pathid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"6f1c1c52-5d7e-4c53-9a36-1f6f0c1f2a01", true},
		{"6F1C1C52-5D7E-4C53-9A36-1F6F0C1F2A01", true},
		{"6f1c1c525d7e4c539a361f6f0c1f2a01", false},
		{"{6f1c1c52-5d7e-4c53-9a36-1f6f0c1f2a}", false},
		{"not-a-uuid", false},
		{"*", false},
		{"", false},
	}
	for _, testCase := range tests {
		assert.Equal(t, testCase.want, Valid(testCase.id), testCase.id)
	}
}

func TestMiddleware(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	r.HandleFunc("/api/restaurants/{id}/tables/{number}", ok)
	r.HandleFunc("/api/devices/{deviceId}", ok)
	r.HandleFunc("/api/devices/{deviceId}/carts/{restaurantId}/lines/{lineKey}", ok)

	const good = "6f1c1c52-5d7e-4c53-9a36-1f6f0c1f2a01"
	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"valid restaurant", "/api/restaurants/" + good + "/tables/3", http.StatusOK},
		{"malformed restaurant", "/api/restaurants/not-a-uuid/tables/3", http.StatusNotFound},
		{"wildcard device", "/api/devices/*", http.StatusBadRequest},
		{"malformed device", "/api/devices/abc", http.StatusBadRequest},
		{"malformed nested id", "/api/devices/" + good + "/carts/x/lines/k", http.StatusNotFound},
		{"non id vars untouched", "/api/devices/" + good + "/carts/" + good + "/lines/anything", http.StatusOK},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("DELETE", testCase.path, nil))
			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}
