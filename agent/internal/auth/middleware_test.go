package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func call(t *testing.T, h http.Handler, target, header, key string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if key != "" {
		req.Header.Set(header, key)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestAPIKey_EmptyKey_PassesThrough(t *testing.T) {
	h := APIKey("X-API-Key", "", okHandler)
	if code := call(t, h, "/api/v1/health", "", ""); code != http.StatusOK {
		t.Errorf("status: got %d, want 200", code)
	}
}

func TestAPIKey_CorrectKey_Passes(t *testing.T) {
	h := APIKey("X-API-Key", "supersecret", okHandler)
	if code := call(t, h, "/api/v1/health", "X-API-Key", "supersecret"); code != http.StatusOK {
		t.Errorf("status: got %d, want 200", code)
	}
}

func TestAPIKey_WrongKey_Rejected(t *testing.T) {
	h := APIKey("X-API-Key", "supersecret", okHandler)
	if code := call(t, h, "/api/v1/health", "X-API-Key", "wrong"); code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", code)
	}
}

func TestAPIKey_MissingKey_Rejected(t *testing.T) {
	h := APIKey("X-API-Key", "supersecret", okHandler)
	if code := call(t, h, "/api/v1/health", "", ""); code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", code)
	}
}

func TestAPIKey_QueryParameter(t *testing.T) {
	h := APIKey("X-API-Key", "supersecret", okHandler)
	if code := call(t, h, "/api/v1/stream?api_key=supersecret", "", ""); code != http.StatusOK {
		t.Errorf("status: got %d, want 200", code)
	}
}

func TestAPIKey_DefaultHeader(t *testing.T) {
	h := APIKey("", "supersecret", okHandler)
	if code := call(t, h, "/metrics", DefaultHeader, "supersecret"); code != http.StatusOK {
		t.Errorf("status: got %d, want 200", code)
	}
}
