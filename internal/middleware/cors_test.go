package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveCORS(origins []string, method, origin string) *httptest.ResponseRecorder {
	h := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(method, "/api/chat", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORS_ExplicitOrigin(t *testing.T) {
	w := serveCORS([]string{"http://localhost:5173"}, http.MethodGet, "http://localhost:5173")

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "X-Adolai-Session-ID") {
		t.Errorf("Allow-Headers = %q, missing session header", got)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "X-Adolai-Session-ID") {
		t.Errorf("Expose-Headers = %q, missing session header", got)
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want passthrough", w.Code)
	}
}

func TestCORS_WildcardNoCredentials(t *testing.T) {
	w := serveCORS([]string{"*"}, http.MethodGet, "http://other.test")

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://other.test" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Allow-Credentials = %q, want empty", got)
	}
}

func TestCORS_UnknownOrigin(t *testing.T) {
	w := serveCORS([]string{"http://localhost:5173"}, http.MethodGet, "http://evil.test")

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	w := serveCORS([]string{"http://localhost:5173"}, http.MethodOptions, "http://localhost:5173")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
