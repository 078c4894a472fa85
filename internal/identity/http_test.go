package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type seen struct {
	user, session string
	mgr           *Manager
}

func serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, seen) {
	t.Helper()
	var got seen
	h := Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = seen{
			user:    UserIDFromContext(r.Context()),
			session: SessionIDFromContext(r.Context()),
			mgr:     ManagerFromContext(r.Context()),
		}
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w, got
}

func TestMiddleware_IssuesIdentity(t *testing.T) {
	w, got := serve(t, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	if !userIDFormat.MatchString(got.user) {
		t.Errorf("user id %q has wrong format", got.user)
	}
	if !sessionIDFormat.MatchString(got.session) {
		t.Errorf("session id %q has wrong format", got.session)
	}
	if got.mgr == nil {
		t.Error("manager missing from context")
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == UserIDKey {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != got.user || !cookie.HttpOnly {
		t.Errorf("user cookie = %+v", cookie)
	}
	if h := w.Header().Get(SessionHeaderName); h != got.session {
		t.Errorf("%s = %q, want %q", SessionHeaderName, h, got.session)
	}
}

func TestMiddleware_ReusesExistingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: UserIDKey, Value: "user_1_abcdefghi"})
	req.Header.Set(SessionHeaderName, "session_1_abcdefghi")

	w, got := serve(t, req)

	if got.user != "user_1_abcdefghi" || got.session != "session_1_abcdefghi" {
		t.Errorf("got %+v", got)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("existing identity should not be re-issued")
	}
	if h := w.Header().Get(SessionHeaderName); h != "" {
		t.Errorf("unexpected session header %q", h)
	}
}

func TestMiddleware_SessionFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/chat?session_id=session_9_zzzzzzzzz", nil)

	_, got := serve(t, req)

	if got.session != "session_9_zzzzzzzzz" {
		t.Errorf("session = %q", got.session)
	}
}

func TestMiddleware_RejectsMalformedValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: UserIDKey, Value: "bad value!"})
	req.Header.Set(SessionHeaderName, "<script>")

	_, got := serve(t, req)

	if !userIDFormat.MatchString(got.user) || !sessionIDFormat.MatchString(got.session) {
		t.Errorf("malformed ids should be replaced, got %+v", got)
	}
}

func TestRequestManager_ClearSessionIssuesNewID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat/new", nil)
	req.Header.Set(SessionHeaderName, "session_1_abcdefghi")
	w := httptest.NewRecorder()

	mgr := RequestManager(w, req, true)
	if err := mgr.ClearSession(req.Context()); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	sid, err := mgr.SessionID(req.Context())
	if err != nil {
		t.Fatalf("SessionID: %v", err)
	}
	if sid == "session_1_abcdefghi" || !sessionIDFormat.MatchString(sid) {
		t.Errorf("new session id = %q", sid)
	}
	if w.Header().Get(SessionHeaderName) != sid {
		t.Errorf("header not updated to new session id")
	}
}
