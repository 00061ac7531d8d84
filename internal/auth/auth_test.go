package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, 42)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	uid, ok := ParseSession(req)
	if !ok || uid != 42 {
		t.Fatalf("ParseSession = (%d, %v), want (42, true)", uid, ok)
	}
}

func TestParseSessionRejectsTamperedCookie(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, 42)
	c := w.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: c.Name, Value: "99." + c.Value[len("42."):]})
	if _, ok := ParseSession(req); ok {
		t.Fatal("tampered cookie accepted")
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached without a session")
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestRequireAuthHonorsVerifier(t *testing.T) {
	SetUserVerifier(func(ctx context.Context, uid uint) bool { return false })
	defer SetUserVerifier(nil)

	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached for a rejected user")
	}))
	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	req = req.WithContext(WithUserID(req.Context(), 7))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}
