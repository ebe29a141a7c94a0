package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dieginin/hubsync/internal/models"
)

type fakeDirectory struct {
	users map[uint]*models.User
}

func (f *fakeDirectory) HasUsers() (bool, error) { return len(f.users) > 0, nil }

func (f *fakeDirectory) GetUserByID(id uint) (*models.User, error) {
	return f.users[id], nil
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func sessionCookie(t *testing.T, userID uint) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	CreateSession(rec, userID)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatalf("no session cookie issued")
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	cookie := sessionCookie(t, 7)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	uid, ok := ParseSession(req)
	if !ok || uid != 7 {
		t.Fatalf("ParseSession = (%d, %v), want (7, true)", uid, ok)
	}
}

func TestSessionTamperedSignatureRejected(t *testing.T) {
	cookie := sessionCookie(t, 7)
	cookie.Value = "8." + cookie.Value[len("7."):]
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	if _, ok := ParseSession(req); ok {
		t.Fatalf("tampered session accepted")
	}
}

func TestMiddlewareResolvesUser(t *testing.T) {
	dir := &fakeDirectory{users: map[uint]*models.User{
		3: {ID: 3, Username: "ada", Role: models.RoleMember},
	}}
	var seen *models.User
	h := Middleware(dir)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, 3))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil || seen.ID != 3 {
		t.Fatalf("middleware did not resolve user: %+v", seen)
	}
}

func TestMiddlewareClearsStaleSession(t *testing.T) {
	dir := &fakeDirectory{users: map[uint]*models.User{}}
	var seen *models.User
	h := Middleware(dir)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, 42))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != nil {
		t.Fatalf("stale session resolved to user %+v", seen)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("stale session cookie not cleared")
	}
}

func TestFirstSetupGate(t *testing.T) {
	dir := &fakeDirectory{users: map[uint]*models.User{}}
	h, called := okHandler()
	guard := FirstSetupOnly(dir)(h)

	// Fresh store: setup is reachable.
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/first_setup", nil))
	if !*called || rec.Code != http.StatusOK {
		t.Fatalf("setup blocked on fresh store: code=%d", rec.Code)
	}

	// Once a user exists the gate redirects to login.
	dir.users[1] = &models.User{ID: 1}
	*called = false
	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/first_setup", nil))
	if *called {
		t.Fatalf("setup reachable after initialization")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginGate(t *testing.T) {
	dir := &fakeDirectory{users: map[uint]*models.User{}}
	h, called := okHandler()
	guard := Middleware(dir)(LoginOnlyIfConfigured(dir)(h))

	// Unconfigured system: login redirects to first setup.
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if *called || rec.Header().Get("Location") != "/first_setup" {
		t.Fatalf("expected redirect to /first_setup, got %q", rec.Header().Get("Location"))
	}

	dir.users[1] = &models.User{ID: 1, Role: models.RoleSuperadmin}

	// Configured, anonymous: the login page renders.
	*called = false
	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if !*called {
		t.Fatalf("anonymous login request blocked: %d -> %q", rec.Code, rec.Header().Get("Location"))
	}

	// Already authenticated: straight to home.
	*called = false
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(sessionCookie(t, 1))
	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if *called || rec.Header().Get("Location") != "/" {
		t.Fatalf("authenticated login request not redirected home")
	}
}

func TestRequireLogin(t *testing.T) {
	dir := &fakeDirectory{users: map[uint]*models.User{1: {ID: 1}}}
	h, called := okHandler()
	guard := Middleware(dir)(RequireLogin(h))

	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if *called || rec.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous request not redirected to login")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, 1))
	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if !*called {
		t.Fatalf("authenticated request blocked")
	}
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name    string
		role    models.Role
		allowed bool
	}{
		{"member denied", models.RoleMember, false},
		{"admin allowed", models.RoleAdmin, true},
		{"superadmin allowed", models.RoleSuperadmin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := &fakeDirectory{users: map[uint]*models.User{1: {ID: 1, Role: tt.role}}}
			h, called := okHandler()
			guard := Middleware(dir)(AdminOnly(h))

			req := httptest.NewRequest(http.MethodGet, "/staff", nil)
			req.Header.Set("Referer", "/somewhere")
			req.AddCookie(sessionCookie(t, 1))
			rec := httptest.NewRecorder()
			guard.ServeHTTP(rec, req)
			if *called != tt.allowed {
				t.Fatalf("called=%v, want %v", *called, tt.allowed)
			}
			if !tt.allowed {
				if rec.Header().Get("Location") != "/somewhere" {
					t.Errorf("denied request not sent back to referrer: %q", rec.Header().Get("Location"))
				}
				// Denial carries a flash message.
				foundFlash := false
				for _, c := range rec.Result().Cookies() {
					if c.Name == "flash" && c.Value != "" {
						foundFlash = true
					}
				}
				if !foundFlash {
					t.Errorf("denial did not flash a message")
				}
			}
		})
	}
}
