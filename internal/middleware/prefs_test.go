package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func themeEcho() (http.Handler, *string) {
	var got string
	h := Prefs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ThemeFrom(r)
	}))
	return h, &got
}

func TestPrefsDefaultsToAuto(t *testing.T) {
	h, got := themeEcho()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if *got != "auto" {
		t.Errorf("theme = %q, want auto", *got)
	}
}

func TestPrefsReadsCookie(t *testing.T) {
	h, got := themeEcho()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if *got != "dark" {
		t.Errorf("theme = %q, want dark", *got)
	}
}

func TestPrefsQueryOverridesAndPersists(t *testing.T) {
	h, got := themeEcho()
	req := httptest.NewRequest(http.MethodGet, "/?theme=light", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if *got != "light" {
		t.Errorf("theme = %q, want light", *got)
	}
	var persisted bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "theme" && c.Value == "light" {
			persisted = true
		}
	}
	if !persisted {
		t.Errorf("query theme not persisted in cookie")
	}
}

func TestPrefsRejectsUnknownTheme(t *testing.T) {
	h, got := themeEcho()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "neon"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if *got != "auto" {
		t.Errorf("theme = %q, want auto fallback", *got)
	}
}
