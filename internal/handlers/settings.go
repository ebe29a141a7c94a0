package handlers

import (
	"net/http"
	"strings"

	"github.com/dieginin/hubsync/internal/auth"
	"github.com/dieginin/hubsync/internal/config"
	"github.com/dieginin/hubsync/internal/flash"
	"github.com/dieginin/hubsync/internal/middleware"
	"github.com/dieginin/hubsync/internal/store"
	"github.com/dieginin/hubsync/internal/validation"
	"github.com/dieginin/hubsync/internal/view"
)

// MainHandler serves the home page and the self-service settings page.
type MainHandler struct {
	store *store.Manager
	rules config.ValidationConfig
}

func NewMainHandler(s *store.Manager, rules config.ValidationConfig) *MainHandler {
	return &MainHandler{store: s, rules: rules}
}

func (h *MainHandler) Home(w http.ResponseWriter, r *http.Request) {
	view.Render(w, r, "home.html", nil)
}

func (h *MainHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	view.Render(w, r, "team/schedule.html", nil)
}

func (h *MainHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	view.Render(w, r, "team/tasks.html", nil)
}

// Settings dispatches on form_type: the page hosts three independent forms
// (profile, password, theme) that all POST to the same route.
func (h *MainHandler) Settings(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		switch r.FormValue("form_type") {
		case "profile":
			h.updateProfile(w, r)
		case "password":
			h.changePassword(w, r)
		case "theme":
			h.saveTheme(w, r)
		}
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	view.Render(w, r, "settings.html", nil)
}

func (h *MainHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())
	displayName := strings.TrimSpace(r.FormValue("display_name"))
	username := r.FormValue("username")
	email := r.FormValue("email")

	v := validation.Violations{}
	validation.MinLength("display_name", displayName, h.rules.MinName, v)
	if v.Empty() {
		validation.MinLength("username", username, h.rules.MinUsername, v)
	}
	if v.Empty() {
		validation.ValidEmail("email", email, h.rules.MinEmail, v)
	}
	if !v.Empty() {
		flash.Set(w, "danger", v.First("display_name", "username", "email"))
		return
	}

	resp := h.store.UpdateUserProfile(user.ID, displayName, email, username, "")
	flash.Set(w, resp.Type, resp.Message)
}

func (h *MainHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())
	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	switch {
	case current == "":
		flash.Set(w, "danger", "Current password is required")
	case len([]rune(newPassword)) < h.rules.MinPassword:
		v := validation.Violations{}
		validation.MinLength("new_password", newPassword, h.rules.MinPassword, v)
		flash.Set(w, "danger", v.First("new_password"))
	case newPassword != confirm:
		flash.Set(w, "danger", "New passwords do not match")
	case current == newPassword:
		flash.Set(w, "danger", "New password must be different from current password")
	default:
		resp := h.store.ChangePassword(current, newPassword, user.Email)
		flash.Set(w, resp.Type, resp.Message)
	}
}

func (h *MainHandler) saveTheme(w http.ResponseWriter, r *http.Request) {
	theme := r.FormValue("theme")
	if theme == "" {
		theme = "auto"
	}
	if theme != "auto" && theme != "light" && theme != "dark" {
		flash.Set(w, "danger", "Invalid theme selection")
		return
	}
	middleware.SetTheme(w, theme)
	flash.Set(w, "success", "Theme preference saved successfully")
}
