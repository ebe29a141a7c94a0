package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dieginin/hubsync/internal/config"
	"github.com/dieginin/hubsync/internal/flash"
	"github.com/dieginin/hubsync/internal/models"
	"github.com/dieginin/hubsync/internal/store"
	"github.com/dieginin/hubsync/internal/validation"
	"github.com/dieginin/hubsync/internal/view"
)

// StaffHandler is the admin-only user management surface. Routes behind it
// are wrapped with the admin gate.
type StaffHandler struct {
	store *store.Manager
	rules config.ValidationConfig
}

func NewStaffHandler(s *store.Manager, rules config.ValidationConfig) *StaffHandler {
	return &StaffHandler{store: s, rules: rules}
}

// Staff lists all users; POST creates a new staff account.
func (h *StaffHandler) Staff(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		h.createStaff(w, r)
		http.Redirect(w, r, "/staff", http.StatusSeeOther)
		return
	}

	users, err := h.store.ListUsers()
	if err != nil {
		flash.Set(w, "danger", "Error listing users: "+err.Error())
	}
	view.Render(w, r, "staff.html", map[string]any{"Users": users})
}

func (h *StaffHandler) createStaff(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := r.FormValue("email")
	username := r.FormValue("username")
	password := r.FormValue("password")
	role := models.Role(r.FormValue("role"))
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		flash.Set(w, "danger", "Invalid role selection")
		return
	}

	emailOwner, err := h.store.GetUserByEmail(email)
	if err != nil {
		flash.Set(w, "danger", "Error checking email: "+err.Error())
		return
	}
	if emailOwner != nil {
		flash.Set(w, "danger", "Email already exists")
		return
	}
	usernameOwner, err := h.store.GetUserByUsername(username)
	if err != nil {
		flash.Set(w, "danger", "Error checking username: "+err.Error())
		return
	}
	if usernameOwner != nil {
		flash.Set(w, "danger", "Username already exists")
		return
	}

	v := validation.Violations{}
	validation.MinLength("name", name, h.rules.MinName, v)
	if v.Empty() {
		validation.ValidEmail("email", email, h.rules.MinEmail, v)
	}
	if v.Empty() {
		validation.MinLength("username", username, h.rules.MinUsername, v)
	}
	if v.Empty() {
		validation.MinLength("password", password, h.rules.MinPassword, v)
	}
	if !v.Empty() {
		flash.Set(w, "danger", v.First("name", "email", "username", "password"))
		return
	}

	if _, err := h.store.CreateUser(name, email, username, password, role); err != nil {
		flash.Set(w, "danger", "Error creating user: "+err.Error())
		return
	}
	flash.Set(w, "success", "User created successfully")
}

// Edit updates another user's profile and role.
func (h *StaffHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		flash.Set(w, "danger", "User not found")
		http.Redirect(w, r, "/staff", http.StatusSeeOther)
		return
	}

	displayName := strings.TrimSpace(r.FormValue("display_name"))
	email := r.FormValue("email")
	username := r.FormValue("username")
	role := models.Role(r.FormValue("role"))
	if role != "" && !role.Valid() {
		flash.Set(w, "danger", "Invalid role selection")
		http.Redirect(w, r, "/staff", http.StatusSeeOther)
		return
	}

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
		http.Redirect(w, r, "/staff", http.StatusSeeOther)
		return
	}

	resp := h.store.UpdateUserProfile(uint(id), displayName, email, username, role)
	flash.Set(w, resp.Type, resp.Message)
	http.Redirect(w, r, "/staff", http.StatusSeeOther)
}

// Delete removes a user. The primary admin is protected by the store.
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		flash.Set(w, "danger", "User not found")
		http.Redirect(w, r, "/staff", http.StatusSeeOther)
		return
	}

	resp := h.store.DeleteUser(uint(id))
	flash.Set(w, resp.Type, resp.Message)
	http.Redirect(w, r, "/staff", http.StatusSeeOther)
}
