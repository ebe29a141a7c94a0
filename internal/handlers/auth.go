package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dieginin/hubsync/internal/auth"
	"github.com/dieginin/hubsync/internal/config"
	"github.com/dieginin/hubsync/internal/flash"
	"github.com/dieginin/hubsync/internal/mail"
	"github.com/dieginin/hubsync/internal/models"
	"github.com/dieginin/hubsync/internal/store"
	"github.com/dieginin/hubsync/internal/validation"
	"github.com/dieginin/hubsync/internal/view"
)

// AuthHandler covers registration bootstrap, login/logout and the password
// reset flow.
type AuthHandler struct {
	store  *store.Manager
	mailer *mail.Mailer
	rules  config.ValidationConfig
	log    *zap.Logger
}

func NewAuthHandler(s *store.Manager, m *mail.Mailer, rules config.ValidationConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{store: s, mailer: m, rules: rules, log: log}
}

// FirstSetup bootstraps the first account. The guard in front of this route
// already ensures no user exists; the created account is always a superadmin.
func (h *AuthHandler) FirstSetup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		view.Render(w, r, "first_setup.html", nil)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := r.FormValue("email")
	username := r.FormValue("username")
	password := r.FormValue("password1")
	password2 := r.FormValue("password2")

	emailOwner, err := h.store.GetUserByEmail(email)
	if err != nil {
		flash.Set(w, "danger", "Error checking email: "+err.Error())
		http.Redirect(w, r, "/first_setup", http.StatusSeeOther)
		return
	}
	usernameOwner, err := h.store.GetUserByUsername(username)
	if err != nil {
		flash.Set(w, "danger", "Error checking username: "+err.Error())
		http.Redirect(w, r, "/first_setup", http.StatusSeeOther)
		return
	}

	v := validation.Violations{}
	switch {
	case emailOwner != nil:
		v["email"] = "Email already exists"
	case usernameOwner != nil:
		v["username"] = "Username already exists"
	default:
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
		if v.Empty() {
			validation.Match("password", password, password2, "Passwords don't match", v)
		}
	}
	if !v.Empty() {
		flash.Set(w, "danger", v.First("email", "username", "name", "password"))
		http.Redirect(w, r, "/first_setup", http.StatusSeeOther)
		return
	}

	user, err := h.store.CreateUser(name, email, username, password, models.RoleSuperadmin)
	if err != nil {
		flash.Set(w, "danger", "Error creating user: "+err.Error())
		http.Redirect(w, r, "/first_setup", http.StatusSeeOther)
		return
	}

	auth.CreateSession(w, user.ID)
	flash.Set(w, "success", "Registration successful")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Login authenticates by email or username. The field is treated as an email
// when it looks like one, mirroring the single-input login form.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		view.Render(w, r, "login.html", nil)
		return
	}

	emailOrUsername := r.FormValue("email_or_username")
	password := r.FormValue("password")

	var (
		user *models.User
		err  error
	)
	if validation.IsEmail(emailOrUsername) {
		user, err = h.store.GetUserByEmail(emailOrUsername)
	} else {
		user, err = h.store.GetUserByUsername(emailOrUsername)
	}
	if err != nil {
		flash.Set(w, "danger", "Error logging in: "+err.Error())
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if user == nil {
		if validation.IsEmail(emailOrUsername) {
			flash.Set(w, "danger", "Email does not exist")
		} else {
			flash.Set(w, "danger", "Username does not exist")
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		flash.Set(w, "danger", "Incorrect password, try again")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	auth.CreateSession(w, user.ID)
	flash.Set(w, "success", "Login successful")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	flash.Set(w, "success", "Logout successful")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ForgotPassword always shows the same confirmation whether or not the email
// belongs to an account, so the form cannot be used to enumerate users.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		view.Render(w, r, "forgot_password.html", nil)
		return
	}

	email := r.FormValue("email")
	h.sendResetEmail(email)

	flash.Set(w, "info", "If an account with that email exists, a password reset link has been sent")
	http.Redirect(w, r, "/forgot_password", http.StatusSeeOther)
}

// sendResetEmail looks up the account and mails a fresh token. All failures
// are logged and swallowed; the caller shows the generic confirmation either
// way.
func (h *AuthHandler) sendResetEmail(email string) {
	user, err := h.store.GetUserByEmail(email)
	if err != nil {
		h.log.Error("reset lookup failed", zap.Error(err))
		return
	}
	if user == nil {
		return
	}
	token, err := h.store.GeneratePasswordResetToken(user)
	if err != nil {
		h.log.Error("reset token generation failed", zap.Error(err))
		return
	}
	if err := h.mailer.SendPasswordReset(user.Email, token); err != nil {
		h.log.Error("failed to send email", zap.Error(err))
	}
}

// ResetPassword consumes the emailed token. GET verifies it is still live so
// the form is only shown for usable tokens; POST verifies again, sets the new
// password and marks the token used.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("token")

	email, token, err := h.store.VerifyPasswordResetToken(raw)
	if err != nil {
		flash.Set(w, "danger", "Error verifying token: "+err.Error())
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if token == nil {
		flash.Set(w, "danger", "Invalid or expired reset link")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		view.Render(w, r, "reset_password.html", map[string]any{"Token": raw})
		return
	}

	password := r.FormValue("password1")
	password2 := r.FormValue("password2")

	v := validation.Violations{}
	validation.MinLength("password", password, h.rules.MinPassword, v)
	if v.Empty() {
		validation.Match("password", password, password2, "Passwords don't match", v)
	}
	if !v.Empty() {
		flash.Set(w, "danger", v.First("password"))
		http.Redirect(w, r, "/reset_password/"+raw, http.StatusSeeOther)
		return
	}

	resp := h.store.ResetPassword(password, email)
	if resp.OK() {
		if err := h.store.MarkTokenUsed(token); err != nil {
			h.log.Error("failed to mark token used", zap.Error(err))
		}
	}
	flash.Set(w, resp.Type, resp.Message)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
