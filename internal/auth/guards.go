package auth

import (
	"net/http"

	"github.com/dieginin/hubsync/internal/flash"
	"github.com/dieginin/hubsync/internal/models"
)

// Directory is the slice of the persistence facade the guards consume.
type Directory interface {
	HasUsers() (bool, error)
	GetUserByID(id uint) (*models.User, error)
}

// Middleware resolves the session cookie into a *models.User on the request
// context. A session pointing at a deleted user is cleared and treated as
// anonymous.
func Middleware(users Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid, ok := ParseSession(r); ok {
				user, err := users.GetUserByID(uid)
				if err == nil && user != nil {
					r = r.WithContext(WithUser(r.Context(), user))
				} else {
					ClearSession(w)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLogin redirects anonymous requests to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FirstSetupOnly allows access only while no user exists yet, guarding the
// bootstrap registration flow. Once the system is initialized it redirects
// to the login page.
func FirstSetupOnly(users Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			has, err := users.HasUsers()
			if err != nil || has {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginOnlyIfConfigured guards the login page itself: with no users the
// system still needs bootstrapping, and an already authenticated requester
// belongs on the home page.
func LoginOnlyIfConfigured(users Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			has, err := users.HasUsers()
			if err == nil && !has {
				http.Redirect(w, r, "/first_setup", http.StatusSeeOther)
				return
			}
			if CurrentUser(r.Context()) != nil {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly requires an authenticated admin or superadmin. Everyone else is
// flashed a denial and sent back to the referring page, or home.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil || !user.IsAdmin() {
			flash.Set(w, "danger", "Access denied. Admin privileges required")
			target := r.Referer()
			if target == "" {
				target = "/"
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
