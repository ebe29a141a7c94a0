// Package server assembles the HTTP surface: routes, guards and the
// middleware chain.
package server

import (
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dieginin/hubsync/internal/auth"
	"github.com/dieginin/hubsync/internal/config"
	"github.com/dieginin/hubsync/internal/handlers"
	"github.com/dieginin/hubsync/internal/mail"
	"github.com/dieginin/hubsync/internal/middleware"
	"github.com/dieginin/hubsync/internal/store"
	"github.com/dieginin/hubsync/internal/view"
)

// New constructs the root http.Handler with all routes and middlewares
// applied.
func New(db *gorm.DB, cfg *config.Config, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	view.SetDevMode(cfg.App.Dev)

	manager := store.New(db)
	mailer := mail.New(cfg.Mail, log)

	authHandler := handlers.NewAuthHandler(manager, mailer, cfg.Validation, log)
	mainHandler := handlers.NewMainHandler(manager, cfg.Validation)
	staffHandler := handlers.NewStaffHandler(manager, cfg.Validation)
	roomHandler := handlers.NewRoomHandler(manager)
	strainHandler := handlers.NewStrainHandler(manager)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Health endpoints. /healthz additionally pings the database.
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	firstSetup := auth.FirstSetupOnly(manager)
	loginGate := auth.LoginOnlyIfConfigured(manager)

	mux.Handle("GET /first_setup", firstSetup(http.HandlerFunc(authHandler.FirstSetup)))
	mux.Handle("POST /first_setup", firstSetup(http.HandlerFunc(authHandler.FirstSetup)))
	mux.Handle("GET /login", loginGate(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /login", loginGate(http.HandlerFunc(authHandler.Login)))
	mux.Handle("GET /logout", auth.RequireLogin(http.HandlerFunc(authHandler.Logout)))
	mux.HandleFunc("GET /forgot_password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /forgot_password", authHandler.ForgotPassword)
	mux.HandleFunc("GET /reset_password/{token}", authHandler.ResetPassword)
	mux.HandleFunc("POST /reset_password/{token}", authHandler.ResetPassword)

	mux.Handle("GET /{$}", auth.RequireLogin(http.HandlerFunc(mainHandler.Home)))
	mux.Handle("GET /settings", auth.RequireLogin(http.HandlerFunc(mainHandler.Settings)))
	mux.Handle("POST /settings", auth.RequireLogin(http.HandlerFunc(mainHandler.Settings)))
	mux.Handle("GET /schedule", auth.RequireLogin(http.HandlerFunc(mainHandler.Schedule)))
	mux.Handle("GET /tasks", auth.RequireLogin(http.HandlerFunc(mainHandler.Tasks)))

	adminOnly := func(h http.HandlerFunc) http.Handler {
		return auth.RequireLogin(auth.AdminOnly(h))
	}
	mux.Handle("GET /staff", adminOnly(staffHandler.Staff))
	mux.Handle("POST /staff", adminOnly(staffHandler.Staff))
	mux.Handle("POST /staff/edit/{id}", adminOnly(staffHandler.Edit))
	mux.Handle("POST /staff/delete/{id}", adminOnly(staffHandler.Delete))

	loggedIn := func(h http.HandlerFunc) http.Handler {
		return auth.RequireLogin(h)
	}
	mux.Handle("GET /layouts", loggedIn(roomHandler.Layouts))
	mux.Handle("POST /layouts", loggedIn(roomHandler.Layouts))
	mux.Handle("GET /layouts/{id}", loggedIn(roomHandler.ViewRoom))
	mux.Handle("POST /layouts/{id}", loggedIn(roomHandler.ViewRoom))
	mux.Handle("POST /layouts/{id}/delete", loggedIn(roomHandler.DeleteRoom))
	mux.Handle("GET /layouts/{id}/add_tray", loggedIn(roomHandler.AddTray))
	mux.Handle("POST /layouts/{id}/add_tray", loggedIn(roomHandler.AddTray))
	mux.Handle("POST /layouts/{id}/edit_tray/{tray_id}", loggedIn(roomHandler.EditTray))
	mux.Handle("POST /layouts/{id}/delete_tray/{tray_id}", loggedIn(roomHandler.DeleteTray))
	mux.Handle("POST /layouts/{id}/plant_tray/{tray_id}", loggedIn(roomHandler.PlantTray))
	mux.Handle("POST /layouts/{id}/clear_tray/{tray_id}", loggedIn(roomHandler.ClearTray))

	mux.Handle("GET /strains", loggedIn(strainHandler.Strains))
	mux.Handle("POST /strains", loggedIn(strainHandler.Strains))
	mux.Handle("POST /pots/{pot_id}/assign", loggedIn(strainHandler.AssignPot))

	var root http.Handler = mux
	root = auth.Middleware(manager)(root)
	root = middleware.Prefs(root)
	root = middleware.Logging(log)(root)
	root = middleware.Recover(log)(root)
	return root
}
