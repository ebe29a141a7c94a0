// Package view renders HTML pages: layout.html wraps every page template,
// parsed templates are cached, and common data (current user, theme, flash)
// is injected for the layout to use.
package view

import (
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dieginin/hubsync/internal/auth"
	"github.com/dieginin/hubsync/internal/flash"
	"github.com/dieginin/hubsync/internal/middleware"
)

var (
	baseDir  string
	once     sync.Once
	devMode  bool
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

func detectBase() {
	candidates := []string{"templates", "../templates", "../../templates", "../../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// SetBaseDir overrides the template base directory (useful for tests).
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseDir = filepath.Clean(path)
	once = sync.Once{}
}

// SetDevMode disables the template cache so edits show up without a restart.
// Wired from config.App.Dev at server construction.
func SetDevMode(dev bool) {
	devMode = dev
}

// ResetForTests clears the template cache and forces base dir detection to
// rerun, avoiding cross-test pollution when working directories change.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
	baseDir = ""
	once = sync.Once{}
}

// Funcs returns the shared template func map. Request-scoped values such as
// the theme travel through the data map, never through funcs, because parsed
// templates are cached across requests.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"year": func() int { return time.Now().Year() },
	}
}

// Render parses and executes a page template wrapped in layout.html.
// name is the template path relative to the templates root
// (e.g. "login.html", "room/layouts.html").
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	if baseDir == "" {
		once.Do(detectBase)
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["CurrentUser"]; !exists {
		data["CurrentUser"] = auth.CurrentUser(r.Context())
	}
	if _, exists := data["Theme"]; !exists {
		data["Theme"] = middleware.ThemeFrom(r)
	}
	if _, exists := data["Flash"]; !exists {
		if msg, ok := flash.Pop(w, r); ok {
			data["Flash"] = msg
		}
	}

	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok && t != nil {
			return t.Execute(w, data)
		}
	}

	layoutPath := filepath.Join(baseDir, "layout.html")
	mainPath := filepath.Join(baseDir, filepath.FromSlash(name))
	t, err := template.New("layout.html").Funcs(Funcs()).ParseFiles(layoutPath, mainPath)
	if err != nil {
		return err
	}

	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return t.Execute(w, data)
}
