package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dieginin/hubsync/internal/flash"
	"github.com/dieginin/hubsync/internal/store"
	"github.com/dieginin/hubsync/internal/view"
)

// StrainHandler manages the strain catalog and pot assignments.
type StrainHandler struct {
	store *store.Manager
}

func NewStrainHandler(s *store.Manager) *StrainHandler {
	return &StrainHandler{store: s}
}

// Strains lists the catalog; POST adds a new strain.
func (h *StrainHandler) Strains(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		name := strings.TrimSpace(r.FormValue("name"))
		resp := h.store.CreateStrain(name)
		flash.Set(w, resp.Type, resp.Message)
		http.Redirect(w, r, "/strains", http.StatusSeeOther)
		return
	}

	strains, err := h.store.ListStrains()
	if err != nil {
		flash.Set(w, "danger", "Error listing strains: "+err.Error())
	}
	view.Render(w, r, "strains.html", map[string]any{"Strains": strains})
}

// AssignPot sets or clears the strain on one pot. An empty strain_id clears
// the assignment.
func (h *StrainHandler) AssignPot(w http.ResponseWriter, r *http.Request) {
	potID, err := strconv.Atoi(r.PathValue("pot_id"))
	if err != nil || potID <= 0 {
		flash.Set(w, "danger", "Pot not found")
		http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
		return
	}

	var strainID *uint
	if raw := r.FormValue("strain_id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			flash.Set(w, "danger", "Strain not found")
			http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
			return
		}
		id := uint(n)
		strainID = &id
	}

	resp := h.store.AssignStrainToPot(uint(potID), strainID)
	flash.Set(w, resp.Type, resp.Message)
	http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
}

// redirectTarget sends the user back where they came from, defaulting home.
func redirectTarget(r *http.Request) string {
	if ref := r.Referer(); ref != "" {
		return ref
	}
	return "/"
}
