package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dieginin/hubsync/internal/flash"
	"github.com/dieginin/hubsync/internal/store"
	"github.com/dieginin/hubsync/internal/view"
)

// RoomHandler manages room layouts and their trays.
type RoomHandler struct {
	store *store.Manager
}

func NewRoomHandler(s *store.Manager) *RoomHandler {
	return &RoomHandler{store: s}
}

// Layouts lists all rooms; POST creates one. Room names are normalized to
// upper case before storage.
func (h *RoomHandler) Layouts(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		name := strings.ToUpper(strings.TrimSpace(r.FormValue("name")))
		resp := h.store.CreateRoom(name)
		flash.Set(w, resp.Type, resp.Message)
		http.Redirect(w, r, "/layouts", http.StatusSeeOther)
		return
	}

	rooms, err := h.store.ListRooms()
	if err != nil {
		flash.Set(w, "danger", "Error listing rooms: "+err.Error())
	}
	view.Render(w, r, "room/layouts.html", map[string]any{"Rooms": rooms})
}

// ViewRoom shows one room with its full tray/light/pot tree; POST renames it.
func (h *RoomHandler) ViewRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "/layouts")
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		newName := strings.ToUpper(strings.TrimSpace(r.FormValue("name")))
		resp := h.store.UpdateRoomName(id, newName)
		flash.Set(w, resp.Type, resp.Message)
		http.Redirect(w, r, "/layouts/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}

	room, err := h.store.GetRoomByID(id)
	if err != nil {
		flash.Set(w, "danger", "Error loading room: "+err.Error())
		http.Redirect(w, r, "/layouts", http.StatusSeeOther)
		return
	}
	if room == nil {
		flash.Set(w, "danger", "Room not found")
		http.Redirect(w, r, "/layouts", http.StatusSeeOther)
		return
	}

	strains, err := h.store.ListStrains()
	if err != nil {
		flash.Set(w, "danger", "Error listing strains: "+err.Error())
	}
	view.Render(w, r, "room/room.html", map[string]any{"Room": room, "Strains": strains})
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "/layouts")
	if !ok {
		return
	}
	resp := h.store.DeleteRoom(id)
	flash.Set(w, resp.Type, resp.Message)
	http.Redirect(w, r, "/layouts", http.StatusSeeOther)
}

// AddTray provisions a tray with its lights and pots. Unparseable counts fall
// back to the form defaults (4 lights of 3x3).
func (h *RoomHandler) AddTray(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "/layouts")
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		name := strings.ToUpper(strings.TrimSpace(r.FormValue("name")))
		numLights := formInt(r, "num_of_lights", 4)
		width := formInt(r, "width", 3)
		height := formInt(r, "height", 3)
		resp := h.store.AddTrayToRoom(id, name, numLights, width, height)
		flash.Set(w, resp.Type, resp.Message)
	}
	http.Redirect(w, r, "/layouts/"+strconv.Itoa(int(id)), http.StatusSeeOther)
}

// EditTray renames a tray and adjusts its light layout. Changing light
// dimensions replaces the whole tray, which drops planting state.
func (h *RoomHandler) EditTray(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "id", "/layouts")
	if !ok {
		return
	}
	trayID, ok := pathID(w, r, "tray_id", "/layouts/"+strconv.Itoa(int(roomID)))
	if !ok {
		return
	}

	name := strings.ToUpper(strings.TrimSpace(r.FormValue("name")))
	numLights := formInt(r, "num_of_lights", 4)
	width := formInt(r, "width", 3)
	height := formInt(r, "height", 3)

	resp := h.store.EditTray(trayID, name, numLights, width, height)
	flash.Set(w, resp.Type, resp.Message)
	http.Redirect(w, r, "/layouts/"+strconv.Itoa(int(roomID)), http.StatusSeeOther)
}

func (h *RoomHandler) DeleteTray(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "id", "/layouts")
	if !ok {
		return
	}
	trayID, ok := pathID(w, r, "tray_id", "/layouts/"+strconv.Itoa(int(roomID)))
	if !ok {
		return
	}

	resp := h.store.DeleteTray(trayID)
	flash.Set(w, resp.Type, resp.Message)
	http.Redirect(w, r, "/layouts/"+strconv.Itoa(int(roomID)), http.StatusSeeOther)
}

// PlantTray records the planting date and, optionally, the expected harvest
// date. Dates arrive as yyyy-mm-dd from date inputs; a missing planted date
// means today.
func (h *RoomHandler) PlantTray(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "id", "/layouts")
	if !ok {
		return
	}
	trayID, ok := pathID(w, r, "tray_id", "/layouts/"+strconv.Itoa(int(roomID)))
	if !ok {
		return
	}

	planted := time.Now()
	if raw := r.FormValue("planted_date"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			planted = t
		}
	}
	var harvest *time.Time
	if raw := r.FormValue("harvest_date"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			harvest = &t
		}
	}

	resp := h.store.PlantTray(trayID, planted, harvest)
	flash.Set(w, resp.Type, resp.Message)
	http.Redirect(w, r, "/layouts/"+strconv.Itoa(int(roomID)), http.StatusSeeOther)
}

// ClearTray removes planting and harvest dates after a harvest.
func (h *RoomHandler) ClearTray(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "id", "/layouts")
	if !ok {
		return
	}
	trayID, ok := pathID(w, r, "tray_id", "/layouts/"+strconv.Itoa(int(roomID)))
	if !ok {
		return
	}

	resp := h.store.ClearTray(trayID)
	flash.Set(w, resp.Type, resp.Message)
	http.Redirect(w, r, "/layouts/"+strconv.Itoa(int(roomID)), http.StatusSeeOther)
}

// pathID parses a positive integer path segment, redirecting on garbage.
func pathID(w http.ResponseWriter, r *http.Request, name, fallback string) (uint, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		http.Redirect(w, r, fallback, http.StatusSeeOther)
		return 0, false
	}
	return uint(id), true
}

// formInt parses a form integer with a default for missing or bad values.
func formInt(r *http.Request, name string, def int) int {
	raw := r.FormValue(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
