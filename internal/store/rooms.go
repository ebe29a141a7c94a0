package store

import (
	"errors"
	"time"

	"github.com/dieginin/hubsync/internal/models"
	"gorm.io/gorm"
)

// GetRoomByID returns a room with its full subtree eagerly loaded:
// trays, their lights, the lights' pots and any assigned strains, all in
// insertion order. Returns (nil, nil) when the room does not exist.
func (m *Manager) GetRoomByID(id uint) (*models.Room, error) {
	var room models.Room
	err := m.roomQuery().First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms returns all rooms with their subtrees, ordered by id.
func (m *Manager) ListRooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := m.roomQuery().Order("id").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (m *Manager) roomQuery() *gorm.DB {
	return m.db.
		Preload("Trays", func(db *gorm.DB) *gorm.DB { return db.Order("trays.id") }).
		Preload("Trays.Lights", func(db *gorm.DB) *gorm.DB { return db.Order("lights.id") }).
		Preload("Trays.Lights.Pots", func(db *gorm.DB) *gorm.DB { return db.Order("pots.id") }).
		Preload("Trays.Lights.Pots.Strain")
}

// CreateRoom creates a room with no trays. The name must be unique.
func (m *Manager) CreateRoom(name string) Response {
	existing, err := m.findRoomByName(name)
	if err != nil {
		return Danger("Error creating room: %v", err)
	}
	if existing != nil {
		return Danger("Room already exists")
	}
	room := models.Room{Name: name}
	if err := m.db.Transaction(func(tx *gorm.DB) error { return tx.Create(&room).Error }); err != nil {
		return Danger("Error creating room: %v", err)
	}
	return Success("Room %s created successfully", name)
}

// DeleteRoom removes a room and cascades over its trays, lights and pots.
func (m *Manager) DeleteRoom(roomID uint) Response {
	room, err := m.GetRoomByID(roomID)
	if err != nil {
		return Danger("Error deleting room: %v", err)
	}
	if room == nil {
		return Danger("Room not found")
	}
	err = m.db.Transaction(func(tx *gorm.DB) error {
		for i := range room.Trays {
			if err := deleteTrayCascade(tx, room.Trays[i].ID); err != nil {
				return err
			}
		}
		return tx.Delete(&models.Room{}, roomID).Error
	})
	if err != nil {
		return Danger("Error deleting room: %v", err)
	}
	return Success("Room %s deleted successfully", room.Name)
}

// UpdateRoomName renames a room. Renaming to another room's name fails;
// renaming to the room's own current name is a no-op success.
func (m *Manager) UpdateRoomName(roomID uint, newName string) Response {
	room, err := m.GetRoomByID(roomID)
	if err != nil {
		return Danger("Error updating room name: %v", err)
	}
	if room == nil {
		return Danger("Room not found")
	}
	existing, err := m.findRoomByName(newName)
	if err != nil {
		return Danger("Error updating room name: %v", err)
	}
	if existing != nil && existing.ID != roomID {
		return Danger("Room name already exists")
	}
	err = m.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Room{}).Where("id = ?", roomID).Update("name", newName).Error
	})
	if err != nil {
		return Danger("Error updating room name: %v", err)
	}
	return Success("Room %s updated successfully", newName)
}

func (m *Manager) findRoomByName(name string) (*models.Room, error) {
	var room models.Room
	err := m.db.Where("name = ?", name).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetTrayByID returns a tray with lights, pots and strains eagerly loaded,
// or (nil, nil) when absent.
func (m *Manager) GetTrayByID(id uint) (*models.Tray, error) {
	var tray models.Tray
	err := m.db.
		Preload("Lights", func(db *gorm.DB) *gorm.DB { return db.Order("lights.id") }).
		Preload("Lights.Pots", func(db *gorm.DB) *gorm.DB { return db.Order("pots.id") }).
		Preload("Lights.Pots.Strain").
		First(&tray, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tray, nil
}

// AddTrayToRoom creates a tray owned by the room with numLights lights, each
// width x height, each populated with width*height empty pots.
func (m *Manager) AddTrayToRoom(roomID uint, name string, numLights, width, height int) Response {
	room, err := m.GetRoomByID(roomID)
	if err != nil {
		return Danger("Error adding tray to room: %v", err)
	}
	if room == nil {
		return Danger("Room not found")
	}
	err = m.db.Transaction(func(tx *gorm.DB) error {
		_, err := createTray(tx, roomID, name, numLights, width, height)
		return err
	})
	if err != nil {
		return Danger("Error adding tray to room: %v", err)
	}
	return Success("Tray %s added to %s successfully", name, room.Name)
}

// EditTray renames a tray and reconciles its light layout.
//
// A light-count change trims excess lights or appends new ones using the
// first light's width/height as the template, leaving surviving lights and
// their pot/strain assignments untouched. A dimension change instead deletes
// and recreates the whole tray under the same room: planting dates and pot
// assignments are discarded. That replacement is intentional, documented
// behavior, not an accident.
func (m *Manager) EditTray(trayID uint, name string, numLights, width, height int) Response {
	tray, err := m.GetTrayByID(trayID)
	if err != nil {
		return Danger("Error updating tray: %v", err)
	}
	if tray == nil {
		return Danger("Tray not found")
	}

	if len(tray.Lights) == 0 || tray.Lights[0].Width != width || tray.Lights[0].Height != height {
		err = m.db.Transaction(func(tx *gorm.DB) error {
			if err := deleteTrayCascade(tx, tray.ID); err != nil {
				return err
			}
			_, err := createTray(tx, tray.RoomID, name, numLights, width, height)
			return err
		})
		if err != nil {
			return Danger("Error updating tray: %v", err)
		}
		return Success("Tray %s updated successfully", name)
	}

	template := tray.Lights[0]
	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Tray{}).Where("id = ?", tray.ID).Update("name", name).Error; err != nil {
			return err
		}
		diff := len(tray.Lights) - numLights
		switch {
		case diff > 0:
			for _, light := range tray.Lights[len(tray.Lights)-diff:] {
				if err := deleteLightCascade(tx, light.ID); err != nil {
					return err
				}
			}
		case diff < 0:
			for i := 0; i < -diff; i++ {
				if err := addLight(tx, tray.ID, template.Width, template.Height); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return Danger("Error updating tray: %v", err)
	}
	return Success("Tray %s updated successfully", name)
}

// DeleteTray removes a tray and its lights and pots.
func (m *Manager) DeleteTray(trayID uint) Response {
	tray, err := m.GetTrayByID(trayID)
	if err != nil {
		return Danger("Error deleting tray: %v", err)
	}
	if tray == nil {
		return Danger("Tray not found")
	}
	err = m.db.Transaction(func(tx *gorm.DB) error { return deleteTrayCascade(tx, trayID) })
	if err != nil {
		return Danger("Error deleting tray: %v", err)
	}
	return Success("Tray %s deleted successfully", tray.Name)
}

// PlantTray records a planting date and an optional harvest date.
func (m *Manager) PlantTray(trayID uint, planted time.Time, harvest *time.Time) Response {
	tray, err := m.GetTrayByID(trayID)
	if err != nil {
		return Danger("Error planting tray: %v", err)
	}
	if tray == nil {
		return Danger("Tray not found")
	}
	err = m.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Tray{}).Where("id = ?", trayID).
			Updates(map[string]any{"planted_date": planted, "harvest_date": harvest}).Error
	})
	if err != nil {
		return Danger("Error planting tray: %v", err)
	}
	return Success("Tray %s planted successfully", tray.Name)
}

// ClearTray removes the planting and harvest dates from a tray.
func (m *Manager) ClearTray(trayID uint) Response {
	tray, err := m.GetTrayByID(trayID)
	if err != nil {
		return Danger("Error clearing tray: %v", err)
	}
	if tray == nil {
		return Danger("Tray not found")
	}
	err = m.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Tray{}).Where("id = ?", trayID).
			Updates(map[string]any{"planted_date": nil, "harvest_date": nil}).Error
	})
	if err != nil {
		return Danger("Error clearing tray: %v", err)
	}
	return Success("Tray %s cleared successfully", tray.Name)
}

// createTray inserts a tray with its lights and pots inside the caller's
// transaction.
func createTray(tx *gorm.DB, roomID uint, name string, numLights, width, height int) (*models.Tray, error) {
	tray := models.Tray{RoomID: roomID, Name: name}
	if err := tx.Create(&tray).Error; err != nil {
		return nil, err
	}
	for i := 0; i < numLights; i++ {
		if err := addLight(tx, tray.ID, width, height); err != nil {
			return nil, err
		}
	}
	return &tray, nil
}

// addLight inserts one light sized width x height with width*height empty pots.
func addLight(tx *gorm.DB, trayID uint, width, height int) error {
	light := models.Light{TrayID: trayID, Width: width, Height: height}
	if err := tx.Create(&light).Error; err != nil {
		return err
	}
	count := width * height
	if count <= 0 {
		return nil
	}
	pots := make([]models.Pot, count)
	for i := range pots {
		pots[i].LightID = light.ID
	}
	return tx.Create(&pots).Error
}

func deleteLightCascade(tx *gorm.DB, lightID uint) error {
	if err := tx.Where("light_id = ?", lightID).Delete(&models.Pot{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Light{}, lightID).Error
}

func deleteTrayCascade(tx *gorm.DB, trayID uint) error {
	var lightIDs []uint
	if err := tx.Model(&models.Light{}).Where("tray_id = ?", trayID).Pluck("id", &lightIDs).Error; err != nil {
		return err
	}
	if len(lightIDs) > 0 {
		if err := tx.Where("light_id IN ?", lightIDs).Delete(&models.Pot{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", lightIDs).Delete(&models.Light{}).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&models.Tray{}, trayID).Error
}
