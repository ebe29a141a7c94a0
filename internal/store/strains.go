package store

import (
	"errors"

	"github.com/dieginin/hubsync/internal/models"
	"gorm.io/gorm"
)

// ListStrains returns all strains ordered by name.
func (m *Manager) ListStrains() ([]models.Strain, error) {
	var strains []models.Strain
	if err := m.db.Order("name").Find(&strains).Error; err != nil {
		return nil, err
	}
	return strains, nil
}

// CreateStrain creates a strain. The name must be unique.
func (m *Manager) CreateStrain(name string) Response {
	var existing models.Strain
	err := m.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return Danger("Strain already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Danger("Error creating strain: %v", err)
	}
	strain := models.Strain{Name: name}
	if err := m.db.Transaction(func(tx *gorm.DB) error { return tx.Create(&strain).Error }); err != nil {
		return Danger("Error creating strain: %v", err)
	}
	return Success("Strain %s created successfully", name)
}

// AssignStrainToPot places a strain in a pot, or clears the pot when
// strainID is nil.
func (m *Manager) AssignStrainToPot(potID uint, strainID *uint) Response {
	var pot models.Pot
	err := m.db.First(&pot, potID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Danger("Pot not found")
	}
	if err != nil {
		return Danger("Error updating pot: %v", err)
	}
	if strainID != nil {
		var strain models.Strain
		err := m.db.First(&strain, *strainID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Danger("Strain not found")
		}
		if err != nil {
			return Danger("Error updating pot: %v", err)
		}
	}
	err = m.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Pot{}).Where("id = ?", potID).Update("strain_id", strainID).Error
	})
	if err != nil {
		return Danger("Error updating pot: %v", err)
	}
	return Success("Pot updated successfully")
}
