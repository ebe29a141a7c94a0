package store

import "github.com/dieginin/hubsync/internal/models"

// AllModels lists every persisted entity in migration order.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.PasswordResetToken{},
		&models.Strain{},
		&models.Room{},
		&models.Tray{},
		&models.Light{},
		&models.Pot{},
	}
}

// CreateTables creates the schema for every entity.
func (m *Manager) CreateTables() error {
	return m.db.AutoMigrate(AllModels()...)
}

// DropTables drops every entity table, children first.
func (m *Manager) DropTables() error {
	all := AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(all[i]); err != nil {
			return err
		}
	}
	return nil
}

// ResetDatabase drops and recreates the whole schema.
func (m *Manager) ResetDatabase() error {
	if err := m.DropTables(); err != nil {
		return err
	}
	return m.CreateTables()
}
