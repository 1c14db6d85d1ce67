package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/researchtrack-backend/internal/domain"
)

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&types.Program{},
		&types.Deadline{},
		&types.Person{},
		&types.Link{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_program_user_created ON program(user_id, created_at)`).Error; err != nil {
		return fmt.Errorf("create idx_program_user_created: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
