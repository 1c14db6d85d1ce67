package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

// NewSQLiteService opens a file-backed SQLite database with foreign keys enforced,
// which the cascade from program to its children depends on.
func NewSQLiteService(logg *logger.Logger, path string) (*Service, error) {
	serviceLog := logg.With("service", "SQLiteService")
	if strings.TrimSpace(path) == "" {
		path = "researchtrack.sqlite"
	}
	db, err := gorm.Open(sqlite.Open(SQLiteDSN(path)), gormConfig(serviceLog))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite %q: %w", path, err)
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	serviceLog.Info("SQLite ready", "path", path)
	return &Service{db: db, log: serviceLog, driver: DriverSQLite}, nil
}

// SQLiteDSN appends the pragmas every pooled connection needs.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}
