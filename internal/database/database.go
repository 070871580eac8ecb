package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/config"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
)

// Connect opens the Postgres connection and verifies it.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate creates and updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.TenantMembership{},
		&models.Permission{},
		&models.Role{},
		&models.MemberPermission{},
		&models.Client{},
		&models.Case{},
		&models.CaseEvent{},
		&models.Document{},
		&models.Deadline{},
		&models.TimeEntry{},
		&models.AuditLog{},
	)
}
