package database

import (
	"fmt"
	"log/slog"

	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.SSLMode == "disable" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying db: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to database", "host", cfg.Host, "database", cfg.Name)

	return db, nil
}

// Models lists every persisted model, parents before children.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Company{},
		&models.CompanySettings{},
		&models.Profile{},
		&models.CompanyProfile{},
		&models.DefaultDescription{},
		&models.DefaultParagraph{},
		&models.Proposal{},
		&models.Need{},
		&models.Paragraph{},
		&models.Workflow{},
		&models.Step{},
		&models.SubStep{},
		&models.Question{},
		&models.StepperSession{},
		&models.StepperResponse{},
	}
}

// AutoMigrate creates the schema from the models. Production databases are
// migrated with the SQL files instead (see MigrateUp); this is used by tests and
// local SQLite setups.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
