package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"slm/config"
	"slm/logger"
	"slm/models/learning"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// ConnectDb opens the configured database and runs migrations.
func ConnectDb(cfg *config.Config, logg *logger.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if IsSQLite(db) {
		// sqlite allows a single writer; one connection keeps transactions from tripping over each other
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := RunMigrations(db, logg); err != nil {
		return nil, err
	}

	logg.Info("database connected", "driver", cfg.DBDriver)
	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBSQLitePath + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Models lists every table owned by the service, parents first.
func Models() []interface{} {
	return []interface{}{
		&learning.User{},
		&learning.Topic{},
		&learning.TopicEnrollment{},
		&learning.Module{},
		&learning.MainContent{},
		&learning.Page{},
		&learning.Quiz{},
		&learning.Question{},
		&learning.Choice{},
		&learning.Progress{},
		&learning.MainContentProgress{},
		&learning.PageProgress{},
		&learning.QuizResult{},
		&learning.SupportConversation{},
		&learning.SupportMessage{},
		&learning.Feedback{},
	}
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB, logg *logger.Logger) error {
	logg.Info("running migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logg.Info("migrations completed")
	return nil
}

func IsPostgres(db *gorm.DB) bool { return db.Dialector.Name() == "postgres" }
func IsSQLite(db *gorm.DB) bool   { return db.Dialector.Name() == "sqlite" }
