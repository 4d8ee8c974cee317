package database

import (
	"context"
	"fmt"
	"os"
	"strings"

	"crucible/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	DB *gorm.DB
}

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewGormConnection(config Config) (*GormDB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	logLevel := logger.Warn
	if gormLogLevel := os.Getenv("GORM_LOG_LEVEL"); gormLogLevel != "" {
		switch gormLogLevel {
		case "silent":
			logLevel = logger.Silent
		case "error":
			logLevel = logger.Error
		case "warn":
			logLevel = logger.Warn
		case "info":
			logLevel = logger.Info
		}
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &GormDB{DB: db}, nil
}

func (db *GormDB) AutoMigrate() error {
	if err := db.createCustomTypes(); err != nil {
		return fmt.Errorf("failed to create custom types: %w", err)
	}

	if err := db.verifyCustomTypes(); err != nil {
		return fmt.Errorf("failed to verify custom types: %w", err)
	}

	err := db.DB.AutoMigrate(
		&models.User{},
		&models.Contest{},
		&models.Question{},
		&models.TestCase{},
		&models.Submission{},
		&models.UserContest{},
		&models.SolvedQuestion{},
		&models.ContestAdmin{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	return nil
}

func (db *GormDB) WithContext(ctx context.Context) *gorm.DB {
	return db.DB.WithContext(ctx)
}

func (db *GormDB) Transaction(ctx context.Context, fc func(tx *gorm.DB) error) error {
	return db.DB.WithContext(ctx).Transaction(fc)
}

func (db *GormDB) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (db *GormDB) createCustomTypes() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	_, err = sqlDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`)
	if err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	statusValues := make([]string, 0, len(models.PersistedSubmissionStatuses))
	for _, s := range models.PersistedSubmissionStatuses {
		statusValues = append(statusValues, string(s))
	}

	if err := db.createEnumType("submission_status", statusValues); err != nil {
		return fmt.Errorf("failed to create submission_status type: %w", err)
	}

	return nil
}

func (db *GormDB) createEnumType(typeName string, values []string) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	// Check if type already exists
	var exists bool
	checkQuery := `SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = $1)`
	err = sqlDB.QueryRow(checkQuery, typeName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if type %s exists: %w", typeName, err)
	}

	if exists {
		return nil
	}

	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = "'" + strings.ReplaceAll(value, "'", "''") + "'"
	}

	createQuery := fmt.Sprintf(`CREATE TYPE %s AS ENUM (%s)`, typeName, strings.Join(quoted, ", "))
	if _, err = sqlDB.Exec(createQuery); err != nil {
		return fmt.Errorf("failed to create type %s: %w", typeName, err)
	}

	return nil
}

func (db *GormDB) verifyCustomTypes() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	var exists bool
	row := sqlDB.QueryRow(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = $1)`, "submission_status")
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if type submission_status exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("custom type submission_status was not created successfully")
	}

	return nil
}

func (db *GormDB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
