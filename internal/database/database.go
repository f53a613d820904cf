package database

import (
	"fmt"
	"log"

	"github.com/limistah/bank-reconciliation/internal/config"
	"github.com/limistah/bank-reconciliation/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the service, in migration order
func Models() []interface{} {
	return []interface{}{
		&models.ChartAccount{},
		&models.BankAccount{},
		&models.ImportConfiguration{},
		&models.ImportSession{},
		&models.BankMovement{},
		&models.LedgerDocument{},
		&models.LedgerMovement{},
		&models.Reconciliation{},
		&models.ReconciliationLine{},
		&models.AccountingConfig{},
		&models.ReconciliationAudit{},
	}
}

// Initialize connects to the configured database and runs migrations
func Initialize(cfg *config.Config) (*gorm.DB, error) {
	db, err := open(cfg, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver != "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %v", err)
		}

		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %v", err)
		}
	}

	log.Printf("Successfully connected to %s database", cfg.Database.Driver)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	log.Println("Database connected and migrated successfully")
	return db, nil
}

// InitWithConfig initializes database with provided config (useful for testing).
// The sqlite driver opens a private in-memory database.
func InitWithConfig(cfg *config.Config) (*gorm.DB, error) {
	db, err := open(cfg, ":memory:")
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == "sqlite" {
		// every connection to :memory: is a different database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %v", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Auto migrate models
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	return db, nil
}

func open(cfg *config.Config, sqlitePath string) (*gorm.DB, error) {
	gormLogger := logger.Default
	if cfg.App.Environment == "production" || cfg.App.Environment == "test" {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	gormConfig := &gorm.Config{
		Logger: gormLogger,
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.DBName,
		)
		dialector = mysql.Open(dsn)
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.DBName,
			cfg.Database.SSLMode,
		)
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %v", cfg.Database.Driver, err)
	}
	return db, nil
}
