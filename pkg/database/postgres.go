package database

import (
	"fmt"
	"log"
	"time"

	"whereiscurtis/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func Connect(config Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Настройка пула соединений
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connected successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Event{},
		&models.APIRequest{},
		&models.BackupAttempt{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migration completed successfully")
	return nil
}

// Reset дропает таблицы и накатывает схему заново (дебаг-операция).
func Reset(db *gorm.DB) error {
	err := db.Migrator().DropTable(
		&models.Event{},
		&models.APIRequest{},
		&models.BackupAttempt{},
	)
	if err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}

	return Migrate(db)
}

func createIndexes(db *gorm.DB) error {
	// Индекс под выборки по времени события
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_unix_time ON events(unix_time DESC)").Error; err != nil {
		return err
	}

	// Индексы под "последняя запись" в аудите и бэкапах
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_api_requests_created_at ON api_requests(created_at DESC)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_backup_attempts_created_at ON backup_attempts(created_at DESC)").Error; err != nil {
		return err
	}

	return nil
}
