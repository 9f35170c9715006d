package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/projectdesk/projectdesk/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Open returns a handle configured the way the application expects:
// constraint violations are translated into gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated, and sqlite enforces foreign keys.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case DriverPostgres, "postgresql", "":
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverSQLite, "sqlite3":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})

	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite || driver == "sqlite3" {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}

		// A single connection keeps :memory: databases alive and the pragma in effect.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)

		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return conn, nil
}

func ConnectDatabase(driver, dsn string) error {
	var err error

	DB, err = Open(driver, dsn)

	if err != nil {
		return err
	}

	return nil
}

// Migrate creates or updates the schema. Order matters: referenced tables first.
func Migrate(conn *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Task{},
		&models.Comment{},
	}

	for _, model := range models {
		if err := conn.AutoMigrate(model); err != nil {
			return err
		}
	}

	return nil
}

func MigrateDatabase() error {
	return Migrate(DB)
}
