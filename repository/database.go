package repository

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kutbudev/duedeck/pkg/config"
	"github.com/kutbudev/duedeck/pkg/models"
)

// Database manages the database connection and implements service.Store.
type Database struct {
	DB *gorm.DB

	// loc is the time zone due-date buckets are computed in.
	loc *time.Location
	// now is swapped out by tests.
	now func() time.Time
}

// NewDatabase opens the configured database, sets up the pool and runs the
// auto migration.
func NewDatabase(cfg *config.Config, log *logrus.Logger) (*Database, error) {
	// GORM logger configuration
	logLevel := logger.Warn
	if cfg.Database.Debug {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.Database.Path))
	default:
		dsn, err := cfg.Database.DSN()
		if err != nil {
			return nil, err
		}
		dialector = postgres.Open(dsn)
	}

	database, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Connection pool settings
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		// One connection keeps in-memory databases alive and serializes writers.
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	loc, err := cfg.Server.Location()
	if err != nil {
		return nil, err
	}

	db := &Database{DB: database, loc: loc, now: time.Now}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.WithField("driver", cfg.Database.Driver).Info("Database connection established")
	return db, nil
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return "file::memory:?_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}

// Migrate creates or updates the schema.
func (d *Database) Migrate() error {
	return d.DB.AutoMigrate(
		&models.List{},
		&models.Tag{},
		&models.Task{},
	)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks that the database answers.
func (d *Database) Health() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) clock() time.Time {
	return d.now().In(d.loc)
}
