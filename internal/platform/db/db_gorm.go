// Package db opens the gorm connection and migrates the schema.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	runadapters "ngx_pipeline/internal/feature/runs/adapters"
	stockadapters "ngx_pipeline/internal/feature/stocks/adapters"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Config describes the database to connect to.
type Config struct {
	Driver       string
	Path         string // sqlite file
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQL instance, reached through its unix socket
	// RunMigrations creates or updates the tables on open.
	RunMigrations bool
	// HistoryUniqueIndex adds the (stock_id, date) unique index on migrate.
	HistoryUniqueIndex bool
	ConnectTimeout     time.Duration
}

// LoadConfigFromEnv reads the database configuration from environment variables.
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:             os.Getenv("DB_DRIVER"),
		Path:               os.Getenv("DB_PATH"),
		User:               os.Getenv("DB_USER"),
		Password:           os.Getenv("DB_PASSWORD"),
		Name:               os.Getenv("DB_NAME"),
		Host:               os.Getenv("DB_HOST"),
		Port:               os.Getenv("DB_PORT"),
		SSLMode:            os.Getenv("DB_SSLMODE"),
		InstanceName:       os.Getenv("INSTANCE_CONNECTION_NAME"),
		RunMigrations:      os.Getenv("RUN_MIGRATIONS") != "false",
		HistoryUniqueIndex: os.Getenv("HISTORY_UNIQUE_INDEX") == "true",
		ConnectTimeout:     60 * time.Second,
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Path == "" {
		cfg.Path = "ngx_pipeline.db"
	}
	if cfg.Port == "" {
		cfg.Port = "5432"
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if v, err := strconv.Atoi(os.Getenv("DB_CONNECT_TIMEOUT_SEC")); err == nil && v > 0 {
		cfg.ConnectTimeout = time.Duration(v) * time.Second
	}
	return cfg
}

// BuildDSN returns the connection string for cfg.Driver.
func BuildDSN(cfg Config) string {
	if cfg.Driver != DriverPostgres {
		return cfg.Path
	}
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// OpenerFor returns the Opener of a driver.
func OpenerFor(driver string) (Opener, error) {
	switch driver {
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(postgres.Open(dsn), &gorm.Config{}) }, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(sqlite.Open(dsn), &gorm.Config{}) }, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// ConnectWithRetry は open が成功するか timeout を過ぎるまでリトライします。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err)
		time.Sleep(min(retryInterval, remaining))
	}
}

// OpenDB は DB に接続し、設定されていればスキーマをマイグレーションします。
func OpenDB(cfg Config) (*gorm.DB, error) {
	open, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, open)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// SQLite は書き込みが直列なので接続は1本（"database is locked" 回避）
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if cfg.RunMigrations {
		if err := Migrate(db, cfg.HistoryUniqueIndex); err != nil {
			return nil, err
		}
	}
	slog.Info("database ready", "driver", cfg.Driver, "migrated", cfg.RunMigrations, "history_unique_index", cfg.HistoryUniqueIndex)
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB, historyUniqueIndex bool) error {
	if err := stockadapters.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate stocks: %w", err)
	}
	if err := runadapters.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate runs: %w", err)
	}
	if historyUniqueIndex {
		if err := stockadapters.EnsureHistoryUniqueIndex(db); err != nil {
			return fmt.Errorf("create history unique index: %w", err)
		}
	}
	return nil
}
