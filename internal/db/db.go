package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/response-validator/internal/domain/ecosystem"
	"github.com/yungbote/response-validator/internal/domain/featureweights"
	"github.com/yungbote/response-validator/internal/platform/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver  string
	DataDir string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
}

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the configured database. SQLite stores validator.db in
// DataDir.
func Open(cfg Config, log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DatabaseService")
	gcfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Warn),
	}

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres:
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresName)
		log.Info("Connecting to Postgres...", "host", cfg.PostgresHost, "database", cfg.PostgresName)
		dialector = postgres.Open(dsn)
	case DriverSQLite, "":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir %s: %w", cfg.DataDir, err)
		}
		path := filepath.Join(cfg.DataDir, "validator.db")
		log.Info("Opening SQLite database...", "path", path)
		dialector = sqlite.Open(path + "?_busy_timeout=5000&_journal_mode=WAL")
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, gcfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &Service{db: gdb, log: serviceLog}, nil
}

// AutoMigrateAll creates or updates every table the validator owns.
func AutoMigrateAll(gdb *gorm.DB) error {
	models := append(ecosystem.Models(), featureweights.Models()...)
	return gdb.AutoMigrate(models...)
}

func (s *Service) AutoMigrate() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
