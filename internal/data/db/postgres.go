package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string

	SQLitePath string
}

func (c Config) postgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresName,
	)
}

// Service owns the process-wide *gorm.DB.
type Service struct {
	db     *gorm.DB
	log    *logger.Logger
	driver string
}

// Open connects to the configured driver. Postgres is the default.
func Open(logg *logger.Logger, cfg Config) (*Service, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverPostgres:
		return NewPostgresService(logg, cfg)
	case DriverSQLite:
		return NewSQLiteService(logg, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}
}

func NewPostgresService(logg *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := logg.With("service", "PostgresService")

	db, err := gorm.Open(postgres.Open(cfg.postgresDSN()), gormConfig(serviceLog))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	serviceLog.Info("Connected to Postgres", "host", cfg.PostgresHost, "db", cfg.PostgresName)
	return &Service{db: db, log: serviceLog, driver: DriverPostgres}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Driver() string { return s.driver }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig(log *logger.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormLogger.New(
			gormWriter{log: log},
			gormLogger.Config{
				SlowThreshold:             1 * time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

// gormWriter routes gorm's own log lines into zap.
type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.SugaredLogger.Warnf(format, args...)
}
