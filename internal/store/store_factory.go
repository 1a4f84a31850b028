package store

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"classlive/internal/config"
	"classlive/internal/repository"
	"classlive/internal/signaling"
	"classlive/internal/store/memory"
	"classlive/internal/store/mysql"
)

// ClassroomDirectory combines the read-side lookups the signaling hub needs.
type ClassroomDirectory interface {
	signaling.MeetingStore
	signaling.MembershipGuard
	signaling.UserDirectory
}

// NewStore selects the notification repository from configuration: MySQL when
// a DSN is set, otherwise the in-memory fallback.
func NewStore(cfg *config.Config, logger *zap.Logger) (repository.NotificationRepository, error) {
	if cfg.MySQLDSN == "" {
		return memory.New(logger), nil
	}
	sqlDB, err := openMySQL(cfg.MySQLDSN, logger)
	if err != nil {
		return nil, err
	}
	return mysql.New(sqlDB, logger), nil
}

// NewClassroomDirectory follows the same selection as NewStore.
func NewClassroomDirectory(cfg *config.Config, logger *zap.Logger) (ClassroomDirectory, error) {
	if cfg.MySQLDSN == "" {
		return memory.NewClassroomDirectory(), nil
	}
	sqlDB, err := openMySQL(cfg.MySQLDSN, logger)
	if err != nil {
		return nil, err
	}
	return mysql.NewClassroomDirectory(sqlDB, logger), nil
}

func openMySQL(dsn string, logger *zap.Logger) (*sql.DB, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		logger.Error("mysql open failed", zap.Error(err))
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Error("mysql ping failed", zap.Error(err))
		return nil, err
	}
	return sqlDB, nil
}
