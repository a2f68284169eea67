package runlog

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/stoplight-backend/internal/platform/logger"
)

const maxRecent = 500

type Ledger struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to driver ("sqlite" or "postgres") and migrates the run table.
func Open(driver, dsn string, log *logger.Logger) (*Ledger, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("runlog: unsupported driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("runlog: connect %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// One connection keeps ":memory:" databases shared and avoids
		// SQLITE_BUSY on concurrent writes.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	l := New(db, log)
	if err := l.Migrate(); err != nil {
		return nil, err
	}
	return l, nil
}

func New(db *gorm.DB, baseLog *logger.Logger) *Ledger {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Ledger{db: db, log: baseLog.With("repo", "RunLedger")}
}

func (l *Ledger) Migrate() error {
	if err := l.db.AutoMigrate(&Run{}); err != nil {
		l.log.Error("run ledger migration failed", "error", err)
		return fmt.Errorf("runlog: migrate: %w", err)
	}
	return nil
}

func (l *Ledger) DB() *gorm.DB { return l.db }

func (l *Ledger) Record(ctx context.Context, run *Run) error {
	if run == nil {
		return nil
	}
	return l.db.WithContext(ctx).Create(run).Error
}

// Recent returns the newest runs first. limit is clamped to [1, 500].
func (l *Ledger) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > maxRecent {
		limit = maxRecent
	}
	var out []*Run
	if err := l.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
