package journal

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"crewwatch/internal/logger"
)

// Connect opens the journal database. postgres:// and postgresql:// URLs
// use lib/pq; anything else is treated as a SQLite path (an optional
// sqlite:// prefix is stripped, ":memory:" works).
func Connect(dsn string) (*sqlx.DB, error) {
	log := logger.Named("journal")
	driver, source := driverFor(dsn)

	log.Info("🔌 connecting to journal database",
		zap.String("driver", driver),
		zap.String("prefix", dsn[:min(30, len(dsn))]),
	)

	db, err := sqlx.Connect(driver, source)
	if err != nil {
		log.Error("❌ journal connection failed", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		// Every new connection to :memory: is a fresh database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		log.Error("❌ journal ping failed", zap.Error(err))
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("✅ journal database connected")
	return db, nil
}

func driverFor(dsn string) (driver, source string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://")
	default:
		return "sqlite", dsn
	}
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS poll_ticks (
			id TEXT PRIMARY KEY,
			started_at BIGINT NOT NULL,
			duration_ms BIGINT NOT NULL,
			outcome TEXT NOT NULL,
			consecutive_errors INT NOT NULL DEFAULT 0,
			error_kind TEXT,
			error_message TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_poll_ticks_started_at ON poll_ticks(started_at)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
