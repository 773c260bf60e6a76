package persistence

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spec-kit/support-desk/internal/config"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// OpenSQLite opens the embedded database. Pass ":memory:" for a private in-memory database.
//
// The handle is limited to one connection: every transaction is serialized, which is what
// keeps per-ticket message positions gap-free without row locks, and an in-memory database
// would otherwise be split across connections.
func OpenSQLite(cfg config.SQLiteConfig, logger *zap.Logger) (*sql.DB, error) {
	dsn, err := sqliteDSN(cfg.Path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	logger.Info("opened sqlite", zap.String("path", cfg.Path))
	return db, nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" || path == ":memory:" {
		return "file::memory:?" + sqlitePragmas, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + sqlitePragmas, nil
}
