package repo

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"Drivecalc/internal/config"
)

// The same statements run on Postgres and SQLite; sqlx rebinds placeholders.
const (
	createSnapshots = `CREATE TABLE IF NOT EXISTS calc_sessions (
		code       TEXT PRIMARY KEY,
		snapshot   TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	upsertSnapshot = `INSERT INTO calc_sessions (code, snapshot, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`
	selectSnapshot = `SELECT snapshot FROM calc_sessions WHERE code = ?`
	deleteSnapshot = `DELETE FROM calc_sessions WHERE code = ?`
)

type SQLSnapshotRepository struct {
	db *sqlx.DB
}

func NewPostgresSnapshotDB(db *sqlx.DB) *SQLSnapshotRepository {
	return &SQLSnapshotRepository{db: db}
}

func NewSQLiteSnapshotDB(db *sqlx.DB) *SQLSnapshotRepository {
	return &SQLSnapshotRepository{db: db}
}

func (r *SQLSnapshotRepository) Save(ctx context.Context, code string, snapshot []byte) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(upsertSnapshot), code, string(snapshot), time.Now().UTC())
	return errors.Wrapf(err, "save session %s", code)
}

func (r *SQLSnapshotRepository) Load(ctx context.Context, code string) ([]byte, error) {
	var snapshot string
	err := r.db.GetContext(ctx, &snapshot, r.db.Rebind(selectSnapshot), code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "load session %s", code)
	}
	return []byte(snapshot), nil
}

func (r *SQLSnapshotRepository) Delete(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(deleteSnapshot), code)
	return errors.Wrapf(err, "delete session %s", code)
}

func (r *SQLSnapshotRepository) Close() error {
	return r.db.Close()
}

func migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, createSnapshots)
	return errors.Wrap(err, "create calc_sessions")
}

func InitPostgres(ctx context.Context, cfg config.Store) (*sqlx.DB, error) {
	connStr := cfg.DSN
	if !strings.Contains(connStr, "sslmode=") {
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			sep := "?"
			if strings.Contains(connStr, "?") {
				sep = "&"
			}
			connStr = connStr + sep + "sslmode=require"
		} else {
			connStr = connStr + " sslmode=require"
		}
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "postgres is not reachable")
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitSQLite opens the local snapshot cache file, creating it if needed.
func InitSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create sqlite directory")
		}
	}
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// один писатель: sqlite не любит параллельные записи
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
