// Package database opens the SQLite store that backs every service.
package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/bookcross/bookcross/pkg/config"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type queryLogger struct {
	log logger.Logger
}

func (*queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (ql *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	data := logger.Data{"duration_ms": time.Since(event.StartTime).Milliseconds()}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		ql.log.Err(event.Err).Warn(event.Query, data)
		return
	}
	ql.log.Debug(event.Query, data)
}

// New opens the database at cfg.DatabaseFilePath with a single connection,
// so writers queue behind each other instead of failing with SQLITE_BUSY.
func New(cfg *config.Config) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseFilePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if cfg.DatabaseDebug {
		db.AddQueryHook(&queryLogger{log: logger.NewWithLevel("debug")})
	}

	if err := ping(db, cfg.DatabaseConnectRetryCount, cfg.DatabaseConnectRetryDelay); err != nil {
		_ = db.Close()
		return nil, err
	}

	pragmas := []struct {
		stmt string
		args []interface{}
	}{
		{"PRAGMA journal_mode=WAL", nil},
		{"PRAGMA busy_timeout=?", []interface{}{cfg.DatabaseBusyTimeout.Milliseconds()}},
		{"PRAGMA foreign_keys=ON", nil},
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt, p.args...); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "failed to run %q", p.stmt)
		}
	}

	return db, nil
}

func ping(db *bun.DB, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if _, err = db.Exec("SELECT 1"); err == nil {
			return nil
		}
		time.Sleep(delay)
	}
	return errors.Wrap(err, "database unreachable")
}
