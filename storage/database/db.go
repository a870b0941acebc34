package database

import (
	"context"
	"log"
	"net/url"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/trezcool/attendance/core"
	appfs "github.com/trezcool/attendance/fs"
)

const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

var (
	errUnknownEngine = errors.New("unknown database engine")

	gooseDialects = map[string]string{
		EngineSQLite:   "sqlite3",
		EnginePostgres: "postgres",
	}
)

func init() {
	sqlx.BindDriver(EngineSQLite, sqlx.QUESTION)
}

func dataSourceName(conf core.DatabaseConfig) (string, error) {
	switch conf.Engine {
	case EngineSQLite:
		q := make(url.Values)
		q.Add("_pragma", "foreign_keys(1)")
		q.Add("_pragma", "busy_timeout(5000)")
		q.Add("_pragma", "journal_mode(WAL)")
		q.Set("_time_format", "sqlite")
		return "file:" + filepath.Clean(conf.Path) + "?" + q.Encode(), nil
	case EnginePostgres:
		sslMode := "require"
		if conf.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   conf.Engine,
			User:     url.UserPassword(conf.User, conf.Password),
			Host:     conf.Address(),
			Path:     conf.Name,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	default:
		return "", errors.Wrap(errUnknownEngine, conf.Engine)
	}
}

// Open connects to the configured database and waits for it to be ready.
func Open(conf core.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := dataSourceName(conf)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(conf.Engine, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func migrationsDir(engine string) string {
	return "migrations/" + engine
}

// GooseRun runs a goose command (up, down, status, redo...) against the embedded migrations.
func GooseRun(ctx context.Context, command string, db *sqlx.DB, args ...string) error {
	dialect, ok := gooseDialects[db.DriverName()]
	if !ok {
		return errors.Wrap(errUnknownEngine, db.DriverName())
	}
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	return goose.RunContext(ctx, command, db.DB, migrationsDir(db.DriverName()), args...)
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if err := GooseRun(ctx, "up", db); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// SetMigrationLogger sets the logger used by goose; nil silences it.
func SetMigrationLogger(l *log.Logger) {
	if l == nil {
		goose.SetLogger(goose.NopLogger())
		return
	}
	goose.SetLogger(l)
}
