package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver ("pgx")
	_ "modernc.org/sqlite"             // SQLite driver ("sqlite")
)

// Dialect identifies the SQL flavour behind a DB.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const sqliteParams = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// DB is a connection pool that rewrites `?` placeholders for its dialect,
// so repositories can be written once for both backends.
type DB struct {
	sqlDB   *sql.DB
	dialect Dialect
}

// New opens the database described by url and verifies the connection.
//
// Accepted forms: postgres://..., postgresql://..., sqlite://<path>,
// sqlite::memory:, file:<path> or a bare SQLite file path.
func New(url string) (*DB, error) {
	driver, dsn, dialect := parseURL(url)

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// One connection serializes writers and keeps an in-memory database alive.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}

	return &DB{sqlDB: sqlDB, dialect: dialect}, nil
}

// Wrap adapts an existing *sql.DB. Used by tests that bring their own driver.
func Wrap(sqlDB *sql.DB, dialect Dialect) *DB {
	return &DB{sqlDB: sqlDB, dialect: dialect}
}

func parseURL(url string) (driver, dsn string, dialect Dialect) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url, DialectPostgres
	case url == "sqlite::memory:", url == "sqlite://:memory:", url == ":memory:":
		return "sqlite", "file::memory:?" + sqliteParams, DialectSQLite
	}

	path := strings.TrimPrefix(url, "sqlite://")
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return "sqlite", path + sep + sqliteParams, DialectSQLite
	}
	return "sqlite", "file:" + path + "?" + sqliteParams, DialectSQLite
}

func (db *DB) Dialect() Dialect { return db.dialect }

// SQL exposes the underlying pool for health checks and migrations.
func (db *DB) SQL() *sql.DB { return db.sqlDB }

func (db *DB) PingContext(ctx context.Context) error { return db.sqlDB.PingContext(ctx) }

func (db *DB) Close() error { return db.sqlDB.Close() }

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.sqlDB.ExecContext(ctx, Rebind(db.dialect, query), args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.sqlDB.QueryContext(ctx, Rebind(db.dialect, query), args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.sqlDB.QueryRowContext(ctx, Rebind(db.dialect, query), args...)
}

// Rebind rewrites `?` placeholders into `$1, $2, ...` for Postgres. Question
// marks inside single-quoted literals are left alone.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			fmt.Fprintf(&b, "$%d", n)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
