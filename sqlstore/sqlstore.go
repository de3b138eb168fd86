// Package sqlstore opens the relational database behind the catalog and
// brings its schema up to date.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	DefaultFilename = "catalog.sqlite"
	InmemPath       = ":memory:"

	migrationsTableName = "migrations"
)

// SqlStore is a wrapper around the db and provides basic functionality for maintaining the db
// including flushing the data from the db during end-to-end testing.
type SqlStore struct {
	// Mu serializes writers. Readers take the read lock.
	Mu  sync.RWMutex
	DB  *sqlx.DB
	log *zap.Logger

	driver string
}

// NewSqlStore opens the database for driver. For sqlite3 dsn is a file path
// or ":memory:"; for postgres it is a lib/pq connection string.
func NewSqlStore(driver, dsn string, log *zap.Logger) (*SqlStore, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(dsn)
	case DriverPostgres:
		db, err = sqlx.Open(DriverPostgres, dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}

	log.Info("Resources opened", zap.String("driver", driver))

	return &SqlStore{
		DB:     db,
		log:    log,
		driver: driver,
	}, nil
}

func openSQLite(path string) (*sqlx.DB, error) {
	var dsn string
	if path == InmemPath {
		dsn = "file::memory:?_fk=true"
	} else {
		dsn = fmt.Sprintf("file:%s?_fk=true&_journal_mode=WAL&_busy_timeout=5000", path)
	}

	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}
	// every connection to ":memory:" is a fresh database, and sqlite
	// allows one writer at a time anyway.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Driver returns the name of the database/sql driver in use.
func (s *SqlStore) Driver() string {
	return s.driver
}

// Builder returns a squirrel statement builder using the driver's placeholders.
func (s *SqlStore) Builder() sq.StatementBuilderType {
	if s.driver == DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// Ping checks that the database is reachable.
func (s *SqlStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// PrometheusCollectors reports connection pool statistics.
func (s *SqlStore) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		collectors.NewDBStatsCollector(s.DB.DB, s.driver),
	}
}

// Close the connection to the database.
func (s *SqlStore) Close() error {
	return s.DB.Close()
}

// Flush deletes all records for all tables in the database except for the migration table. This method should only be
// used during end-to-end testing.
func (s *SqlStore) Flush(ctx context.Context) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	tables, err := s.tableNames(ctx)
	if err != nil {
		s.log.Fatal("unable to flush store", zap.Error(err))
	}

	stmts := make([]string, 0, len(tables))
	for _, t := range tables {
		if t == migrationsTableName {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("DELETE FROM %s;", t))
	}
	if len(stmts) == 0 {
		return
	}

	if err := s.execTrans(ctx, strings.Join(stmts, "\n")); err != nil {
		s.log.Fatal("unable to flush store", zap.Error(err))
	}

	s.log.Debug("store flushed successfully")
}

func (s *SqlStore) execTrans(ctx context.Context, stmt string) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SqlStore) tableNames(ctx context.Context) ([]string, error) {
	var q string
	switch s.driver {
	case DriverPostgres:
		q = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'`
	default:
		q = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`
	}

	var names []string
	if err := s.DB.SelectContext(ctx, &names, q); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// IsUniqueViolation reports whether err was raised by a unique constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// IsForeignKeyViolation reports whether err was raised by a foreign key constraint.
func IsForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}
