package sqlstore

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Migrator struct {
	store *SqlStore
	log   *zap.Logger
}

func NewMigrator(store *SqlStore, log *zap.Logger) *Migrator {
	return &Migrator{
		store: store,
		log:   log,
	}
}

// Up applies every script in source that has not been applied yet. Scripts
// are named like "0002_migration_name.sql" and run in version order, each in
// its own transaction together with its bookkeeping row.
func (m *Migrator) Up(ctx context.Context, source fs.FS) error {
	m.store.Mu.Lock()
	defer m.store.Mu.Unlock()

	list, err := fs.ReadDir(source, ".")
	if err != nil {
		return errors.Wrap(err, "listing migrations")
	}

	var scripts []string
	for _, f := range list {
		if !f.IsDir() && path.Ext(f.Name()) == ".sql" {
			scripts = append(scripts, f.Name())
		}
	}
	if len(scripts) == 0 {
		return nil
	}
	// sort the list according to the version number to ensure the migrations are applied in the correct order
	sort.Strings(scripts)

	if err := m.store.execTrans(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`, migrationsTableName)); err != nil {
		return errors.Wrap(err, "creating migrations table")
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	var pending []string
	for _, n := range scripts {
		v, err := scriptVersion(n)
		if err != nil {
			return err
		}
		if _, ok := applied[v]; !ok {
			pending = append(pending, n)
		}
	}

	// log this message only if there are migrations to run
	if len(pending) > 0 {
		m.log.Info("Bringing up catalog migrations", zap.Int("migration_count", len(pending)))
	}

	for _, n := range pending {
		m.log.Debug("Executing catalog migration", zap.String("migration_name", n))
		if err := m.apply(ctx, source, n); err != nil {
			return errors.Wrapf(err, "applying migration %s", n)
		}
	}

	return nil
}

// Versions returns the versions of the applied migrations in ascending order.
func (m *Migrator) Versions(ctx context.Context) ([]int, error) {
	m.store.Mu.RLock()
	defer m.store.Mu.RUnlock()

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]int, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions, nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]struct{}, error) {
	q, args, err := m.store.Builder().Select("id").From(migrationsTableName).ToSql()
	if err != nil {
		return nil, err
	}

	var ids []int
	if err := m.store.DB.SelectContext(ctx, &ids, q, args...); err != nil {
		return nil, errors.Wrap(err, "reading applied migrations")
	}

	applied := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		applied[id] = struct{}{}
	}
	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, source fs.FS, name string) error {
	v, err := scriptVersion(name)
	if err != nil {
		return err
	}
	script, err := fs.ReadFile(source, name)
	if err != nil {
		return err
	}

	tx, err := m.store.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		return err
	}

	q, args, err := m.store.Builder().
		Insert(migrationsTableName).
		Columns("id", "name", "created_at").
		Values(v, strings.TrimSuffix(name, ".sql"), time.Now().UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return err
	}

	return tx.Commit()
}

// extract the version number as an integer from a file named like "0002_migration_name.sql"
func scriptVersion(filename string) (int, error) {
	vString := strings.Split(filename, "_")[0]
	vInt, err := strconv.Atoi(vString)
	if err != nil {
		return 0, errors.Wrapf(err, "migration %q is not named NNNN_name.sql", filename)
	}

	return vInt, nil
}
