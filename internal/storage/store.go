// Package storage is the durable entity store: one SQLite database holding
// every collection as JSON documents beside their indexed key columns.
// Multi-collection writes run inside a single transaction so a failure can
// never leave the store half-written.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"shataku/internal/core"

	_ "modernc.org/sqlite"
)

// configKey is the fixed key of the singleton configuration record.
const configKey = "main"

// Store owns the SQLite database behind the entity collections.
type Store struct {
	db   *sql.DB
	path string

	// mu serialises multi-statement write transactions. Reads go through
	// the pool concurrently.
	mu sync.Mutex
}

// StoreError wraps a driver failure with the failing operation, so callers
// can distinguish store I/O trouble from domain errors.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// NewStore opens (creating if necessary) the database at dbPath and brings
// its schema up to date.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// LoadDataset bulk-loads every entity collection into memory. The second
// return value reports whether the store held no entities at all, which the
// cache uses to decide on the legacy fallback.
func (s *Store) LoadDataset(ctx context.Context) (core.Dataset, bool, error) {
	var (
		ds          core.Dataset
		haveConfig  bool
		g, groupCtx = errgroup.WithContext(ctx)
	)

	g.Go(func() error {
		props, err := s.loadProperties(groupCtx)
		if err != nil {
			return err
		}
		ds.Properties = props
		return nil
	})
	g.Go(func() error {
		tenants, err := s.loadTenants(groupCtx)
		if err != nil {
			return err
		}
		ds.Tenants = tenants
		return nil
	})
	g.Go(func() error {
		employees, err := s.loadEmployees(groupCtx)
		if err != nil {
			return err
		}
		ds.Employees = employees
		return nil
	})
	g.Go(func() error {
		settings, ok, err := s.loadSettings(groupCtx)
		if err != nil {
			return err
		}
		if ok {
			ds.Settings = settings
			haveConfig = true
		} else {
			ds.Settings = core.DefaultSettings()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.Dataset{}, false, storeErr("load dataset", err)
	}

	empty := len(ds.Properties) == 0 && len(ds.Tenants) == 0 && len(ds.Employees) == 0 && !haveConfig
	return ds, empty, nil
}

func (s *Store) loadProperties(ctx context.Context) ([]core.Property, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM properties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select properties: %w", err)
	}
	defer rows.Close()

	var out []core.Property
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		var p core.Property
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode property: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) loadTenants(ctx context.Context) ([]core.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM tenants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select tenants: %w", err)
	}
	defer rows.Close()

	var out []core.Tenant
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		var t core.Tenant
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, fmt.Errorf("decode tenant: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) loadEmployees(ctx context.Context) ([]core.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM employees ORDER BY category, id`)
	if err != nil {
		return nil, fmt.Errorf("select employees: %w", err)
	}
	defer rows.Close()

	var out []core.Employee
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		var e core.Employee
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) loadSettings(ctx context.Context) (core.Settings, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM config WHERE key = ?`, configKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{}, false, nil
	}
	if err != nil {
		return core.Settings{}, false, fmt.Errorf("select config: %w", err)
	}
	var settings core.Settings
	if err := json.Unmarshal(payload, &settings); err != nil {
		return core.Settings{}, false, fmt.Errorf("decode config: %w", err)
	}
	return settings, true, nil
}

// ReplaceDataset persists the entire in-memory entity set with full-replace
// semantics: each collection is cleared before the bulk insert, inside one
// transaction, so rows deleted in memory do not linger in the store.
func (s *Store) ReplaceDataset(ctx context.Context, ds core.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("replace dataset", err)
	}
	defer tx.Rollback()

	if err := replaceDatasetTx(ctx, tx, ds); err != nil {
		return storeErr("replace dataset", err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("replace dataset", err)
	}
	return nil
}

func replaceDatasetTx(ctx context.Context, tx *sql.Tx, ds core.Dataset) error {
	for _, table := range []string{"properties", "tenants", "employees", "config"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, p := range ds.Properties {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode property %d: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO properties (id, payload) VALUES (?, ?)`, p.ID, payload); err != nil {
			return fmt.Errorf("insert property %d: %w", p.ID, err)
		}
	}

	for _, t := range ds.Tenants {
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode tenant %d: %w", t.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tenants (id, property_id, status, payload) VALUES (?, ?, ?, ?)`,
			t.ID, t.PropertyID, string(t.Status), payload); err != nil {
			return fmt.Errorf("insert tenant %d: %w", t.ID, err)
		}
	}

	for _, e := range ds.Employees {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode employee %s: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO employees (category, id, kana, company, payload) VALUES (?, ?, ?, ?, ?)`,
			string(e.Category), e.ID, e.Kana, e.Company, payload); err != nil {
			return fmt.Errorf("insert employee %s: %w", e.ID, err)
		}
	}

	payload, err := json.Marshal(ds.Settings)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO config (key, payload) VALUES (?, ?)`, configKey, payload); err != nil {
		return fmt.Errorf("insert config: %w", err)
	}

	return nil
}

// ImportAll is the migration write path: the whole dataset, any snapshots,
// and the migration marker land in one all-or-nothing transaction.
func (s *Store) ImportAll(ctx context.Context, ds core.Dataset, snaps []core.MonthlySnapshot, metaKey, metaValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("import", err)
	}
	defer tx.Rollback()

	if err := replaceDatasetTx(ctx, tx, ds); err != nil {
		return storeErr("import", err)
	}
	for _, snap := range snaps {
		if err := insertSnapshotTx(ctx, tx, snap); err != nil {
			return storeErr("import", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaKey, metaValue); err != nil {
		return storeErr("import", fmt.Errorf("set meta %s: %w", metaKey, err))
	}
	if err := tx.Commit(); err != nil {
		return storeErr("import", err)
	}

	slog.InfoContext(ctx, "Imported dataset into store",
		"properties", len(ds.Properties),
		"tenants", len(ds.Tenants),
		"employees", len(ds.Employees),
		"snapshots", len(snaps))
	return nil
}

// ResetAll clears every collection, snapshots and migration metadata
// included. Destructive; only the explicit full-system reset calls this.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("reset", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"properties", "tenants", "employees", "config", "snapshots", "meta"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return storeErr("reset", fmt.Errorf("clear %s: %w", table, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr("reset", err)
	}

	slog.InfoContext(ctx, "Store reset, all collections cleared")
	return nil
}

// GetMeta returns the value for key, or ok=false when the key is absent.
func (s *Store) GetMeta(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("get meta", err)
	}
	return value, true, nil
}

func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return storeErr("set meta", err)
}

// InsertSnapshot persists one monthly snapshot. The unique index on cycle
// month is a backstop behind the service-level duplicate check; a violation
// surfaces as core.DuplicateCycleError.
func (s *Store) InsertSnapshot(ctx context.Context, snap core.MonthlySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("insert snapshot", err)
	}
	defer tx.Rollback()

	if err := insertSnapshotTx(ctx, tx, snap); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &core.DuplicateCycleError{CycleMonth: snap.Cycle.Month}
		}
		return storeErr("insert snapshot", err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("insert snapshot", err)
	}
	return nil
}

func insertSnapshotTx(ctx context.Context, tx *sql.Tx, snap core.MonthlySnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, cycle_month, closed_at, payload) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Cycle.Month, snap.ClosedAt.UTC().Format("2006-01-02T15:04:05Z07:00"), payload); err != nil {
		return fmt.Errorf("insert snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// GetSnapshot returns the snapshot with the given id, or nil when absent.
func (s *Store) GetSnapshot(ctx context.Context, id string) (*core.MonthlySnapshot, error) {
	return s.querySnapshot(ctx, `SELECT payload FROM snapshots WHERE id = ?`, id)
}

// SnapshotByCycle returns the snapshot for a cycle month, or nil when the
// cycle has not been closed.
func (s *Store) SnapshotByCycle(ctx context.Context, cycleMonth string) (*core.MonthlySnapshot, error) {
	return s.querySnapshot(ctx, `SELECT payload FROM snapshots WHERE cycle_month = ?`, cycleMonth)
}

func (s *Store) querySnapshot(ctx context.Context, query string, arg any) (*core.MonthlySnapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get snapshot", err)
	}
	var snap core.MonthlySnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, storeErr("get snapshot", fmt.Errorf("decode: %w", err))
	}
	return &snap, nil
}

// ListSnapshots returns every snapshot, most recent cycle first.
func (s *Store) ListSnapshots(ctx context.Context) ([]core.MonthlySnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM snapshots ORDER BY cycle_month DESC`)
	if err != nil {
		return nil, storeErr("list snapshots", err)
	}
	defer rows.Close()

	var out []core.MonthlySnapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, storeErr("list snapshots", err)
		}
		var snap core.MonthlySnapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, storeErr("list snapshots", fmt.Errorf("decode: %w", err))
		}
		out = append(out, snap)
	}
	return out, storeErr("list snapshots", rows.Err())
}

// DeleteSnapshot removes a snapshot by id. Deleting an absent snapshot is
// not an error; it is a user-initiated cleanup action.
func (s *Store) DeleteSnapshot(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	return storeErr("delete snapshot", err)
}
