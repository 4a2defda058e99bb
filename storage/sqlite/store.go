// Package sqlite provides a SQLite-backed storage adapter. Each adapter
// owns one collection table holding schemaless records as JSON, which
// keeps the backend faithful to the Record model: no fixed schema, one
// identity column.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-entity-manager/query"
	"github.com/goliatone/go-entity-manager/storage"
)

var _ storage.Adapter = (*Store)(nil)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Option tunes a Store.
type Option func(*Store)

// WithIDField changes the record identity field. Default "id".
func WithIDField(field string) Option {
	return func(s *Store) { s.idField = field }
}

// WithSearchFields restricts text search to the named fields.
func WithSearchFields(fields ...string) Option {
	return func(s *Store) { s.caps.SearchFields = fields }
}

// Store implements the storage adapter over one SQLite table.
type Store struct {
	db      *sql.DB
	table   string
	idField string
	caps    storage.Capabilities
}

// Open opens (or creates) a SQLite database at path and binds the store
// to the named collection table. Use ":memory:" for an ephemeral store.
func Open(path, table string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping db: %w", err)
	}

	store, err := New(db, table, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New binds a store to an existing database handle, creating the
// collection table when missing.
func New(db *sql.DB, table string, opts ...Option) (*Store, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("sqlite: invalid table name %q", table)
	}

	s := &Store{
		db:      db,
		table:   table,
		idField: storage.DefaultIDField,
		caps: storage.Capabilities{
			SupportsTotal:      true,
			SupportsFilters:    true,
			SupportsPagination: true,
			SupportsCaching:    true,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, data TEXT NOT NULL)`, s.table)
	if _, err := db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("sqlite: create table %s: %w", s.table, err)
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Capabilities implements storage.Adapter.
func (s *Store) Capabilities() storage.Capabilities { return s.caps }

// List implements storage.Adapter. Rows are loaded in id order and
// filtering, search, sort, and pagination run through the query executor,
// so results match the manager's locally executed queries.
func (s *Store) List(ctx context.Context, params storage.ListParams, _ storage.CallOptions) (storage.ListResult, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT data FROM %s ORDER BY id`, s.table))
	if err != nil {
		return storage.ListResult{}, fmt.Errorf("sqlite: list %s: %w", s.table, err)
	}
	defer rows.Close()

	var items []storage.Record
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return storage.ListResult{}, fmt.Errorf("sqlite: scan %s: %w", s.table, err)
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return storage.ListResult{}, fmt.Errorf("sqlite: decode %s row: %w", s.table, err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return storage.ListResult{}, fmt.Errorf("sqlite: iterate %s: %w", s.table, err)
	}

	out, total := query.Execute(items, params, s.caps.SearchFields)
	return storage.ListResult{Items: out, Total: total}, nil
}

// Get implements storage.Adapter.
func (s *Store) Get(ctx context.Context, id string, _ storage.CallOptions) (storage.Record, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, s.table), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &storage.NotFoundError{Collection: s.table, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %s/%s: %w", s.table, id, err)
	}
	return decodeRecord(raw)
}

// Create implements storage.Adapter, generating a uuid when the payload
// carries no id.
func (s *Store) Create(ctx context.Context, data storage.Record, _ storage.CallOptions) (storage.Record, error) {
	rec := data.Clone()
	if rec == nil {
		rec = storage.Record{}
	}
	if rec.ID(s.idField) == "" {
		rec[s.idField] = uuid.New().String()
	}

	raw, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, data) VALUES (?, ?)`, s.table),
		rec.ID(s.idField), raw)
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert %s: %w", s.table, err)
	}
	return rec, nil
}

// Update implements storage.Adapter, replacing the record wholesale.
func (s *Store) Update(ctx context.Context, id string, data storage.Record, _ storage.CallOptions) (storage.Record, error) {
	rec := data.Clone()
	if rec == nil {
		rec = storage.Record{}
	}
	rec[s.idField] = id

	raw, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET data = ? WHERE id = ?`, s.table), raw, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: update %s/%s: %w", s.table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &storage.NotFoundError{Collection: s.table, ID: id}
	}
	return rec, nil
}

// Patch implements storage.Adapter, merging fields into the stored
// record inside one transaction.
func (s *Store) Patch(ctx context.Context, id string, data storage.Record, _ storage.CallOptions) (storage.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin patch %s/%s: %w", s.table, id, err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, s.table), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &storage.NotFoundError{Collection: s.table, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: patch read %s/%s: %w", s.table, id, err)
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}
	for k, v := range data {
		if k == s.idField {
			continue
		}
		rec[k] = v
	}

	merged, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET data = ? WHERE id = ?`, s.table), merged, id); err != nil {
		return nil, fmt.Errorf("sqlite: patch write %s/%s: %w", s.table, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: patch commit %s/%s: %w", s.table, id, err)
	}
	return rec, nil
}

// Delete implements storage.Adapter.
func (s *Store) Delete(ctx context.Context, id string, _ storage.CallOptions) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table), id)
	if err != nil {
		return fmt.Errorf("sqlite: delete %s/%s: %w", s.table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &storage.NotFoundError{Collection: s.table, ID: id}
	}
	return nil
}

func encodeRecord(rec storage.Record) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode record: %w", err)
	}
	return string(raw), nil
}

func decodeRecord(raw string) (storage.Record, error) {
	var rec storage.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("sqlite: decode record: %w", err)
	}
	return rec, nil
}
