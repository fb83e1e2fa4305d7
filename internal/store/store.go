package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Collection names. Each collection is stored as a single JSON document.
const (
	collStudents    = "students"
	collSubmissions = "submissions"
	collAdmin       = "admin"
)

// maxUpdateAttempts bounds retries of a load-modify-save after a revision conflict.
const maxUpdateAttempts = 3

var (
	// ErrStoreUnavailable wraps any failure of the underlying database.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrConflict is returned when a collection changed between load and save
	// more often than the update retries allow.
	ErrConflict = errors.New("collection modified concurrently")
)

type Store struct {
	db *sql.DB

	// One writer per collection at a time within this process.
	locks map[string]*sync.Mutex
}

func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if dbPath == ":memory:" {
		dsn = dbPath
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every new connection would see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s, err := NewWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an already opened database and applies the schema.
func NewWithDB(db *sql.DB) (*Store, error) {
	s := &Store{
		db: db,
		locks: map[string]*sync.Mutex{
			collStudents:    {},
			collSubmissions: {},
			collAdmin:       {},
		},
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", unavailable(err))
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		revision INTEGER NOT NULL DEFAULT 1,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// load reads a collection document into dst. A missing collection reports found=false.
func (s *Store) load(ctx context.Context, name string, dst any) (revision int64, found bool, err error) {
	var data string
	err = s.db.QueryRowContext(ctx,
		`SELECT data, revision FROM collections WHERE name = ?`, name,
	).Scan(&data, &revision)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, unavailable(err)
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return 0, false, fmt.Errorf("decode %s: %w", name, err)
	}
	return revision, true, nil
}

// save replaces a collection document unconditionally.
func (s *Store) save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collections (name, data, revision, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, revision = revision + 1, updated_at = excluded.updated_at`,
		name, string(data), time.Now(),
	)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// compareAndSave writes v only if the stored revision still equals revision.
// revision 0 means the collection must not exist yet.
func (s *Store) compareAndSave(ctx context.Context, name string, v any, revision int64) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	var res sql.Result
	if revision == 0 {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO collections (name, data, revision, updated_at) VALUES (?, ?, 1, ?)
			 ON CONFLICT(name) DO NOTHING`,
			name, string(data), time.Now(),
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE collections SET data = ?, revision = revision + 1, updated_at = ?
			 WHERE name = ? AND revision = ?`,
			string(data), time.Now(), name, revision,
		)
	}
	if err != nil {
		return unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable(err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// loadOrSeed loads a collection, persisting seed() first if the collection is absent.
func loadOrSeed[T any](ctx context.Context, s *Store, name string, seed func() T) (T, int64, error) {
	var v T
	rev, found, err := s.load(ctx, name, &v)
	if err != nil || found {
		return v, rev, err
	}
	v = seed()
	err = s.compareAndSave(ctx, name, v, 0)
	if errors.Is(err, ErrConflict) {
		// Someone else seeded first; use theirs.
		var other T
		rev, _, err = s.load(ctx, name, &other)
		return other, rev, err
	}
	if err != nil {
		return v, 0, err
	}
	slog.Info("seeded collection", "collection", name)
	return v, 1, nil
}

// update runs a serialized load-modify-save of one collection.
func update[T any](ctx context.Context, s *Store, name string, seed func() T, fn func(T) (T, error)) error {
	mu := s.locks[name]
	mu.Lock()
	defer mu.Unlock()

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		current, rev, err := loadOrSeed(ctx, s, name, seed)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		err = s.compareAndSave(ctx, name, next, rev)
		if !errors.Is(err, ErrConflict) {
			return err
		}
		slog.Warn("collection revision conflict, retrying", "collection", name, "attempt", attempt)
	}
	return fmt.Errorf("update %s: %w", name, ErrConflict)
}
