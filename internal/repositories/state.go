package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/shared"
)

var (
	_ models.KeyValueStore = (*StateRepository)(nil)
	_ models.KeyValueStore = (*MemoryStore)(nil)
)

// StateRepository implements [models.KeyValueStore] on the app_state table.
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new [StateRepository] with the given database connection
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get returns the value stored under key.
func (r *StateRepository) Get(key models.StateKey) (string, bool, error) {
	if err := checkKeys(key); err != nil {
		return "", false, err
	}

	var value string
	err := r.db.QueryRow("SELECT value FROM app_state WHERE key = ?", string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query state %s: %w", key, err)
	}

	return value, true, nil
}

// Set upserts the value stored under key.
func (r *StateRepository) Set(key models.StateKey, value string) error {
	if err := checkKeys(key); err != nil {
		return err
	}

	query := `
		INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, string(key), value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store state %s: %w", key, err)
	}

	return nil
}

// Delete removes the given keys in a single transaction.
func (r *StateRepository) Delete(keys ...models.StateKey) error {
	if len(keys) == 0 {
		return nil
	}
	if err := checkKeys(keys...); err != nil {
		return err
	}

	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		placeholders[i] = "?"
		args[i] = string(k)
	}

	query := fmt.Sprintf("DELETE FROM app_state WHERE key IN (%s)", strings.Join(placeholders, ", "))
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}

	return nil
}

// MemoryStore is an in-process [models.KeyValueStore] used for tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[models.StateKey]string
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[models.StateKey]string)}
}

func (m *MemoryStore) Get(key models.StateKey) (string, bool, error) {
	if err := checkKeys(key); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key models.StateKey, value string) error {
	if err := checkKeys(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(keys ...models.StateKey) error {
	if err := checkKeys(keys...); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func checkKeys(keys ...models.StateKey) error {
	for _, k := range keys {
		if !k.Valid() {
			return fmt.Errorf("%w: unknown state key %q", shared.ErrInvalidArgument, k)
		}
	}
	return nil
}
