// Package memory provides an in-process model.Session. It keeps instances per
// model type in insertion order, which is the order relation widgets list
// candidates in.
package memory

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/goliatone/go-fieldset/pkg/model"
)

// ErrNoPrimaryKey is returned when saving an instance whose schema has no
// single primary key.
var ErrNoPrimaryKey = errors.New("memory: schema needs exactly one primary key")

type attacher interface {
	Attach(session model.Session)
}

// Store is a concurrency-safe in-memory session.
type Store struct {
	mu      sync.RWMutex
	rows    map[string][]model.Instance
	seq     map[string]int64
	entropy io.Reader
}

var _ model.Session = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Store{
		rows:    make(map[string][]model.Instance),
		seq:     make(map[string]int64),
		entropy: ulid.Monotonic(src, 0),
	}
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// Save stores inst, assigning a primary key to pending instances: the next
// sequence value for integer keys, a ULID for string keys. Saving an instance
// whose key is already stored replaces the stored one.
func (s *Store) Save(inst model.Instance) error {
	if inst == nil {
		return errors.New("memory: instance is required")
	}
	schema := inst.Schema()
	keys := schema.PrimaryKeys()
	if len(keys) != 1 {
		return fmt.Errorf("%w: %s", ErrNoPrimaryKey, schema.Name)
	}
	pk := keys[0]

	s.mu.Lock()
	defer s.mu.Unlock()

	if model.IsZero(inst.Get(pk.Name)) {
		var id any
		switch pk.Type {
		case model.FieldTypeInteger:
			s.seq[schema.Name]++
			id = s.seq[schema.Name]
		case model.FieldTypeString, "":
			id = s.newID()
		default:
			return fmt.Errorf("memory: cannot generate %s key for %s", pk.Type, schema.Name)
		}
		if err := inst.Set(pk.Name, id); err != nil {
			return fmt.Errorf("memory: assign key: %w", err)
		}
	} else if n, ok := asInt(inst.Get(pk.Name)); ok && n > s.seq[schema.Name] {
		s.seq[schema.Name] = n
	}

	if a, ok := inst.(attacher); ok {
		a.Attach(s)
	}

	id := model.FormatKey(model.PrimaryKey(inst))
	rows := s.rows[schema.Name]
	for i, row := range rows {
		if model.FormatKey(model.PrimaryKey(row)) == id {
			rows[i] = inst
			return nil
		}
	}
	s.rows[schema.Name] = append(rows, inst)
	return nil
}

// MustSave panics when Save fails. Useful for fixtures.
func (s *Store) MustSave(items ...model.Instance) {
	for _, item := range items {
		if err := s.Save(item); err != nil {
			panic(err)
		}
	}
}

// Candidates lists every stored instance of target in insertion order.
func (s *Store) Candidates(target string) ([]model.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Instance(nil), s.rows[target]...), nil
}

// Lookup returns the stored instances matching ids, in ids order. Unknown
// ids are skipped.
func (s *Store) Lookup(target string, ids []any) ([]model.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey := make(map[string]model.Instance, len(s.rows[target]))
	for _, row := range s.rows[target] {
		byKey[model.FormatKey(model.PrimaryKey(row))] = row
	}
	out := make([]model.Instance, 0, len(ids))
	for _, id := range ids {
		if row, ok := byKey[model.FormatKey(id)]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// Get returns one stored instance.
func (s *Store) Get(target string, id any) (model.Instance, bool) {
	items, _ := s.Lookup(target, []any{id})
	if len(items) == 0 {
		return nil, false
	}
	return items[0], true
}

// Delete removes a stored instance and reports whether it existed.
func (s *Store) Delete(target string, id any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.FormatKey(id)
	rows := s.rows[target]
	for i, row := range rows {
		if model.FormatKey(model.PrimaryKey(row)) == key {
			s.rows[target] = append(rows[:i:i], rows[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns how many instances of target are stored.
func (s *Store) Count(target string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows[target])
}

func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	default:
		return 0, false
	}
}
