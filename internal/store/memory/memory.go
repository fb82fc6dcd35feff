// Package memory provides an in-process implementation of store.Store.
//
// Committed records live in the Store. Each session stages its writes in an
// overlay that reads fall through to; Commit copies the overlay into the
// committed state under the store lock, Close drops it. The memory store
// backs tests and dry runs.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/store"
)

// table keeps rows in insertion order so "first match" is stable.
type table[T any] struct {
	order []uuid.UUID
	rows  map[uuid.UUID]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[uuid.UUID]T)}
}

func (t *table[T]) put(id uuid.UUID, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) reset() {
	t.order = nil
	t.rows = make(map[uuid.UUID]T)
}

// mergeInto copies every staged row into dst.
func (t *table[T]) mergeInto(dst *table[T]) {
	for _, id := range t.order {
		dst.put(id, t.rows[id])
	}
}

type memoryState struct {
	directories   *table[domain.DirectoryRecord]
	companies     *table[domain.Company]
	persons       *table[domain.Person]
	businessUnits *table[domain.BusinessUnit]
	departments   *table[domain.Department]
	employees     *table[domain.Employee]
	documents     *table[domain.Document]
	bodies        *table[[]domain.Body]
}

func newMemoryState() memoryState {
	return memoryState{
		directories:   newTable[domain.DirectoryRecord](),
		companies:     newTable[domain.Company](),
		persons:       newTable[domain.Person](),
		businessUnits: newTable[domain.BusinessUnit](),
		departments:   newTable[domain.Department](),
		employees:     newTable[domain.Employee](),
		documents:     newTable[domain.Document](),
		bodies:        newTable[[]domain.Body](),
	}
}

func (s memoryState) mergeInto(dst memoryState) {
	s.directories.mergeInto(dst.directories)
	s.companies.mergeInto(dst.companies)
	s.persons.mergeInto(dst.persons)
	s.businessUnits.mergeInto(dst.businessUnits)
	s.departments.mergeInto(dst.departments)
	s.employees.mergeInto(dst.employees)
	s.documents.mergeInto(dst.documents)
	s.bodies.mergeInto(dst.bodies)
}

func (s memoryState) reset() {
	s.directories.reset()
	s.companies.reset()
	s.persons.reset()
	s.businessUnits.reset()
	s.departments.reset()
	s.employees.reset()
	s.documents.reset()
	s.bodies.reset()
}

// Store is a goroutine-safe in-memory record store.
type Store struct {
	mu        sync.RWMutex
	committed memoryState
	registers map[int64]domain.DocumentRegister
	commits   int
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		committed: newMemoryState(),
		registers: make(map[int64]domain.DocumentRegister),
	}
}

// Begin opens a session.
func (s *Store) Begin(ctx context.Context) (store.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &session{store: s, staged: newMemoryState()}, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// AddDocumentRegister makes a registration journal available.
// Journals are configuration data and are not written by sessions.
func (s *Store) AddDocumentRegister(r domain.DocumentRegister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registers[r.ID] = r
}

// Commits returns how many commits the store has applied.
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// Bodies returns the committed body versions of a document.
func (s *Store) Bodies(documentID uuid.UUID) []domain.Body {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Body(nil), s.committed.bodies.rows[documentID]...)
}

// scan returns the rows of committed overlaid by staged that satisfy match,
// committed rows first, in insertion order.
func scan[T any](committed, staged *table[T], match func(T) bool) []T {
	var out []T
	for _, id := range committed.order {
		v := committed.rows[id]
		if sv, ok := staged.rows[id]; ok {
			v = sv
		}
		if match(v) {
			out = append(out, v)
		}
	}
	for _, id := range staged.order {
		if _, ok := committed.rows[id]; ok {
			continue
		}
		if v := staged.rows[id]; match(v) {
			out = append(out, v)
		}
	}
	return out
}

func lookup[T any](committed, staged *table[T], id uuid.UUID) (T, bool) {
	if v, ok := staged.rows[id]; ok {
		return v, true
	}
	v, ok := committed.rows[id]
	return v, ok
}

func pointers[T any](in []T) []*T {
	out := make([]*T, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}
