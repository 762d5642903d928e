// Package memory implements animal.Store in process memory. It backs the
// CLI when no database is configured and is the store used by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/errors"
)

// Store implements animal.Store with maps guarded by a RWMutex. Records are
// copied on the way in and out so callers never share state with the store.
type Store struct {
	mu      sync.RWMutex
	animals map[string]*animal.Record
	types   map[string]*animal.Type
}

var _ animal.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		animals: make(map[string]*animal.Record),
		types:   make(map[string]*animal.Type),
	}
}

func (s *Store) GetAnimal(_ context.Context, id string) (*animal.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.animals[id]
	if !ok {
		return nil, animal.NotFound("animal", id)
	}
	return r.Clone(), nil
}

func (s *Store) GetAnimals(_ context.Context, ids []string) ([]*animal.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*animal.Record, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if r, ok := s.animals[id]; ok {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (s *Store) InsertAnimal(_ context.Context, r *animal.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.animals[r.ID]; ok {
		return errors.New(errors.ErrCodeConflict, "animal %q already exists", r.ID)
	}
	if err := s.checkIdentifier(r); err != nil {
		return err
	}
	s.animals[r.ID] = r.Clone()
	return nil
}

func (s *Store) ReplaceAnimal(_ context.Context, r *animal.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.animals[r.ID]; !ok {
		return animal.NotFound("animal", r.ID)
	}
	if err := s.checkIdentifier(r); err != nil {
		return err
	}
	s.animals[r.ID] = r.Clone()
	return nil
}

func (s *Store) RemoveAnimal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.animals[id]; !ok {
		return animal.NotFound("animal", id)
	}
	delete(s.animals, id)
	return nil
}

// ListAnimals returns matching records ordered by identifier.
func (s *Store) ListAnimals(_ context.Context, f animal.Filter) ([]*animal.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*animal.Record, 0, len(s.animals))
	for _, r := range s.animals {
		if f.Match(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

func (s *Store) Children(_ context.Context, id string) ([]*animal.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*animal.Record
	for _, r := range s.animals {
		if r.MotherID == id || r.FatherID == id {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (s *Store) InsertType(_ context.Context, t *animal.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.types[t.ID]; ok {
		return errors.New(errors.ErrCodeConflict, "animal type %q already exists", t.ID)
	}
	for _, other := range s.types {
		if other.Name == t.Name {
			return errors.New(errors.ErrCodeConflict, "animal type %q already exists", t.Name)
		}
	}
	c := *t
	s.types[t.ID] = &c
	return nil
}

func (s *Store) GetType(_ context.Context, id string) (*animal.Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.types[id]
	if !ok {
		return nil, animal.NotFound("animal type", id)
	}
	c := *t
	return &c, nil
}

// ListTypes returns all types ordered by name.
func (s *Store) ListTypes(_ context.Context) ([]*animal.Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*animal.Type, 0, len(s.types))
	for _, t := range s.types {
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// checkIdentifier must be called with the write lock held.
func (s *Store) checkIdentifier(r *animal.Record) error {
	for id, other := range s.animals {
		if id != r.ID && other.TypeID == r.TypeID && other.Identifier == r.Identifier {
			return errors.New(errors.ErrCodeConflict, "identifier %q is already used by another %s", r.Identifier, r.TypeName)
		}
	}
	return nil
}
