package animal

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pedigree/pkg/errors"
)

// Reader is the read-only repository surface.
//
// GetAnimal returns a NOT_FOUND coded error for an unknown id. GetAnimals
// returns the records it finds in no particular order; unknown ids are
// silently absent from the result.
type Reader interface {
	GetAnimal(ctx context.Context, id string) (*Record, error)
	GetAnimals(ctx context.Context, ids []string) ([]*Record, error)
}

// Store is the persistence contract implemented by each backend.
//
// InsertAnimal must fail with a CONFLICT coded error when another record of
// the same type already uses the identifier. ReplaceAnimal and RemoveAnimal
// fail with NOT_FOUND for an unknown id.
type Store interface {
	Reader

	InsertAnimal(ctx context.Context, r *Record) error
	ReplaceAnimal(ctx context.Context, r *Record) error
	RemoveAnimal(ctx context.Context, id string) error
	ListAnimals(ctx context.Context, f Filter) ([]*Record, error)
	// Children returns every record whose mother or father is id.
	Children(ctx context.Context, id string) ([]*Record, error)

	InsertType(ctx context.Context, t *Type) error
	GetType(ctx context.Context, id string) (*Type, error)
	ListTypes(ctx context.Context) ([]*Type, error)

	Close() error
}

// Registry applies the write rules shared by every backend on top of a
// [Store]. Reads pass through unchanged.
type Registry struct {
	store Store
	now   func() time.Time
	newID func() string
}

// NewRegistry wraps s.
func NewRegistry(s Store) *Registry {
	return &Registry{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Store returns the wrapped backend.
func (g *Registry) Store() Store { return g.store }

func (g *Registry) GetAnimal(ctx context.Context, id string) (*Record, error) {
	return g.store.GetAnimal(ctx, id)
}

func (g *Registry) GetAnimals(ctx context.Context, ids []string) ([]*Record, error) {
	return g.store.GetAnimals(ctx, ids)
}

func (g *Registry) ListAnimals(ctx context.Context, f Filter) ([]*Record, error) {
	return g.store.ListAnimals(ctx, f)
}

func (g *Registry) GetType(ctx context.Context, id string) (*Type, error) {
	return g.store.GetType(ctx, id)
}

func (g *Registry) ListTypes(ctx context.Context) ([]*Type, error) {
	return g.store.ListTypes(ctx)
}

// CreateType stores a new animal type and returns it with ID and timestamp
// assigned.
func (g *Registry) CreateType(ctx context.Context, t *Type) (*Type, error) {
	if err := errors.ValidateName(t.Name); err != nil {
		return nil, err
	}
	if t.Name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "type name is required")
	}
	types, err := g.store.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range types {
		if existing.Name == t.Name {
			return nil, errors.New(errors.ErrCodeConflict, "animal type %q already exists", t.Name)
		}
	}
	out := *t
	if out.ID == "" {
		out.ID = g.newID()
	}
	out.CreatedAt = g.now()
	if err := g.store.InsertType(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAnimal validates r, checks its type and parents exist, and stores
// it. The returned record carries the assigned ID and timestamps.
func (g *Registry) CreateAnimal(ctx context.Context, r *Record) (*Record, error) {
	out := r.Clone()
	if out.ID == "" {
		out.ID = g.newID()
	}
	if err := g.prepare(ctx, out); err != nil {
		return nil, err
	}
	out.CreatedAt = g.now()
	out.UpdatedAt = out.CreatedAt
	if err := g.store.InsertAnimal(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAnimal replaces the stored record with r, applying the same checks
// as CreateAnimal. It also rejects a parent assignment that would make r its
// own ancestor.
func (g *Registry) UpdateAnimal(ctx context.Context, r *Record) (*Record, error) {
	existing, err := g.store.GetAnimal(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	out := r.Clone()
	if err := g.prepare(ctx, out); err != nil {
		return nil, err
	}
	if err := g.checkAncestry(ctx, out); err != nil {
		return nil, err
	}
	out.CreatedAt = existing.CreatedAt
	out.UpdatedAt = g.now()
	if err := g.store.ReplaceAnimal(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAnimal removes the record unless other animals name it as a parent.
func (g *Registry) DeleteAnimal(ctx context.Context, id string) error {
	if _, err := g.store.GetAnimal(ctx, id); err != nil {
		return err
	}
	children, err := g.store.Children(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return errors.New(errors.ErrCodeConflict, "animal %q is a parent of %d other animals and cannot be deleted", id, len(children))
	}
	return g.store.RemoveAnimal(ctx, id)
}

// Offspring returns the children of id, each tagged with the parent slot
// that links it, ordered by identifier.
func (g *Registry) Offspring(ctx context.Context, id string) ([]Offspring, error) {
	if _, err := g.store.GetAnimal(ctx, id); err != nil {
		return nil, err
	}
	children, err := g.store.Children(ctx, id)
	if err != nil {
		return nil, err
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Identifier < children[j].Identifier })
	out := make([]Offspring, 0, len(children))
	for _, c := range children {
		rel := RelFather
		if c.MotherID == id {
			rel = RelMother
		}
		out = append(out, Offspring{Record: c, Relationship: rel})
	}
	return out, nil
}

// Close closes the wrapped store.
func (g *Registry) Close() error {
	return g.store.Close()
}

func (g *Registry) prepare(ctx context.Context, r *Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	t, err := g.store.GetType(ctx, r.TypeID)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return errors.New(errors.ErrCodeInvalidInput, "animal type %q does not exist", r.TypeID)
		}
		return err
	}
	r.TypeName = t.Name

	parents := r.ParentIDs()
	if len(parents) == 0 {
		return nil
	}
	found, err := g.store.GetAnimals(ctx, parents)
	if err != nil {
		return err
	}
	byID := make(map[string]*Record, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	if r.MotherID != "" && byID[r.MotherID] == nil {
		return errors.New(errors.ErrCodeInvalidInput, "mother %q does not exist", r.MotherID)
	}
	if r.FatherID != "" && byID[r.FatherID] == nil {
		return errors.New(errors.ErrCodeInvalidInput, "father %q does not exist", r.FatherID)
	}
	return nil
}

// checkAncestry walks r's ancestors looking for r itself. Only updates can
// introduce such a loop since a new record has no descendants yet.
func (g *Registry) checkAncestry(ctx context.Context, r *Record) error {
	seen := map[string]bool{}
	frontier := r.ParentIDs()
	for len(frontier) > 0 {
		records, err := g.store.GetAnimals(ctx, frontier)
		if err != nil {
			return err
		}
		var next []string
		for _, p := range records {
			if p.ID == r.ID {
				return errors.New(errors.ErrCodeDataIntegrityCycle, "animal %s would become its own ancestor", r.Identifier)
			}
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			next = append(next, p.ParentIDs()...)
		}
		frontier = next
	}
	return nil
}
