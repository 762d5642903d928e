package pedigree

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/observability"
)

// Options configures a Resolver.
type Options struct {
	// Logger receives debug output for cut branches. Defaults to a discard
	// logger.
	Logger *log.Logger
}

// Resolver builds ancestry trees from an animal.Reader. It keeps no state
// between calls; each Resolve returns a fresh tree.
type Resolver struct {
	repo   animal.Reader
	logger *log.Logger
}

// NewResolver returns a resolver reading from repo.
func NewResolver(repo animal.Reader, opts Options) *Resolver {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Resolver{repo: repo, logger: opts.Logger}
}

// pending is a node whose parents have not been fetched yet, together with
// the IDs on the path from the root down to it (inclusive).
type pending struct {
	node    *Node
	rec     *animal.Record
	lineage []string
}

// Resolve returns the ancestry of rootID up to generations levels above the
// root. generations is clamped to [MinGenerations, MaxGenerations].
//
// The root lookup is one repository call; each further level is exactly
// one GetAnimals call, so a full resolution costs at most generations+1
// round trips. Level d+1 is never requested before level d is complete.
//
// An unknown root returns a NOT_FOUND error and no tree. Any repository
// failure aborts the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, rootID string, generations int) (tree *Node, err error) {
	generations = ClampGenerations(generations)
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnResolveStart(ctx, rootID, generations)
	defer func() {
		hooks.OnResolveComplete(ctx, rootID, tree.Count(), time.Since(start), err)
	}()

	rec, err := r.repo.GetAnimal(ctx, rootID)
	if err != nil {
		return nil, err
	}
	root := newNode(rec, 0)
	level := []pending{{node: root, rec: rec, lineage: []string{rec.ID}}}

	for depth := 1; depth <= generations && len(level) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ids := r.wanted(level)
		if len(ids) == 0 {
			break
		}
		found, err := r.repo.GetAnimals(ctx, ids)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "fetch generation %d of %s", depth, rootID)
		}
		byID := make(map[string]*animal.Record, len(found))
		for _, p := range found {
			byID[p.ID] = p
		}

		next := make([]pending, 0, 2*len(level))
		for _, p := range level {
			if m := r.attach(p, p.rec.MotherID, byID, depth); m != nil {
				p.node.Mother = m.node
				next = append(next, *m)
			}
			if f := r.attach(p, p.rec.FatherID, byID, depth); f != nil {
				p.node.Father = f.node
				next = append(next, *f)
			}
		}
		level = next
	}

	r.logger.Debug("resolved ancestry", "root", rootID, "generations", generations, "nodes", root.Count())
	return root, nil
}

// wanted collects the distinct parent IDs of the current level that pass the
// cycle guard, in mother-then-father order.
func (r *Resolver) wanted(level []pending) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, p := range level {
		for _, id := range p.rec.ParentIDs() {
			if slices.Contains(p.lineage, id) || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// attach returns the pending entry for parent id of p, or nil when the
// parent is absent.
func (r *Resolver) attach(p pending, id string, byID map[string]*animal.Record, depth int) *pending {
	if id == "" {
		return nil
	}
	if slices.Contains(p.lineage, id) {
		r.logger.Debug("cycle guard cut branch",
			"code", errors.ErrCodeDataIntegrityCycle,
			"animal", p.rec.ID,
			"parent", id,
			"depth", depth)
		return nil
	}
	rec, ok := byID[id]
	if !ok {
		r.logger.Debug("parent record missing", "animal", p.rec.ID, "parent", id)
		return nil
	}
	lineage := make([]string, len(p.lineage), len(p.lineage)+1)
	copy(lineage, p.lineage)
	return &pending{
		node:    newNode(rec, depth),
		rec:     rec,
		lineage: append(lineage, id),
	}
}
