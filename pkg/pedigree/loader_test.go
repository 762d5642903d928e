package pedigree

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/store/memory"
)

// gatedReader blocks root lookups of slowID until gate is closed.
type gatedReader struct {
	animal.Reader
	slowID  string
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedReader) GetAnimal(ctx context.Context, id string) (*animal.Record, error) {
	if id == g.slowID {
		close(g.entered)
		<-g.gate
	}
	return g.Reader.GetAnimal(ctx, id)
}

func TestLoaderNewerLoadSupersedes(t *testing.T) {
	s := memory.New()
	put(t, s, &animal.Record{ID: "slow"}, &animal.Record{ID: "fast"})
	repo := &gatedReader{Reader: s, slowID: "slow", entered: make(chan struct{}), gate: make(chan struct{})}
	l := NewLoader(NewResolver(repo, Options{}))

	type result struct {
		tree *Node
		err  error
	}
	done := make(chan result, 1)
	go func() {
		tree, err := l.Load(context.Background(), "slow", 3)
		done <- result{tree, err}
	}()
	<-repo.entered

	if _, err := l.Load(context.Background(), "fast", 3); err != nil {
		t.Fatalf("Load(fast): %v", err)
	}
	close(repo.gate)

	r := <-done
	if !stderrors.Is(r.err, ErrSuperseded) || r.tree != nil {
		t.Errorf("superseded load = %v, %v; want ErrSuperseded", r.tree, r.err)
	}
	if cur := l.Current(); cur == nil || cur.ID != "fast" {
		t.Errorf("Current() = %+v, want fast", cur)
	}
}

func TestLoaderReloadAndFailure(t *testing.T) {
	s := memory.New()
	seedFullAncestry(t, s, "r", 4)
	l := NewLoader(NewResolver(s, Options{}))
	ctx := context.Background()

	if tree, err := l.Reload(ctx, 2); tree != nil || err != nil {
		t.Fatalf("Reload with nothing loaded = %v, %v", tree, err)
	}
	if _, err := l.Load(ctx, "r", 2); err != nil {
		t.Fatal(err)
	}
	tree, err := l.Reload(ctx, 9)
	if err != nil {
		t.Fatal(err)
	}
	if tree.MaxDepth() != 4 || l.Generations() != MaxGenerations {
		t.Errorf("after Reload(9): depth %d, generations %d", tree.MaxDepth(), l.Generations())
	}

	if _, err := l.Load(ctx, "ghost", 3); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("Load(ghost) error = %v", err)
	}
	if l.Current() != nil {
		t.Error("failed load left a stale tree installed")
	}

	l.Clear()
	if l.Current() != nil || l.Generations() != 0 {
		t.Error("Clear() did not reset loader")
	}
}
