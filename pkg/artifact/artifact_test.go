package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/pedigree/pkg/errors"
)

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink, err := NewDirSink(dir)
	if err != nil {
		t.Fatal(err)
	}

	loc, err := sink.Put(context.Background(), &Artifact{Name: "pedigree_Bessie_20250506_1430.json", Data: []byte("{}")})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if loc != filepath.Join(dir, "pedigree_Bessie_20250506_1430.json") {
		t.Errorf("location = %s", loc)
	}
	data, err := os.ReadFile(loc)
	if err != nil || string(data) != "{}" {
		t.Errorf("file content = %q, %v", data, err)
	}
}

func TestDirSinkRejectsTraversal(t *testing.T) {
	sink, _ := NewDirSink(t.TempDir())
	for _, name := range []string{"../escape.png", "a/b.png", ""} {
		if _, err := sink.Put(context.Background(), &Artifact{Name: name}); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Put(%q) error = %v, want INVALID_INPUT", name, err)
		}
	}
}
