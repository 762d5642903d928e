// Package artifact defines exported files and the sinks that persist them.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/pedigree/pkg/errors"
)

// Artifact is one exported file.
type Artifact struct {
	// ID uniquely identifies this export run.
	ID          string
	Name        string
	Format      string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
	// Cached reports whether Data came from the artifact cache.
	Cached bool
	// Location is where a sink stored the artifact, if any.
	Location string
}

// Sink persists artifacts and returns where they were written.
type Sink interface {
	Put(ctx context.Context, a *Artifact) (string, error)
}

// DirSink writes artifacts as files into a directory.
type DirSink struct {
	dir string
}

// NewDirSink returns a sink writing into dir, creating it if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Put writes a.Data to <dir>/<a.Name>, replacing any existing file.
func (s *DirSink) Put(_ context.Context, a *Artifact) (string, error) {
	if err := errors.ValidateArtifactName(a.Name); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, a.Name)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}
