package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact is one exported file.
type Artifact struct {
	Name string
	Data []byte
}

// Sink stores finished artifacts.
type Sink interface {
	Save(ctx context.Context, a Artifact) error
}

// DirSink writes artifacts into a local directory.
type DirSink struct {
	Dir string
}

func (s DirSink) Save(_ context.Context, a Artifact) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(a.Name))
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Path is where an artifact named name ends up.
func (s DirSink) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}
