package adapters

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/VoxDroid/dopesheet/internal/scene"
)

// FileSceneStore reads and writes YAML scene files on disk.
type FileSceneStore struct{}

// NewFileSceneStore returns a store backed by the filesystem.
func NewFileSceneStore() *FileSceneStore { return &FileSceneStore{} }

// Load parses and validates the scene file at path.
func (FileSceneStore) Load(_ context.Context, path string) (*scene.File, error) {
	f, err := scene.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return f, err
}

// Save writes f to path.
func (FileSceneStore) Save(_ context.Context, path string, f *scene.File) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}
