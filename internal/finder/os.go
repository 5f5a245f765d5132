package finder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// OS finds templates on the local filesystem. Roots are directory
// paths; names are slash-separated relative paths.
type OS struct{}

// NewOS creates a filesystem-backed finder.
func NewOS() *OS {
	return &OS{}
}

func (f *OS) Exists(ctx context.Context, root, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := os.Stat(f.path(root, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking template %q in %q: %w", name, root, err)
	}

	// Directories do not count as templates.
	return info.Mode().IsRegular(), nil
}

func (f *OS) Read(ctx context.Context, root, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(root, name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %q in %q", ErrNotFound, name, root)
	}
	if err != nil {
		return nil, fmt.Errorf("reading template %q in %q: %w", name, root, err)
	}

	return data, nil
}

func (f *OS) path(root, name string) string {
	return filepath.Join(root, filepath.FromSlash(name))
}
