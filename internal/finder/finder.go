// Package finder abstracts where templates live. The resolver only
// ever asks a Finder whether a template exists under a root; it never
// touches storage directly, so roots can be directories, fixtures, or
// object-store prefixes.
package finder

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when the template does not exist.
var ErrNotFound = errors.New("template not found in root")

// Finder reports whether a template exists under a root. Root
// identifiers are opaque to the resolver; their meaning belongs to the
// implementation. Exists may block on I/O and must honor ctx.
type Finder interface {
	Exists(ctx context.Context, root, name string) (bool, error)
}

// Reader additionally loads template content. The preview server needs
// this; the resolver does not.
type Reader interface {
	Read(ctx context.Context, root, name string) ([]byte, error)
}

// ReadFinder combines existence checks with content loading.
type ReadFinder interface {
	Finder
	Reader
}
