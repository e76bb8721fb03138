// Package blob stores raw file bytes. Originals live at a generated path under a
// configured root and each derivative lives next to it at "<path>_<size>".
package blob

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
)

type Store interface {
	// NewPath allocates a fresh, collision-free path under the store root.
	NewPath() string
	// Put writes data at p, replacing anything already there.
	Put(ctx context.Context, p string, data []byte) error
	// Get returns apperr.ErrNotFound when nothing is stored at p.
	Get(ctx context.Context, p string) ([]byte, error)
	Exists(ctx context.Context, p string) (bool, error)
}

func newPath(root string) string {
	return path.Join(root, uuid.NewString())
}

// objectKey maps a blob path to an object-store key.
func objectKey(p string) string {
	return strings.TrimLeft(path.Clean("/"+p), "/")
}
