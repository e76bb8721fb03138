package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"files-manager/internal/model/apperr"

	"github.com/spf13/afero"
)

var ErrPathTraversal = errors.New("path escapes root")

// FSStore keeps blobs on a filesystem tree rooted at root.
type FSStore struct {
	fs   afero.Fs
	root string
}

func NewFSStore(fsys afero.Fs, root string) (*FSStore, error) {
	if root == "" {
		return nil, errors.New("root is required")
	}
	root = filepath.Clean(root)
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create root %s: %v", apperr.ErrStorage, root, err)
	}
	return &FSStore{fs: fsys, root: root}, nil
}

// NewOSStore is the production store on the local disk.
func NewOSStore(root string) (*FSStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return NewFSStore(afero.NewOsFs(), abs)
}

func (s *FSStore) Root() string {
	return s.root
}

func (s *FSStore) NewPath() string {
	return filepath.FromSlash(newPath(filepath.ToSlash(s.root)))
}

func (s *FSStore) Put(_ context.Context, p string, data []byte) error {
	local, err := s.local(p)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if err := afero.WriteFile(s.fs, local, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", apperr.ErrStorage, local, err)
	}
	return nil
}

func (s *FSStore) Get(_ context.Context, p string) ([]byte, error) {
	local, err := s.local(p)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, local)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", apperr.ErrStorage, local, err)
	}
	return data, nil
}

func (s *FSStore) Exists(_ context.Context, p string) (bool, error) {
	local, err := s.local(p)
	if err != nil {
		return false, err
	}
	st, err := s.fs.Stat(local)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: stat %s: %v", apperr.ErrStorage, local, err)
	}
	return !st.IsDir(), nil
}

// local rejects paths that resolve outside the store root.
func (s *FSStore) local(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.root, p)
	}
	p = filepath.Clean(p)
	if !isWithin(s.root, p) || p == s.root {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, p)
	}
	return p, nil
}

func isWithin(root, candidate string) bool {
	sep := string(filepath.Separator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(candidate, root)
}
