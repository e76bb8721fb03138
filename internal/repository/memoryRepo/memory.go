// Package memoryRepo keeps users and files in process memory. It backs tests and
// the single-process METADATA_BACKEND=memory mode.
package memoryRepo

import (
	"context"
	"sync"
	"time"

	"files-manager/internal/model/apperr"
	"files-manager/internal/model/fileInfo"
	"files-manager/internal/model/user"
)

type UserRepo struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*user.User
	byEmail map[string]int64
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[int64]*user.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UserRepo) Create(_ context.Context, email, passwordHash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return 0, apperr.ErrAlreadyExists
	}
	r.nextID++
	r.byID[r.nextID] = &user.User{ID: r.nextID, Email: email, Password: passwordHash, CreatedAt: time.Now()}
	r.byEmail[email] = r.nextID
	return r.nextID, nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

// FileRepo stores copies so callers never share mutable records with the store.
type FileRepo struct {
	mu     sync.RWMutex
	nextID int64
	files  []*fileInfo.File
	byID   map[int64]*fileInfo.File
}

func NewFileRepo() *FileRepo {
	return &FileRepo{byID: make(map[int64]*fileInfo.File)}
}

func (r *FileRepo) Create(_ context.Context, file *fileInfo.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	file.ID = r.nextID
	file.CreatedAt = time.Now()
	if file.IsFolder() {
		file.LocalPath = ""
	}
	cp := *file
	r.files = append(r.files, &cp)
	r.byID[cp.ID] = &cp
	return nil
}

func (r *FileRepo) GetByID(_ context.Context, fileID int64) (*fileInfo.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[fileID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *FileRepo) ListByOwner(_ context.Context, ownerID, parentID int64, skip, limit int) ([]*fileInfo.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*fileInfo.File, 0)
	matched := 0
	for _, f := range r.files {
		if f.UserID != ownerID || f.ParentID != parentID {
			continue
		}
		matched++
		if matched <= skip {
			continue
		}
		if len(result) >= limit {
			break
		}
		cp := *f
		result = append(result, &cp)
	}
	return result, nil
}

func (r *FileRepo) SetPublic(_ context.Context, fileID, ownerID int64, value bool) (*fileInfo.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.byID[fileID]
	if !ok || f.UserID != ownerID {
		return nil, apperr.ErrNotFound
	}
	f.IsPublic = value
	cp := *f
	return &cp, nil
}

func (r *FileRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.files)), nil
}

// Ping satisfies the status probe; memory is always reachable.
func (r *FileRepo) Ping(_ context.Context) error {
	return nil
}
