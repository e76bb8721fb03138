package fileService

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"files-manager/internal/blob"
	"files-manager/internal/model/apperr"
	"files-manager/internal/model/fileInfo"
	"files-manager/internal/queue"
	"files-manager/internal/service/access"
	"files-manager/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	enqueueTimeout  = 2 * time.Second
)

type FileRepository interface {
	Create(ctx context.Context, file *fileInfo.File) error
	GetByID(ctx context.Context, fileID int64) (*fileInfo.File, error)
	ListByOwner(ctx context.Context, ownerID, parentID int64, skip, limit int) ([]*fileInfo.File, error)
	SetPublic(ctx context.Context, fileID, ownerID int64, value bool) (*fileInfo.File, error)
}

type FileService struct {
	fileRepo FileRepository
	blobs    blob.Store
	jobs     queue.Publisher
}

func New(fileRepo FileRepository, blobs blob.Store, jobs queue.Publisher) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		blobs:    blobs,
		jobs:     jobs,
	}
}

type CreateFileInput struct {
	Name     string            `json:"name"`
	Type     fileInfo.FileType `json:"type"`
	ParentID int64             `json:"parentId"`
	IsPublic bool              `json:"isPublic"`
	// Data is the base64 content; required unless Type is folder.
	Data *string `json:"data"`
}

func (s *FileService) CreateFile(ctx context.Context, caller int64, in CreateFileInput) (*fileInfo.File, error) {
	if in.Name == "" {
		return nil, apperr.Validation("Missing name")
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation("Missing type")
	}
	if in.Type != fileInfo.TypeFolder && (in.Data == nil || *in.Data == "") {
		return nil, apperr.Validation("Missing data")
	}

	if in.ParentID != fileInfo.RootID {
		parent, err := s.fileRepo.GetByID(ctx, in.ParentID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Parent not found")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get parent: %w", err)
		}
		if !parent.IsFolder() {
			return nil, apperr.Validation("Parent is not a folder")
		}
	}

	file := &fileInfo.File{
		UserID:   caller,
		Name:     in.Name,
		Type:     in.Type,
		IsPublic: in.IsPublic,
		ParentID: in.ParentID,
	}

	if !file.IsFolder() {
		data, err := base64.StdEncoding.DecodeString(*in.Data)
		if err != nil {
			return nil, apperr.Validation("Invalid data")
		}
		file.LocalPath = s.blobs.NewPath()
		if err := s.blobs.Put(ctx, file.LocalPath, data); err != nil {
			return nil, fmt.Errorf("failed to store file data: %w", err)
		}
	}

	// A failure here leaves an orphan blob behind; nothing reclaims it.
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	if file.Type == fileInfo.TypeImage {
		s.enqueueThumbnails(ctx, file)
	}
	return file, nil
}

// enqueueThumbnails is best effort: the upload already succeeded.
func (s *FileService) enqueueThumbnails(ctx context.Context, file *fileInfo.File) {
	if s.jobs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()

	job := queue.Job{FileID: file.ID, UserID: file.UserID}
	if err := s.jobs.Publish(ctx, job); err != nil {
		logger.GetLogger(ctx).Warn("failed to enqueue thumbnail job",
			zap.Int64("fileId", file.ID), zap.Error(err))
	}
}

func (s *FileService) GetFile(ctx context.Context, caller, fileID int64) (*fileInfo.File, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	// a private file of another user looks exactly like a missing one
	if !access.CanRead(caller, file) {
		return nil, apperr.NotFound("Not found")
	}
	return file, nil
}

// ListFiles returns only caller-owned files, whatever their visibility.
func (s *FileService) ListFiles(ctx context.Context, caller, parentID int64, page, pageSize int) ([]*fileInfo.File, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	// past the last addressable offset there is nothing to list
	if page > math.MaxInt/pageSize {
		return []*fileInfo.File{}, nil
	}
	files, err := s.fileRepo.ListByOwner(ctx, caller, parentID, page*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

func (s *FileService) SetPublic(ctx context.Context, caller, fileID int64, value bool) (*fileInfo.File, error) {
	if caller == access.Anonymous {
		return nil, apperr.NotFound("Not found")
	}
	file, err := s.fileRepo.SetPublic(ctx, fileID, caller, value)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update file: %w", err)
	}
	return file, nil
}

type Content struct {
	Data     []byte
	MimeType string
}

// ReadFileContent returns the original blob, or its derivative when size is
// one of the thumbnail widths. A derivative that is not generated yet is ErrNotFound.
func (s *FileService) ReadFileContent(ctx context.Context, caller, fileID int64, size int) (*Content, error) {
	file, err := s.GetFile(ctx, caller, fileID)
	if err != nil {
		return nil, err
	}
	if file.IsFolder() {
		return nil, apperr.Validation("A folder doesn't have content")
	}

	p := file.LocalPath
	if fileInfo.IsThumbnailSize(size) {
		p = fileInfo.DerivativePath(file.LocalPath, size)
	}
	data, err := s.blobs.Get(ctx, p)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	return &Content{Data: data, MimeType: mimeType(file.Name, data)}, nil
}

func mimeType(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return mimetype.Detect(data).String()
}
