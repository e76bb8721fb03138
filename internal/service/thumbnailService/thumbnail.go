// Package thumbnailService derives fixed-width variants of uploaded images.
package thumbnailService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"time"

	"files-manager/internal/blob"
	"files-manager/internal/model/apperr"
	"files-manager/internal/model/fileInfo"
	"files-manager/internal/queue"
	"files-manager/pkg/logger"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultLockTTL = 2 * time.Minute
	jpegQuality    = 90
)

// ErrLocked means the file is locked by another worker, live or crashed.
// The job must be retried once the lock is released or expires.
var ErrLocked = errors.New("thumbnail job already in progress")

type FileReader interface {
	GetByID(ctx context.Context, fileID int64) (*fileInfo.File, error)
}

type Locker interface {
	Acquire(ctx context.Context, fileID int64, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, fileID int64, token string) error
}

type Processor struct {
	files   FileReader
	blobs   blob.Store
	locker  Locker
	lockTTL time.Duration
}

// New builds a processor. locker may be nil when a single worker consumes the queue.
func New(files FileReader, blobs blob.Store, locker Locker) *Processor {
	return &Processor{files: files, blobs: blobs, locker: locker, lockTTL: DefaultLockTTL}
}

// Process writes every derivative of the job's image, overwriting older ones.
// Rejected jobs return ErrValidation or ErrNotFound and must not be retried.
func (p *Processor) Process(ctx context.Context, job queue.Job) error {
	if job.FileID == 0 {
		return apperr.Validation("Missing fileId")
	}
	if job.UserID == 0 {
		return apperr.Validation("Missing userId")
	}

	file, err := p.files.GetByID(ctx, job.FileID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound("File not found")
	}
	if err != nil {
		return fmt.Errorf("failed to get file %d: %w", job.FileID, err)
	}
	if file.UserID != job.UserID {
		return apperr.NotFound("File not found")
	}
	if file.Type != fileInfo.TypeImage {
		return apperr.Validation("File is not an image")
	}

	if p.locker != nil {
		token, ok, err := p.locker.Acquire(ctx, file.ID, p.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to lock file %d: %w", file.ID, err)
		}
		if !ok {
			return ErrLocked
		}
		defer func() {
			if err := p.locker.Release(context.WithoutCancel(ctx), file.ID, token); err != nil {
				logger.GetLogger(ctx).Warn("failed to release thumbnail lock",
					zap.Int64("fileId", file.ID), zap.Error(err))
			}
		}()
	}

	return p.generate(ctx, file)
}

func (p *Processor) generate(ctx context.Context, file *fileInfo.File) error {
	original, err := p.blobs.Get(ctx, file.LocalPath)
	if err != nil {
		return fmt.Errorf("%w: read original: %w", apperr.ErrPipeline, err)
	}
	src, format, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return fmt.Errorf("%w: decode original: %w", apperr.ErrPipeline, err)
	}
	if src.Bounds().Empty() {
		return fmt.Errorf("%w: empty image", apperr.ErrPipeline)
	}

	var errs error
	for _, width := range fileInfo.ThumbnailSizes {
		data, err := encode(resize(src, width), format)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("size %d: %w", width, err))
			continue
		}
		if err := p.blobs.Put(ctx, fileInfo.DerivativePath(file.LocalPath, width), data); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("size %d: %w", width, err))
		}
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", apperr.ErrPipeline, errs)
	}
	return nil
}

// resize scales src to the given width, keeping the aspect ratio.
func resize(src image.Image, width int) image.Image {
	b := src.Bounds()
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == "jpeg" {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
