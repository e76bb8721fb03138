package fileService

import (
	"context"
	"encoding/base64"
	"errors"
	"math"
	"os"
	"testing"

	"files-manager/internal/blob"
	"files-manager/internal/model/apperr"
	"files-manager/internal/model/fileInfo"
	"files-manager/internal/queue"
	"files-manager/internal/repository/memoryRepo"
	"files-manager/pkg/logger"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	bob   int64 = 1
	alice int64 = 2
)

type fixture struct {
	svc   *FileService
	repo  *memoryRepo.FileRepo
	fs    afero.Fs
	blobs *blob.FSStore
	jobs  *queue.ChanQueue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	blobs, err := blob.NewFSStore(fs, "/tmp/files_manager")
	require.NoError(t, err)
	repo := memoryRepo.NewFileRepo()
	jobs := queue.NewChanQueue(16)
	return &fixture{svc: New(repo, blobs, jobs), repo: repo, fs: fs, blobs: blobs, jobs: jobs}
}

func (f *fixture) blobCount(t *testing.T) int {
	t.Helper()
	n := 0
	err := afero.Walk(f.fs, "/tmp/files_manager", func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func b64(s string) *string {
	v := base64.StdEncoding.EncodeToString([]byte(s))
	return &v
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, queue.Job) error {
	return errors.New("redis down")
}

func TestCreateFile_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name string
		in   CreateFileInput
		msg  string
	}{
		{"missing name", CreateFileInput{Type: fileInfo.TypeFile, Data: b64("x")}, "Missing name"},
		{"missing type", CreateFileInput{Name: "a"}, "Missing type"},
		{"unknown type", CreateFileInput{Name: "a", Type: "video", Data: b64("x")}, "Missing type"},
		{"file without data", CreateFileInput{Name: "a", Type: fileInfo.TypeFile}, "Missing data"},
		{"image without data", CreateFileInput{Name: "a.png", Type: fileInfo.TypeImage}, "Missing data"},
		{"file with empty data", CreateFileInput{Name: "a", Type: fileInfo.TypeFile, Data: b64("")}, "Missing data"},
		{"image with empty data", CreateFileInput{Name: "a.png", Type: fileInfo.TypeImage, Data: b64("")}, "Missing data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateFile(ctx, bob, tt.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.EqualError(t, err, tt.msg)
		})
	}

	t.Run("bad base64", func(t *testing.T) {
		bad := "%%%"
		_, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "a", Type: fileInfo.TypeFile, Data: &bad})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
	assert.Equal(t, 0, f.blobCount(t))
}

func TestCreateFile_Parent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	plain, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "a.txt", Type: fileInfo.TypeFile, Data: b64("hi")})
	require.NoError(t, err)

	t.Run("parent is a file", func(t *testing.T) {
		_, err := f.svc.CreateFile(ctx, bob, CreateFileInput{
			Name: "b.txt", Type: fileInfo.TypeFile, Data: b64("x"), ParentID: plain.ID,
		})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("parent missing", func(t *testing.T) {
		_, err := f.svc.CreateFile(ctx, bob, CreateFileInput{
			Name: "b.txt", Type: fileInfo.TypeFile, Data: b64("x"), ParentID: 999999,
		})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("parent is a folder", func(t *testing.T) {
		dir, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "docs", Type: fileInfo.TypeFolder})
		require.NoError(t, err)
		child, err := f.svc.CreateFile(ctx, bob, CreateFileInput{
			Name: "c.txt", Type: fileInfo.TypeFile, Data: b64("x"), ParentID: dir.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, dir.ID, child.ParentID)
	})
}

func TestCreateFile_Blobs(t *testing.T) {
	ctx := context.Background()

	t.Run("folder writes no blob", func(t *testing.T) {
		f := newFixture(t)
		dir, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "docs", Type: fileInfo.TypeFolder, Data: b64("ignored")})
		require.NoError(t, err)
		assert.Empty(t, dir.LocalPath)
		assert.Equal(t, 0, f.blobCount(t))
	})

	t.Run("file writes exactly one blob with the decoded bytes", func(t *testing.T) {
		f := newFixture(t)
		file, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "a.txt", Type: fileInfo.TypeFile, Data: b64("hello world")})
		require.NoError(t, err)
		assert.NotZero(t, file.ID)
		assert.False(t, file.IsPublic)
		assert.Equal(t, 1, f.blobCount(t))

		data, err := f.blobs.Get(ctx, file.LocalPath)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello world"), data)
		assert.Equal(t, 0, f.jobs.Len())
	})

	t.Run("image enqueues a job", func(t *testing.T) {
		f := newFixture(t)
		img, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "p.png", Type: fileInfo.TypeImage, Data: b64("png")})
		require.NoError(t, err)
		assert.Equal(t, 1, f.blobCount(t))

		d, err := f.jobs.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, queue.Job{FileID: img.ID, UserID: bob}, d.Job)
	})

	t.Run("enqueue failure is logged not returned", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		ctx := logger.WithLogger(context.Background(), logger.FromZap(zap.New(core)))

		blobs, err := blob.NewFSStore(afero.NewMemMapFs(), "/data")
		require.NoError(t, err)
		svc := New(memoryRepo.NewFileRepo(), blobs, failingPublisher{})

		img, err := svc.CreateFile(ctx, bob, CreateFileInput{Name: "p.png", Type: fileInfo.TypeImage, Data: b64("png")})
		require.NoError(t, err)
		assert.NotZero(t, img.ID)
		assert.Equal(t, 1, logs.FilterMessage("failed to enqueue thumbnail job").Len())
	})
}

func TestGetFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "a.txt", Type: fileInfo.TypeFile, Data: b64("hi")})
	require.NoError(t, err)

	got, err := f.svc.GetFile(ctx, bob, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)

	_, errPrivate := f.svc.GetFile(ctx, alice, file.ID)
	_, errMissing := f.svc.GetFile(ctx, alice, 424242)
	assert.ErrorIs(t, errPrivate, apperr.ErrNotFound)
	assert.ErrorIs(t, errMissing, apperr.ErrNotFound)
	assert.Equal(t, errMissing.Error(), errPrivate.Error())
}

func TestListFiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, name := range []string{"1", "2", "3", "4", "5"} {
		_, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: name, Type: fileInfo.TypeFolder})
		require.NoError(t, err)
	}
	_, err := f.svc.CreateFile(ctx, alice, CreateFileInput{Name: "shared", Type: fileInfo.TypeFolder, IsPublic: true})
	require.NoError(t, err)

	t.Run("paginates in insertion order", func(t *testing.T) {
		page, err := f.svc.ListFiles(ctx, bob, fileInfo.RootID, 1, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "3", page[0].Name)
		assert.Equal(t, "4", page[1].Name)
	})

	t.Run("defaults", func(t *testing.T) {
		all, err := f.svc.ListFiles(ctx, bob, fileInfo.RootID, -3, 0)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("never returns other users files", func(t *testing.T) {
		all, err := f.svc.ListFiles(ctx, bob, fileInfo.RootID, 0, 100)
		require.NoError(t, err)
		for _, file := range all {
			assert.Equal(t, bob, file.UserID)
		}
	})

	t.Run("page past the addressable range is empty", func(t *testing.T) {
		for _, page := range []int{math.MaxInt/20 + 1, math.MaxInt} {
			files, err := f.svc.ListFiles(ctx, bob, fileInfo.RootID, page, 20)
			require.NoError(t, err)
			assert.NotNil(t, files)
			assert.Empty(t, files, "page %d", page)
		}
	})

	t.Run("empty listing is not nil", func(t *testing.T) {
		none, err := f.svc.ListFiles(ctx, 99, fileInfo.RootID, 0, 20)
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func TestSetPublic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "a.txt", Type: fileInfo.TypeFile, Data: b64("hi")})
	require.NoError(t, err)

	_, err = f.svc.SetPublic(ctx, alice, file.ID, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.SetPublic(ctx, bob, 424242, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err := f.svc.SetPublic(ctx, bob, file.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsPublic)

	_, err = f.svc.SetPublic(ctx, alice, file.ID, false)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "public files stay owner-only for writes")

	updated, err = f.svc.SetPublic(ctx, bob, file.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsPublic)
}

func TestReadFileContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("original with mime from extension", func(t *testing.T) {
		file, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "a.txt", Type: fileInfo.TypeFile, Data: b64("hi")})
		require.NoError(t, err)

		content, err := f.svc.ReadFileContent(ctx, bob, file.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, []byte("hi"), content.Data)
		assert.Contains(t, content.MimeType, "text/plain")
	})

	t.Run("mime sniffed without extension", func(t *testing.T) {
		file, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "README", Type: fileInfo.TypeFile, Data: b64("plain words")})
		require.NoError(t, err)

		content, err := f.svc.ReadFileContent(ctx, bob, file.ID, 0)
		require.NoError(t, err)
		assert.Contains(t, content.MimeType, "text/plain")
	})

	t.Run("folder has no content", func(t *testing.T) {
		dir, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "docs", Type: fileInfo.TypeFolder})
		require.NoError(t, err)
		_, err = f.svc.ReadFileContent(ctx, bob, dir.ID, 0)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("derivative pending then available", func(t *testing.T) {
		img, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "p.png", Type: fileInfo.TypeImage, Data: b64("png")})
		require.NoError(t, err)

		_, err = f.svc.ReadFileContent(ctx, bob, img.ID, 250)
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		require.NoError(t, f.blobs.Put(ctx, fileInfo.DerivativePath(img.LocalPath, 250), []byte("thumb")))
		content, err := f.svc.ReadFileContent(ctx, bob, img.ID, 250)
		require.NoError(t, err)
		assert.Equal(t, []byte("thumb"), content.Data)
		assert.Equal(t, "image/png", content.MimeType)
	})

	t.Run("unsupported size falls back to original", func(t *testing.T) {
		img, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "q.png", Type: fileInfo.TypeImage, Data: b64("orig")})
		require.NoError(t, err)
		content, err := f.svc.ReadFileContent(ctx, bob, img.ID, 42)
		require.NoError(t, err)
		assert.Equal(t, []byte("orig"), content.Data)
	})

	t.Run("private file hidden from others", func(t *testing.T) {
		file, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "s.txt", Type: fileInfo.TypeFile, Data: b64("secret")})
		require.NoError(t, err)
		_, err = f.svc.ReadFileContent(ctx, alice, file.ID, 0)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = f.svc.ReadFileContent(ctx, 0, file.ID, 0)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestPublishScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	files, err := f.svc.ListFiles(ctx, bob, fileInfo.RootID, 0, DefaultPageSize)
	require.NoError(t, err)
	assert.Empty(t, files)

	file, err := f.svc.CreateFile(ctx, bob, CreateFileInput{Name: "a.txt", Type: fileInfo.TypeFile, Data: b64("hi")})
	require.NoError(t, err)
	assert.False(t, file.IsPublic)

	content, err := f.svc.ReadFileContent(ctx, bob, file.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(content.Data))

	_, err = f.svc.GetFile(ctx, alice, file.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.SetPublic(ctx, bob, file.ID, true)
	require.NoError(t, err)

	got, err := f.svc.GetFile(ctx, alice, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got.Name)

	aliceFiles, err := f.svc.ListFiles(ctx, alice, fileInfo.RootID, 0, DefaultPageSize)
	require.NoError(t, err)
	assert.Empty(t, aliceFiles)
}
