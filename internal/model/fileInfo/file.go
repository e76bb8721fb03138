package fileInfo

import (
	"fmt"
	"time"
)

type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

// RootID is the parent id of top-level files.
const RootID int64 = 0

func (t FileType) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	}
	return false
}

// File is a folder or a stored blob owned by one user. Folders never carry a LocalPath.
type File struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Type      FileType  `json:"type"`
	IsPublic  bool      `json:"isPublic"`
	ParentID  int64     `json:"parentId"`
	LocalPath string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}

func (f *File) IsFolder() bool {
	return f.Type == TypeFolder
}

// ThumbnailSizes are the widths derived from every image upload.
var ThumbnailSizes = []int{500, 250, 100}

func IsThumbnailSize(size int) bool {
	for _, s := range ThumbnailSizes {
		if s == size {
			return true
		}
	}
	return false
}

// DerivativePath is where the derivative of the given width lives.
func DerivativePath(localPath string, size int) string {
	return fmt.Sprintf("%s_%d", localPath, size)
}
