// Package access holds the read/modify rules for file records.
package access

import "files-manager/internal/model/fileInfo"

// Anonymous is the caller id of a request without a session.
const Anonymous int64 = 0

// CanRead reports whether caller may see file. Public files are readable by
// everyone, including anonymous callers.
func CanRead(caller int64, file *fileInfo.File) bool {
	if file == nil {
		return false
	}
	return file.IsPublic || (caller != Anonymous && file.UserID == caller)
}

// CanModify reports whether caller owns file. Visibility never grants write access.
func CanModify(caller int64, file *fileInfo.File) bool {
	if file == nil || caller == Anonymous {
		return false
	}
	return file.UserID == caller
}
