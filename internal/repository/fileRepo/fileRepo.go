package fileRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"files-manager/internal/model/apperr"
	"files-manager/internal/model/fileInfo"
	"files-manager/pkg/database/postgres"
)

const fileColumns = `id, user_id, name, type, is_public, parent_id, local_path, created_at`

type FileRepository struct {
	db postgres.DBTX
}

func New(db postgres.DBTX) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts the record and fills in its generated id and creation time.
func (r *FileRepository) Create(ctx context.Context, file *fileInfo.File) error {
	var localPath sql.NullString
	if !file.IsFolder() {
		localPath = sql.NullString{String: file.LocalPath, Valid: true}
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO files (user_id, name, type, is_public, parent_id, local_path)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		file.UserID, file.Name, string(file.Type), file.IsPublic, file.ParentID, localPath).
		Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, fileID int64) (*fileInfo.File, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1`, fileID)
	return scanFile(row)
}

// ListByOwner pages through the owner's files under parentID in insertion order.
func (r *FileRepository) ListByOwner(ctx context.Context, ownerID, parentID int64, skip, limit int) ([]*fileInfo.File, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+fileColumns+`
		 FROM files WHERE user_id = $1 AND parent_id = $2
		 ORDER BY id
		 OFFSET $3 LIMIT $4`, ownerID, parentID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	files := make([]*fileInfo.File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// SetPublic updates visibility only when ownerID owns the file; otherwise ErrNotFound.
func (r *FileRepository) SetPublic(ctx context.Context, fileID, ownerID int64, value bool) (*fileInfo.File, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE files SET is_public = $1
		 WHERE id = $2 AND user_id = $3
		 RETURNING `+fileColumns, value, fileID, ownerID)
	return scanFile(row)
}

func (r *FileRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*fileInfo.File, error) {
	var (
		file      fileInfo.File
		fileType  string
		localPath sql.NullString
	)
	err := s.Scan(&file.ID, &file.UserID, &file.Name, &fileType, &file.IsPublic,
		&file.ParentID, &localPath, &file.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan file: %w", err)
	}
	file.Type = fileInfo.FileType(fileType)
	file.LocalPath = localPath.String
	return &file, nil
}
