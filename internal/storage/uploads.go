package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"harvest-analytics-api/internal/models"
)

// FindUploadByHash returns the upload that already ingested this file, or
// nil when the file is new.
func (s *Store) FindUploadByHash(hash string) (*models.Upload, error) {
	row := s.db.QueryRow(`
		SELECT id, source_filename, file_hash, uploaded_at, sheet_kinds, rows_inserted
		FROM uploads WHERE file_hash = ?`, hash)

	upload, err := scanUpload(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return upload, err
}

func (s *Store) CreateUpload(filename, hash string) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO uploads (source_filename, file_hash) VALUES (?, ?)",
		filename, hash,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// FinishUpload records what the classifier and the inserts produced.
func (s *Store) FinishUpload(id int64, sheetKinds map[string]string, rowsInserted map[string]int) error {
	kindsJSON, err := json.Marshal(sheetKinds)
	if err != nil {
		return err
	}
	rowsJSON, err := json.Marshal(rowsInserted)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		"UPDATE uploads SET sheet_kinds = ?, rows_inserted = ? WHERE id = ?",
		string(kindsJSON), string(rowsJSON), id,
	)
	return err
}

func (s *Store) GetUpload(id int64) (*models.Upload, error) {
	row := s.db.QueryRow(`
		SELECT id, source_filename, file_hash, uploaded_at, sheet_kinds, rows_inserted
		FROM uploads WHERE id = ?`, id)

	upload, err := scanUpload(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return upload, err
}

// ListUploads pages newest-first from the given cursor position.
func (s *Store) ListUploads(before time.Time, beforeID int64, limit int) ([]models.Upload, error) {
	query := `
		SELECT id, source_filename, file_hash, uploaded_at, sheet_kinds, rows_inserted
		FROM uploads`
	args := []interface{}{}

	if !before.IsZero() {
		query += " WHERE (uploaded_at < ?) OR (uploaded_at = ? AND id < ?)"
		args = append(args, before, before, beforeID)
	}
	query += " ORDER BY uploaded_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uploads := []models.Upload{}
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *upload)
	}
	return uploads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUpload(row rowScanner) (*models.Upload, error) {
	var upload models.Upload
	var kindsJSON, rowsJSON string

	err := row.Scan(
		&upload.ID,
		&upload.SourceFilename,
		&upload.FileHash,
		&upload.UploadedAt,
		&kindsJSON,
		&rowsJSON,
	)
	if err != nil {
		return nil, err
	}

	if kindsJSON != "" {
		_ = json.Unmarshal([]byte(kindsJSON), &upload.SheetKinds)
	}
	if rowsJSON != "" {
		_ = json.Unmarshal([]byte(rowsJSON), &upload.RowsInserted)
	}
	return &upload, nil
}
