package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"projdocs/internal/store"
)

// UpsertFileItem returns the list record of a file, creating it on first upload.
// A re-upload keeps the record and its fields and only restamps the editor.
func (r *Records) UpsertFileItem(ctx context.Context, fileRef string) (store.Record, error) {
	fileRef = store.Clean(fileRef)
	_, name := store.Split(fileRef)
	raw, err := json.Marshal(store.Fields{"FileLeafRef": name})
	if err != nil {
		return store.Record{}, fmt.Errorf("encode fields: %w", err)
	}
	const q = `
		INSERT INTO list_items (library, fields, file_ref, editor, modified_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (file_ref) DO UPDATE
		SET editor = EXCLUDED.editor, modified_at = EXCLUDED.modified_at
		RETURNING ` + recordColumns
	rec, editor, err := scanRecord(r.db.QueryRowContext(ctx, q,
		store.Library(fileRef), raw, fileRef, store.Actor(ctx), r.now()))
	if err != nil {
		return store.Record{}, err
	}
	return withEditor(rec, editor, expandEditor), nil
}

// ItemForFile fetches the list record that owns a file.
func (r *Records) ItemForFile(ctx context.Context, fileRef string) (store.Record, error) {
	fileRef = store.Clean(fileRef)
	const q = `SELECT ` + recordColumns + ` FROM list_items WHERE file_ref = $1`
	rec, editor, err := scanRecord(r.db.QueryRowContext(ctx, q, fileRef))
	if err != nil {
		return store.Record{}, notFound(err, "item for %s", fileRef)
	}
	return withEditor(rec, editor, expandEditor), nil
}

// CopyFields copies every field except the file name from one file's record to another's.
func (r *Records) CopyFields(ctx context.Context, sourceRef, destRef string) error {
	const q = `
		UPDATE list_items AS d
		SET fields = d.fields || (s.fields - 'FileLeafRef')
		FROM list_items AS s
		WHERE s.file_ref = $1 AND d.file_ref = $2
	`
	_, err := r.db.ExecContext(ctx, q, store.Clean(sourceRef), store.Clean(destRef))
	return err
}

// IsCheckedOut reports whether a file is currently checked out.
func (r *Records) IsCheckedOut(ctx context.Context, fileRef string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM file_checkouts WHERE file_ref = $1)`
	var out bool
	if err := r.db.QueryRowContext(ctx, q, store.Clean(fileRef)).Scan(&out); err != nil {
		return false, err
	}
	return out, nil
}

// Checkout takes the single edit lock of a file.
func (r *Records) Checkout(ctx context.Context, fileRef string) error {
	fileRef = store.Clean(fileRef)
	const q = `
		INSERT INTO file_checkouts (file_ref, checked_out_by, checked_out_at)
		SELECT $1, $2, $3
		WHERE EXISTS (SELECT 1 FROM list_items WHERE file_ref = $1)
		ON CONFLICT (file_ref) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, q, fileRef, store.Actor(ctx), r.now())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.ItemForFile(ctx, fileRef); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", store.ErrCheckedOut, fileRef)
	}
	return nil
}

// Checkin releases the lock and records a new version of size bytes.
func (r *Records) Checkin(ctx context.Context, fileRef, comment string, size int64) (err error) {
	fileRef = store.Clean(fileRef)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM file_checkouts WHERE file_ref = $1`, fileRef)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotCheckedOut, fileRef)
	}
	if err = addVersion(ctx, tx, fileRef, size, r.now(), store.Actor(ctx), comment); err != nil {
		return err
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func addVersion(ctx context.Context, ex execer, fileRef string, size int64, at time.Time, actor, comment string) error {
	const q = `
		INSERT INTO file_versions (file_ref, label, size, created_at, created_by, comment)
		SELECT $1, (COUNT(*) + 1)::text || '.0', $2, $3, $4, $5
		FROM file_versions WHERE file_ref = $1
	`
	_, err := ex.ExecContext(ctx, q, fileRef, size, at, actor, comment)
	return err
}

// AddVersion appends a version entry for a file write.
func (r *Records) AddVersion(ctx context.Context, fileRef string, size int64) error {
	return addVersion(ctx, r.db, store.Clean(fileRef), size, r.now(), store.Actor(ctx), "")
}

// ListVersions returns a file's history, oldest first. The last entry is current.
func (r *Records) ListVersions(ctx context.Context, fileRef string) ([]store.FileVersion, error) {
	fileRef = store.Clean(fileRef)
	const q = `
		SELECT label, size, created_at, created_by, comment
		FROM file_versions
		WHERE file_ref = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, q, fileRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := make([]store.FileVersion, 0)
	for rows.Next() {
		var v store.FileVersion
		if err := rows.Scan(&v.Label, &v.Size, &v.Created, &v.CreatedBy, &v.Comment); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		if _, err := r.ItemForFile(ctx, fileRef); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: file %s", store.ErrNotFound, fileRef)
			}
			return nil, err
		}
		return versions, nil
	}
	versions[len(versions)-1].Current = true
	return versions, nil
}
