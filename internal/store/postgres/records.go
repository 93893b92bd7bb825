// Package postgres keeps list records, library schemas, checkouts and version
// history in PostgreSQL. File content lives elsewhere; records reference it by path.
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

// Records is a PostgreSQL implementation of store.RecordStore and store.SchemaStore.
// It uses database/sql with parameterized queries and contains no business logic.
type Records struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ store.RecordStore = (*Records)(nil)
	_ store.SchemaStore = (*Records)(nil)
)

// NewRecords creates a new Records store.
func NewRecords(db *sql.DB) *Records {
	return &Records{db: db, now: time.Now}
}

const recordColumns = `id, fields, file_ref, editor, modified_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (store.Record, string, error) {
	var (
		r       store.Record
		raw     []byte
		fileRef sql.NullString
		editor  sql.NullString
	)
	if err := row.Scan(&r.ID, &raw, &fileRef, &editor, &r.Modified); err != nil {
		return store.Record{}, "", err
	}
	r.Fields = store.Fields{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &r.Fields); err != nil {
			return store.Record{}, "", fmt.Errorf("decode fields of item %d: %w", r.ID, err)
		}
	}
	r.FileRef = fileRef.String
	return r, editor.String, nil
}

func withEditor(r store.Record, editor string, q store.Query) store.Record {
	r.Fields = q.Project(r.Fields)
	if q.Expands("Editor") {
		r.Editor = &store.UserRef{Title: editor}
	}
	return r
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", store.ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

var expandEditor = store.Query{Expand: []string{"Editor"}}

// Add inserts a record without a file.
func (r *Records) Add(ctx context.Context, library string, fields store.Fields) (store.Record, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return store.Record{}, fmt.Errorf("encode fields: %w", err)
	}
	const q = `
		INSERT INTO list_items (library, fields, editor, modified_at)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM libraries WHERE name = $1)
		RETURNING ` + recordColumns
	rec, editor, err := scanRecord(r.db.QueryRowContext(ctx, q, library, raw, store.Actor(ctx), r.now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Record{}, fmt.Errorf("%w: %s", store.ErrLibraryNotFound, library)
		}
		return store.Record{}, err
	}
	return withEditor(rec, editor, expandEditor), nil
}

// Update merges fields into the record's existing fields.
func (r *Records) Update(ctx context.Context, library string, id int, fields store.Fields) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	const q = `
		UPDATE list_items
		SET fields = fields || $3::jsonb, editor = $4, modified_at = $5
		WHERE library = $1 AND id = $2
	`
	res, err := r.db.ExecContext(ctx, q, library, id, raw, store.Actor(ctx), r.now())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s item %d", store.ErrNotFound, library, id)
	}
	return nil
}

// Delete removes a record. Its checkout and version rows cascade.
func (r *Records) Delete(ctx context.Context, library string, id int) error {
	const q = `DELETE FROM list_items WHERE library = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, library, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s item %d", store.ErrNotFound, library, id)
	}
	return nil
}

// Get fetches a single record by id.
func (r *Records) Get(ctx context.Context, library string, id int) (store.Record, error) {
	const q = `SELECT ` + recordColumns + ` FROM list_items WHERE library = $1 AND id = $2`
	rec, editor, err := scanRecord(r.db.QueryRowContext(ctx, q, library, id))
	if err != nil {
		return store.Record{}, notFound(err, "%s item %d", library, id)
	}
	return withEditor(rec, editor, expandEditor), nil
}

// Query returns the records of a library ordered by id. An equality filter is
// evaluated by the database against the jsonb fields.
func (r *Records) Query(ctx context.Context, library string, query store.Query) ([]store.Record, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if query.Filter.IsZero() {
		const q = `SELECT ` + recordColumns + ` FROM list_items WHERE library = $1 ORDER BY id`
		rows, err = r.db.QueryContext(ctx, q, library)
	} else {
		const q = `SELECT ` + recordColumns + ` FROM list_items WHERE library = $1 AND COALESCE(fields->>$2, '') = $3 ORDER BY id`
		rows, err = r.db.QueryContext(ctx, q, library, query.Filter.Field, query.Filter.Value)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]store.Record, 0)
	for rows.Next() {
		rec, editor, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, withEditor(rec, editor, query))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
