package postgres

import (
	"context"
	"fmt"

	"projdocs/internal/store"
)

// builtinFields are present on every library.
var builtinFields = []store.Field{
	{Name: "Title", Type: "Text"},
	{Name: "FileLeafRef", Type: "File", Required: true},
}

func (r *Records) LibraryExists(ctx context.Context, name string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM libraries WHERE name = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateLibrary registers a library and its built-in fields in one transaction.
func (r *Records) CreateLibrary(ctx context.Context, name string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO libraries (name, created_at) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		name, r.now())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: library %s", store.ErrAlreadyExists, name)
	}
	for _, f := range builtinFields {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO library_fields (library, name, type, required) VALUES ($1, $2, $3, $4)`,
			name, f.Name, f.Type, f.Required); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Records) ListFields(ctx context.Context, library string) ([]store.Field, error) {
	exists, err := r.LibraryExists(ctx, library)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", store.ErrLibraryNotFound, library)
	}
	const q = `SELECT name, type, required FROM library_fields WHERE library = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, library)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make([]store.Field, 0)
	for rows.Next() {
		var f store.Field
		if err := rows.Scan(&f.Name, &f.Type, &f.Required); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

// AddTextField adds a text column. Names are unique per library regardless of case.
func (r *Records) AddTextField(ctx context.Context, library, name string, required bool) error {
	const q = `
		INSERT INTO library_fields (library, name, type, required)
		SELECT $1, $2, 'Text', $3
		WHERE EXISTS (SELECT 1 FROM libraries WHERE name = $1)
		ON CONFLICT DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, q, library, name, required)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		exists, err := r.LibraryExists(ctx, library)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", store.ErrLibraryNotFound, library)
		}
		return fmt.Errorf("%w: %s.%s", store.ErrFieldExists, library, name)
	}
	return nil
}
