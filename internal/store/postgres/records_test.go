package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projdocs/internal/store"
)

var recordCols = []string{"id", "fields", "file_ref", "editor", "modified_at"}

func newTestRecords(t *testing.T) (*Records, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })

	r := NewRecords(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, mock
}

func TestRecords_Add(t *testing.T) {
	ctx := store.WithActor(context.Background(), "Dana")

	t.Run("success", func(t *testing.T) {
		r, mock := newTestRecords(t)
		now := r.now()

		mock.ExpectQuery("INSERT INTO list_items").
			WithArgs("Docs", sqlmock.AnyArg(), "Dana", now).
			WillReturnRows(sqlmock.NewRows(recordCols).AddRow(7, []byte(`{"Title":"a"}`), nil, "Dana", now))

		rec, err := r.Add(ctx, "Docs", store.Fields{"Title": "a"})

		require.NoError(t, err)
		assert.Equal(t, 7, rec.ID)
		assert.Equal(t, "a", rec.Fields.String("Title"))
		assert.Empty(t, rec.FileRef)
		require.NotNil(t, rec.Editor)
		assert.Equal(t, "Dana", rec.Editor.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown library", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectQuery("INSERT INTO list_items").WillReturnError(sql.ErrNoRows)

		_, err := r.Add(ctx, "Nope", store.Fields{})
		assert.ErrorIs(t, err, store.ErrLibraryNotFound)
	})
}

func TestRecords_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("merges fields", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectExec("UPDATE list_items SET fields = fields \\|\\| \\$3::jsonb").
			WithArgs("Docs", 3, []byte(`{"Status":"New"}`), "system", r.now()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, r.Update(ctx, "Docs", 3, store.Fields{"Status": "New"}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing item", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectExec("UPDATE list_items").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, r.Update(ctx, "Docs", 3, store.Fields{"Status": "New"}), store.ErrNotFound)
	})
}

func TestRecords_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	r, mock := newTestRecords(t)

	mock.ExpectQuery("SELECT (.+) FROM list_items WHERE library = \\$1 AND id = \\$2").
		WithArgs("Docs", 9).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("DELETE FROM list_items WHERE library = \\$1 AND id = \\$2").
		WithArgs("Docs", 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM list_items").
		WithArgs("Docs", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := r.Get(ctx, "Docs", 9)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, r.Delete(ctx, "Docs", 4))
	assert.ErrorIs(t, r.Delete(ctx, "Docs", 5), store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

const filteredQuery = "SELECT (.+) FROM list_items WHERE library = \\$1 AND COALESCE\\(fields->>\\$2, ''\\) = \\$3 ORDER BY id"

func TestRecords_Query(t *testing.T) {
	ctx := context.Background()
	r, mock := newTestRecords(t)
	now := r.now()

	rows := sqlmock.NewRows(recordCols).
		AddRow(1, []byte(`{"ProjectId":"P-1","Status":"New","Secret":"x"}`), "/Docs/P-1/a.pdf", "Dana", now).
		AddRow(2, []byte(`{"ProjectId":"P-1"}`), "/Docs/P-1/b.pdf", nil, now)
	mock.ExpectQuery(filteredQuery).
		WithArgs("Docs", "ProjectId", "P-1").
		WillReturnRows(rows)

	out, err := r.Query(ctx, "Docs", store.Query{
		Filter: store.Eq("ProjectId", "P-1"),
		Select: []string{"ProjectId", "Status"},
		Expand: []string{"Editor"},
	})

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "/Docs/P-1/a.pdf", out[0].FileRef)
	assert.Equal(t, "New", out[0].Fields.String("Status"))
	assert.NotContains(t, out[0].Fields, "Secret")
	assert.Equal(t, "Dana", out[0].Editor.Title)
	assert.Equal(t, "", out[1].Editor.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecords_QueryEmptyValueMatchesAbsentField(t *testing.T) {
	ctx := context.Background()
	r, mock := newTestRecords(t)

	rows := sqlmock.NewRows(recordCols).
		AddRow(3, []byte(`{"Title":"loose"}`), "", nil, r.now())
	mock.ExpectQuery(filteredQuery).
		WithArgs("Docs", "ProjectId", "").
		WillReturnRows(rows)

	out, err := r.Query(ctx, "Docs", store.Query{Filter: store.Eq("ProjectId", "")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, store.Eq("ProjectId", "").Matches(out[0]), "memory and postgres filters agree on absent fields")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecords_CreateLibrary(t *testing.T) {
	ctx := context.Background()

	t.Run("registers built-in fields", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO libraries").WithArgs("Docs", r.now()).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO library_fields").WithArgs("Docs", "Title", "Text", false).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO library_fields").WithArgs("Docs", "FileLeafRef", "File", true).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, r.CreateLibrary(ctx, "Docs"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already exists", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO libraries").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, r.CreateLibrary(ctx, "Docs"), store.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecords_Fields(t *testing.T) {
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectQuery("SELECT EXISTS").WithArgs("Docs").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT name, type, required FROM library_fields").
			WithArgs("Docs").
			WillReturnRows(sqlmock.NewRows([]string{"name", "type", "required"}).
				AddRow("FileLeafRef", "File", true).
				AddRow("Status", "Text", false))

		fields, err := r.ListFields(ctx, "Docs")
		require.NoError(t, err)
		assert.Equal(t, []store.Field{
			{Name: "FileLeafRef", Type: "File", Required: true},
			{Name: "Status", Type: "Text"},
		}, fields)
	})

	t.Run("list on unknown library", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectQuery("SELECT EXISTS").WithArgs("Nope").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := r.ListFields(ctx, "Nope")
		assert.ErrorIs(t, err, store.ErrLibraryNotFound)
	})

	t.Run("add duplicate", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectExec("INSERT INTO library_fields").
			WithArgs("Docs", "status", false).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").WithArgs("Docs").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		assert.ErrorIs(t, r.AddTextField(ctx, "Docs", "status", false), store.ErrFieldExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("add", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectExec("INSERT INTO library_fields").
			WithArgs("Docs", "Status", true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, r.AddTextField(ctx, "Docs", "Status", true))
	})
}

func TestRecords_FileItems(t *testing.T) {
	ctx := store.WithActor(context.Background(), "Sam")

	t.Run("upsert stamps the file name", func(t *testing.T) {
		r, mock := newTestRecords(t)
		now := r.now()

		mock.ExpectQuery("INSERT INTO list_items (.+) ON CONFLICT \\(file_ref\\) DO UPDATE").
			WithArgs("Docs", []byte(`{"FileLeafRef":"a.pdf"}`), "/Docs/P-1/a.pdf", "Sam", now).
			WillReturnRows(sqlmock.NewRows(recordCols).AddRow(3, []byte(`{"FileLeafRef":"a.pdf"}`), "/Docs/P-1/a.pdf", "Sam", now))

		rec, err := r.UpsertFileItem(ctx, "Docs/P-1/a.pdf")
		require.NoError(t, err)
		assert.Equal(t, 3, rec.ID)
		assert.Equal(t, "/Docs/P-1/a.pdf", rec.FileRef)
	})

	t.Run("item for missing file", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectQuery("SELECT (.+) FROM list_items WHERE file_ref = \\$1").
			WithArgs("/Docs/x.pdf").
			WillReturnError(sql.ErrNoRows)

		_, err := r.ItemForFile(ctx, "/Docs/x.pdf")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("copy fields", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectExec("UPDATE list_items AS d").
			WithArgs("/Std/a.pdf", "/Docs/P-1/a.pdf").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, r.CopyFields(ctx, "/Std/a.pdf", "/Docs/P-1/a.pdf"))
	})
}

func TestRecords_CheckoutCheckin(t *testing.T) {
	ctx := store.WithActor(context.Background(), "Sam")
	ref := "/Docs/P-1/a.pdf"

	t.Run("checkout twice", func(t *testing.T) {
		r, mock := newTestRecords(t)
		now := r.now()

		mock.ExpectExec("INSERT INTO file_checkouts").WithArgs(ref, "Sam", now).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO file_checkouts").WithArgs(ref, "Sam", now).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM list_items WHERE file_ref").
			WithArgs(ref).
			WillReturnRows(sqlmock.NewRows(recordCols).AddRow(3, []byte(`{}`), ref, "Sam", now))

		require.NoError(t, r.Checkout(ctx, ref))
		assert.ErrorIs(t, r.Checkout(ctx, ref), store.ErrCheckedOut)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("checkin records a version", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM file_checkouts").WithArgs(ref).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO file_versions").
			WithArgs(ref, int64(42), r.now(), "Sam", "reviewed").
			WillReturnResult(sqlmock.NewResult(5, 1))
		mock.ExpectCommit()

		require.NoError(t, r.Checkin(ctx, ref, "reviewed", 42))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("checkin without checkout", func(t *testing.T) {
		r, mock := newTestRecords(t)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM file_checkouts").WithArgs(ref).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, r.Checkin(ctx, ref, "", 1), store.ErrNotCheckedOut)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecords_ListVersions(t *testing.T) {
	ctx := context.Background()
	r, mock := newTestRecords(t)
	now := r.now()
	ref := "/Docs/P-1/a.pdf"

	mock.ExpectQuery("SELECT label, size, created_at, created_by, comment FROM file_versions").
		WithArgs(ref).
		WillReturnRows(sqlmock.NewRows([]string{"label", "size", "created_at", "created_by", "comment"}).
			AddRow("1.0", 10, now, "Sam", "").
			AddRow("2.0", 12, now, "Dana", "fixed title"))

	versions, err := r.ListVersions(ctx, ref)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.False(t, versions[0].Current)
	assert.True(t, versions[1].Current)
	assert.Equal(t, "fixed title", versions[1].Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}
