package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(dir string) Options {
	return Options{
		BooksPath:          filepath.Join(dir, "books.json"),
		UsersPath:          filepath.Join(dir, "users.json"),
		RecordsPath:        filepath.Join(dir, "borrowing_records.json"),
		Logger:             testLogger(),
		SkipAdminBootstrap: true,
	}
}

func TestOpenBootstrapsDefaultAdmin(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.SkipAdminBootstrap = false

	lib, err := Open(opts)
	require.NoError(t, err)
	require.Equal(t, 1, lib.Users().Len())

	admin, err := lib.Users().Authenticate(DefaultAdminEmail, DefaultAdminPassword)
	require.NoError(t, err)
	assert.Equal(t, RoleLibrarian, admin.Role())

	// A second open finds the directory populated and adds nothing.
	again, err := Open(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Users().Len())
}

func TestOpenStartsEmptyOnMissingFiles(t *testing.T) {
	lib, err := Open(testOptions(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, 0, lib.Books().Len())
	assert.Equal(t, 0, lib.Users().Len())
	assert.Equal(t, 0, lib.Records().Len())
}

func TestOpenFailsOnCorruptFile(t *testing.T) {
	opts := testOptions(t.TempDir())
	require.NoError(t, os.WriteFile(opts.BooksPath, []byte("{broken"), 0o644))

	_, err := Open(opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageRead)
	assert.False(t, IsRecoverable(err))
}

func TestReloadResolvesCrossReferences(t *testing.T) {
	opts := testOptions(t.TempDir())
	lib, err := Open(opts)
	require.NoError(t, err)

	// Borrow with the real clock so the reload sees the loan before its
	// due date and accrues nothing.
	book := addTestBook(t, lib, "9780134190440", 2)
	addTestStudent(t, lib, "ada@example.com")
	record, err := lib.BorrowBook("ada@example.com", "9780134190440")
	require.NoError(t, err)

	reloaded, err := Open(opts)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Records().Len())

	got, err := reloaded.Borrowing().Record(record.ID())
	require.NoError(t, err)

	// The restored record points at the reloaded entities, not copies
	// with drifting state.
	catalogBook, err := reloaded.Books().Get("9780134190440")
	require.NoError(t, err)
	assert.Same(t, catalogBook, got.Book())
	assert.Equal(t, book.ISBN(), got.Book().ISBN())
	assert.Equal(t, 1, got.Book().Quantity())

	directoryUser, err := reloaded.Users().Borrower("ada@example.com")
	require.NoError(t, err)
	assert.Same(t, directoryUser, got.Borrower())

	assert.Equal(t, StatusActive, got.Status())
	assert.True(t, record.BorrowDate().Equal(got.BorrowDate()))
	assert.True(t, record.DueDate().Equal(got.DueDate()))
}

func TestReloadAccruesFineSinceLastSave(t *testing.T) {
	opts := testOptions(t.TempDir())
	lib, err := Open(opts)
	require.NoError(t, err)

	past := Today().AddDays(-10)
	setToday(lib, past)
	addTestBook(t, lib, "9780134190440", 1)
	addTestStudent(t, lib, "ada@example.com")
	record, err := lib.BorrowBook("ada@example.com", "9780134190440")
	require.NoError(t, err)
	require.Equal(t, 0, record.Fine())

	// The loan went stale on disk; opening charges the days that passed.
	reloaded, err := Open(opts)
	require.NoError(t, err)

	wantFine := finePerDay * record.DueDate().DaysUntil(Today())
	got, err := reloaded.Borrowing().Record(record.ID())
	require.NoError(t, err)
	assert.Equal(t, wantFine, got.Fine())

	borrower, err := reloaded.Users().Borrower("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, wantFine, borrower.PendingFine())

	// A third open recomputes the same delta from the same persisted
	// state, so nothing is double-charged.
	again, err := Open(opts)
	require.NoError(t, err)
	borrower, err = again.Users().Borrower("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, wantFine, borrower.PendingFine())
}

func TestOpenFailsOnDanglingRecordReference(t *testing.T) {
	opts := testOptions(t.TempDir())
	require.NoError(t, os.WriteFile(opts.UsersPath, []byte(`[
  {"role":"student","name":"Ada","email":"ada@example.com","password":"x","address":"addr"}
]`), 0o644))
	require.NoError(t, os.WriteFile(opts.RecordsPath, []byte(`[
  {"recordId":"r1","bookIsbn":"9780134190440","borrowerEmail":"ada@example.com",
   "borrowDate":"2024-03-01","dueDate":"2024-03-04","returnDate":null,"fine":0,"status":"ACTIVE"}
]`), 0o644))

	_, err := Open(opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReferentialIntegrity)
}

func TestOpenFailsWhenRecordBorrowerCannotBorrow(t *testing.T) {
	opts := testOptions(t.TempDir())
	require.NoError(t, os.WriteFile(opts.BooksPath, []byte(`[
  {"isbn":"9780134190440","title":"T","authorName":"A","genre":"G",
   "publicationDate":"2020-01-01","quantity":1}
]`), 0o644))
	require.NoError(t, os.WriteFile(opts.UsersPath, []byte(`[
  {"role":"librarian","name":"Grace","email":"grace@example.com","password":"x"}
]`), 0o644))
	require.NoError(t, os.WriteFile(opts.RecordsPath, []byte(`[
  {"recordId":"r1","bookIsbn":"9780134190440","borrowerEmail":"grace@example.com",
   "borrowDate":"2024-03-01","dueDate":"2024-03-04","returnDate":null,"fine":0,"status":"ACTIVE"}
]`), 0o644))

	_, err := Open(opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReferentialIntegrity)
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(ErrInvalidArgument))
	assert.True(t, IsRecoverable(ErrDuplicateKey))
	assert.True(t, IsRecoverable(ErrNotFound))
	assert.True(t, IsRecoverable(ErrIllegalState))
	assert.True(t, IsRecoverable(ErrInvalidCredentials))
	assert.False(t, IsRecoverable(ErrStorageRead))
	assert.False(t, IsRecoverable(ErrStorageWrite))
	assert.False(t, IsRecoverable(ErrReferentialIntegrity))
}
