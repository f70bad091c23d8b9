package library

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return NewLogger("error", "text", io.Discard)
}

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	dir := t.TempDir()
	lib, err := Open(Options{
		BooksPath:          filepath.Join(dir, "books.json"),
		UsersPath:          filepath.Join(dir, "users.json"),
		RecordsPath:        filepath.Join(dir, "borrowing_records.json"),
		Logger:             testLogger(),
		SkipAdminBootstrap: true,
	})
	require.NoError(t, err)
	return lib
}

// setToday pins the engine's clock so status and fine derivation are
// deterministic.
func setToday(lib *Library, d Date) {
	lib.service.now = func() Date { return d }
}

func addTestBook(t *testing.T, lib *Library, isbn string, quantity int) *Book {
	t.Helper()
	book, err := lib.Books().Add(isbn, "The Go Programming Language", "Alan Donovan", "Programming",
		NewDate(2015, 10, 26), quantity)
	require.NoError(t, err)
	return book
}

func addTestStudent(t *testing.T, lib *Library, email string) *Student {
	t.Helper()
	student, err := lib.Users().AddStudent("Ada Lovelace", email, "correct-horse15", "12 Analytical Way")
	require.NoError(t, err)
	return student
}
