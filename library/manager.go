package library

import (
	"errors"
	"fmt"
	"log/slog"
)

// DefaultAdminEmail and DefaultAdminPassword identify the librarian
// account created on a first run against an empty user file, so the
// system is administrable before any other account exists.
const (
	DefaultAdminEmail    = "admin@library.local"
	DefaultAdminPassword = "ChangeMe123!"
)

// Options configure a Library.
type Options struct {
	BooksPath   string
	UsersPath   string
	RecordsPath string

	// Logger defaults to a text logger at info level.
	Logger *slog.Logger

	// SkipAdminBootstrap leaves an empty directory empty.
	SkipAdminBootstrap bool
}

// Library is the facade over the whole engine: it owns the three
// repositories and the borrowing service, keeping the CLI code simple.
type Library struct {
	books   *Catalog
	users   *Directory
	records *RecordStore
	service *BorrowingService
	log     *slog.Logger
}

// Open loads all three collections and wires the borrowing engine over
// them. A missing file starts that collection empty; a corrupt file or
// a dangling record reference fails the open.
func Open(opts Options) (*Library, error) {
	log := opts.Logger
	if log == nil {
		log = NewLogger("info", "text", nil)
	}

	books, err := NewCatalog(opts.BooksPath, log)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	users, err := NewDirectory(opts.UsersPath, log)
	if err != nil {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	records, err := NewRecordStore(opts.RecordsPath, books, users, log, Today())
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}

	lib := &Library{
		books:   books,
		users:   users,
		records: records,
		service: NewBorrowingService(books, users, records, log),
		log:     log,
	}

	if users.Len() == 0 && !opts.SkipAdminBootstrap {
		if _, err := users.AddLibrarian("Administrator", DefaultAdminEmail, DefaultAdminPassword); err != nil {
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		log.Warn("created default administrator, change its password",
			"email", DefaultAdminEmail)
	}
	return lib, nil
}

// Books returns the book catalog.
func (l *Library) Books() *Catalog { return l.books }

// Users returns the user directory.
func (l *Library) Users() *Directory { return l.users }

// Records returns the borrowing-record store.
func (l *Library) Records() *RecordStore { return l.records }

// Borrowing returns the lifecycle engine.
func (l *Library) Borrowing() *BorrowingService { return l.service }

// RemoveBook deletes a book from the catalog after checking that no
// active borrowing references it.
func (l *Library) RemoveBook(isbn string) error {
	book, err := l.books.Get(isbn)
	if err != nil {
		return err
	}
	active, err := l.service.HasActiveBorrowings(book)
	if err != nil {
		return err
	}
	if active {
		return fmt.Errorf("%w: book %s has active borrowings", ErrIllegalState, book.ISBN())
	}
	_, err = l.books.Remove(isbn)
	return err
}

// BorrowBook is the key-level convenience over the engine: it resolves
// the borrower and book and lends the copy.
func (l *Library) BorrowBook(email, isbn string) (*BorrowingRecord, error) {
	borrower, book, err := l.resolve(email, isbn)
	if err != nil {
		return nil, err
	}
	return l.service.Borrow(borrower, book)
}

// ReturnBook resolves the borrower and book and closes the loan.
func (l *Library) ReturnBook(email, isbn string) (*BorrowingRecord, error) {
	borrower, book, err := l.resolve(email, isbn)
	if err != nil {
		return nil, err
	}
	return l.service.Return(borrower, book)
}

// PayFine resolves the borrower and applies the payment, returning any
// overpaid excess.
func (l *Library) PayFine(email string, amount int) (int, error) {
	borrower, err := l.users.Borrower(email)
	if err != nil {
		return 0, err
	}
	return l.service.PayFine(borrower, amount)
}

func (l *Library) resolve(email, isbn string) (Borrower, *Book, error) {
	borrower, err := l.users.Borrower(email)
	if err != nil {
		return nil, nil, err
	}
	book, err := l.books.Get(isbn)
	if err != nil {
		return nil, nil, err
	}
	return borrower, book, nil
}

// IsRecoverable reports whether the error is a caller mistake or a
// violated precondition, as opposed to a storage or integrity failure.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrIllegalState) ||
		errors.Is(err, ErrInvalidCredentials)
}
