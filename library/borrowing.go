package library

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// BorrowingService orchestrates the borrowing lifecycle across the
// catalog, the directory, and the record store. Its operations mutate
// entities in place and then persist every collection they touched;
// a failed save is surfaced but not rolled back.
type BorrowingService struct {
	books   *Catalog
	users   *Directory
	records *RecordStore
	log     *slog.Logger

	// now supplies "today" for status and fine derivation.
	now func() Date
}

// NewBorrowingService wires the engine over the three repositories.
func NewBorrowingService(books *Catalog, users *Directory, records *RecordStore, log *slog.Logger) *BorrowingService {
	return &BorrowingService{
		books:   books,
		users:   users,
		records: records,
		log:     log.With("component", "borrowing"),
		now:     Today,
	}
}

// newRecordID generates an opaque unique record ID, retrying on the
// unlikely collision against the existing ID space.
func (s *BorrowingService) newRecordID() string {
	for {
		id := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString())
		if _, ok := s.records.col.Get(id); !ok {
			return id
		}
	}
}

// Borrow lends one copy of the book to the borrower: it creates an
// ACTIVE record due after the borrower's fixed duration and decrements
// the book quantity. Rejected while the borrower has a pending fine or
// the book has no copies on the shelf.
func (s *BorrowingService) Borrow(borrower Borrower, book *Book) (*BorrowingRecord, error) {
	if !borrower.CanBorrow() {
		return nil, fmt.Errorf("%w: borrower %s has a pending fine of %d", ErrIllegalState, borrower.Email(), borrower.PendingFine())
	}
	if !book.AvailableForBorrow() {
		return nil, fmt.Errorf("%w: book %s is not available for borrowing", ErrIllegalState, book.ISBN())
	}

	today := s.now()
	record, err := newBorrowingRecord(s.newRecordID(), book, borrower, today, today.AddDays(borrower.BorrowDurationDays()), today)
	if err != nil {
		return nil, err
	}
	if err := s.records.Add(record); err != nil {
		return nil, err
	}
	if err := book.DecreaseQuantity(1); err != nil {
		return nil, err
	}
	if err := s.books.Save(); err != nil {
		return record, err
	}
	s.log.Info("book borrowed",
		"record", record.ID(), "isbn", book.ISBN(), "borrower", borrower.Email(), "due", record.DueDate().String())
	return record, nil
}

// Return closes the borrower's active loan of the book: it sets the
// return date to today (recomputing status and fine, which may move
// the borrower's pending fine), increments the book quantity, and
// persists records, books, and users.
func (s *BorrowingService) Return(borrower Borrower, book *Book) (*BorrowingRecord, error) {
	today := s.now()
	record, err := s.outstandingRecord(borrower, book)
	if err != nil {
		return nil, err
	}
	if err := record.setReturnDate(today, today); err != nil {
		return nil, err
	}
	if err := book.IncreaseQuantity(1); err != nil {
		return nil, err
	}
	if err := s.persistAll(); err != nil {
		return record, err
	}
	s.log.Info("book returned",
		"record", record.ID(), "isbn", book.ISBN(), "borrower", borrower.Email(),
		"status", record.Status(), "fine", record.Fine())
	return record, nil
}

// outstandingRecord locates the borrower's open loan of the book: the
// record whose return date is still unset. An overdue loan is open too,
// so a late book can always come back. The lookup takes the first
// match.
func (s *BorrowingService) outstandingRecord(borrower Borrower, book *Book) (*BorrowingRecord, error) {
	for _, r := range s.records.All() {
		if r.Borrower().Key() != borrower.Key() || r.Book().Key() != book.Key() {
			continue
		}
		if _, returned := r.ReturnDate(); !returned {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no open borrowing record for %q", ErrIllegalState, borrower.Email(), book.Title())
}

// PayFine reduces the borrower's pending fine by amount, clamping at
// zero. The returned excess is the overpaid remainder owed back to the
// payer; it is reported, never credited anywhere.
func (s *BorrowingService) PayFine(borrower Borrower, amount int) (excess int, err error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: payment amount must be greater than 0", ErrInvalidArgument)
	}
	if borrower.PendingFine() == 0 {
		return 0, fmt.Errorf("%w: borrower %s has no pending fine", ErrIllegalState, borrower.Email())
	}
	excess, err = borrower.reducePendingFine(amount)
	if err != nil {
		return 0, err
	}
	if err := s.users.Save(); err != nil {
		return excess, err
	}
	if err := s.records.Save(); err != nil {
		return excess, err
	}
	s.log.Info("fine paid", "borrower", borrower.Email(), "amount", amount, "excess", excess)
	return excess, nil
}

// ByStatus returns the records whose derived status matches as of
// today.
func (s *BorrowingService) ByStatus(status RecordStatus) []*BorrowingRecord {
	today := s.now()
	var results []*BorrowingRecord
	for _, r := range s.records.All() {
		if r.StatusAt(today) == status {
			results = append(results, r)
		}
	}
	return results
}

// Active returns the outstanding loans that are not yet due.
func (s *BorrowingService) Active() []*BorrowingRecord { return s.ByStatus(StatusActive) }

// Returned returns the loans closed on or before their due date.
func (s *BorrowingService) Returned() []*BorrowingRecord { return s.ByStatus(StatusReturned) }

// Overdue returns the outstanding loans past their due date. This is
// not ByStatus(StatusOverdue): a record returned late keeps the
// OVERDUE status but is excluded here because its return date is set.
func (s *BorrowingService) Overdue() []*BorrowingRecord {
	today := s.now()
	var results []*BorrowingRecord
	for _, r := range s.records.All() {
		if r.outstandingOverdueAt(today) {
			results = append(results, r)
		}
	}
	return results
}

// ByBorrower returns the borrower's full borrowing history.
func (s *BorrowingService) ByBorrower(borrower Borrower) []*BorrowingRecord {
	var results []*BorrowingRecord
	for _, r := range s.records.All() {
		if r.Borrower().Key() == borrower.Key() {
			results = append(results, r)
		}
	}
	return results
}

// ByBook returns the book's full borrowing history.
func (s *BorrowingService) ByBook(book *Book) []*BorrowingRecord {
	var results []*BorrowingRecord
	for _, r := range s.records.All() {
		if r.Book().Key() == book.Key() {
			results = append(results, r)
		}
	}
	return results
}

// HasActiveBorrowings reports whether any copy of the book is still
// out, overdue loans included. Used as the precondition for removing
// the book.
func (s *BorrowingService) HasActiveBorrowings(book *Book) (bool, error) {
	if book == nil {
		return false, fmt.Errorf("%w: book must not be nil", ErrInvalidArgument)
	}
	for _, r := range s.records.All() {
		if r.Book().Key() != book.Key() {
			continue
		}
		if _, returned := r.ReturnDate(); !returned {
			return true, nil
		}
	}
	return false, nil
}

// Record returns the record with the given ID.
func (s *BorrowingService) Record(recordID string) (*BorrowingRecord, error) {
	return s.records.Get(recordID)
}

// All returns a snapshot of every borrowing record.
func (s *BorrowingService) All() []*BorrowingRecord { return s.records.All() }

// persistAll saves the three collections in the order the original
// flows do: records, books, users.
func (s *BorrowingService) persistAll() error {
	return errors.Join(s.records.Save(), s.books.Save(), s.users.Save())
}
