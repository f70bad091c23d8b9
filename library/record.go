package library

import "fmt"

// RecordStatus is the derived lifecycle state of a borrowing record.
type RecordStatus string

const (
	StatusActive   RecordStatus = "ACTIVE"
	StatusReturned RecordStatus = "RETURNED"
	StatusOverdue  RecordStatus = "OVERDUE"
)

// finePerDay is the penalty per calendar day overdue.
const finePerDay = 50

// BorrowingRecord tracks one loan of one book copy by one borrower.
// While in memory it holds live references to its book and borrower;
// on disk it is flattened to their keys. Status and fine are derived
// from the dates, never set by callers: the fine moves only as a side
// effect of recomputation, and every fine change is mirrored into the
// borrower's pending-fine ledger as a delta, so the ledger stays equal
// to the sum of the records' contributions.
type BorrowingRecord struct {
	id         string
	book       *Book
	borrower   Borrower
	borrowDate Date
	dueDate    Date
	returnDate Date // zero while the loan is outstanding
	status     RecordStatus
	fine       int
}

// newBorrowingRecord creates a fresh record and derives its initial
// status and fine as of asOf.
func newBorrowingRecord(id string, book *Book, borrower Borrower, borrowDate, dueDate, asOf Date) (*BorrowingRecord, error) {
	r := &BorrowingRecord{
		id:         id,
		book:       book,
		borrower:   borrower,
		borrowDate: borrowDate,
		dueDate:    dueDate,
	}
	if err := r.refresh(asOf); err != nil {
		return nil, err
	}
	return r, nil
}

// restoreBorrowingRecord rebuilds a record from its durable form. The
// persisted fine is installed before the recomputation so that any
// accrual since the last save reaches the borrower's ledger as the
// correct delta, not as a double charge.
func restoreBorrowingRecord(id string, book *Book, borrower Borrower, borrowDate, dueDate, returnDate Date, fine int, asOf Date) (*BorrowingRecord, error) {
	r := &BorrowingRecord{
		id:         id,
		book:       book,
		borrower:   borrower,
		borrowDate: borrowDate,
		dueDate:    dueDate,
		returnDate: returnDate,
		fine:       fine,
	}
	if err := r.refresh(asOf); err != nil {
		return nil, err
	}
	return r, nil
}

// Key returns the record ID for collection membership.
func (r *BorrowingRecord) Key() string { return r.id }

func (r *BorrowingRecord) ID() string         { return r.id }
func (r *BorrowingRecord) Book() *Book        { return r.book }
func (r *BorrowingRecord) Borrower() Borrower { return r.borrower }
func (r *BorrowingRecord) BorrowDate() Date   { return r.borrowDate }
func (r *BorrowingRecord) DueDate() Date      { return r.dueDate }
func (r *BorrowingRecord) Fine() int          { return r.fine }

// ReturnDate reports the return date and whether one is set.
func (r *BorrowingRecord) ReturnDate() (Date, bool) {
	return r.returnDate, !r.returnDate.IsZero()
}

// Status returns the last derived status. Queries that must not be
// stale derive freshly with StatusAt.
func (r *BorrowingRecord) Status() RecordStatus { return r.status }

// StatusAt derives the status from the dates as of the given day.
// Pure: it touches neither the record nor the borrower.
func (r *BorrowingRecord) StatusAt(asOf Date) RecordStatus {
	if !r.returnDate.IsZero() {
		if r.returnDate.After(r.dueDate) {
			return StatusOverdue
		}
		return StatusReturned
	}
	if asOf.After(r.dueDate) {
		return StatusOverdue
	}
	return StatusActive
}

// outstandingOverdueAt reports "no return date and past due". This is
// deliberately not the same predicate as StatusAt == OVERDUE: a record
// returned late stays OVERDUE but is no longer outstanding.
func (r *BorrowingRecord) outstandingOverdueAt(asOf Date) bool {
	return r.returnDate.IsZero() && asOf.After(r.dueDate)
}

// fineAt computes the fine the record carries as of the given day:
// 50 per calendar day between the due date and the return date (or
// asOf while the loan is out), zero unless overdue.
func (r *BorrowingRecord) fineAt(asOf Date) int {
	if r.StatusAt(asOf) != StatusOverdue {
		return 0
	}
	end := asOf
	if !r.returnDate.IsZero() {
		end = r.returnDate
	}
	days := r.dueDate.DaysUntil(end)
	if days < 0 {
		days = 0
	}
	return finePerDay * days
}

// refresh re-derives status and fine as of asOf and pushes the fine
// delta into the borrower's ledger.
func (r *BorrowingRecord) refresh(asOf Date) error {
	r.status = r.StatusAt(asOf)
	return r.applyFine(r.fineAt(asOf))
}

func (r *BorrowingRecord) applyFine(fine int) error {
	if fine < 0 {
		return fmt.Errorf("%w: fine must not be negative", ErrInvalidArgument)
	}
	delta := fine - r.fine
	if delta >= 0 {
		if err := r.borrower.addPendingFine(delta); err != nil {
			return err
		}
	} else {
		if _, err := r.borrower.reducePendingFine(-delta); err != nil {
			return err
		}
	}
	r.fine = fine
	return nil
}

// setReturnDate closes the loan and recomputes status and fine. The
// return date must not precede the borrow date.
func (r *BorrowingRecord) setReturnDate(returnDate, asOf Date) error {
	if returnDate.IsZero() || returnDate.Before(r.borrowDate) {
		return fmt.Errorf("%w: return date must not precede the borrow date", ErrInvalidArgument)
	}
	r.returnDate = returnDate
	return r.refresh(asOf)
}
