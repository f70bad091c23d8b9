package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestBorrowingInvariants drives the engine through random sequences of
// borrow, return, pay and clock advances, checking after every step
// that the shelf quantities and the fine ledgers stay consistent.
func TestBorrowingInvariants(t *testing.T) {
	isbns := []string{"9780134190440", "9780262033848", "9780132350884"}
	emails := []string{"ada@example.com", "bob@example.com"}
	const initialQuantity = 2

	rapid.Check(t, func(rt *rapid.T) {
		dir := t.TempDir()
		books, err := NewCatalog(filepath.Join(dir, "books.json"), testLogger())
		require.NoError(rt, err)
		users, err := NewDirectory(filepath.Join(dir, "users.json"), testLogger())
		require.NoError(rt, err)
		records, err := NewRecordStore(filepath.Join(dir, "records.json"), books, users, testLogger(), Today())
		require.NoError(rt, err)
		svc := NewBorrowingService(books, users, records, testLogger())

		day := NewDate(2024, 3, 1)
		svc.now = func() Date { return day }

		for _, isbn := range isbns {
			_, err := books.Add(isbn, "Title "+isbn, "Author", "Genre", NewDate(2020, 1, 1), initialQuantity)
			require.NoError(rt, err)
		}
		// Students are inserted directly to keep the password hashing
		// out of the hot loop.
		for _, email := range emails {
			require.NoError(rt, users.col.Add(newStudent("Student", email, "hash", "addr")))
		}

		// applied tracks the fine reductions each borrower actually
		// received, excess excluded.
		applied := make(map[string]int)

		drawBorrower := func(rt *rapid.T) Borrower {
			email := rapid.SampledFrom(emails).Draw(rt, "email")
			borrower, err := users.Borrower(email)
			require.NoError(rt, err)
			return borrower
		}
		drawBook := func(rt *rapid.T) *Book {
			isbn := rapid.SampledFrom(isbns).Draw(rt, "isbn")
			book, err := books.Get(isbn)
			require.NoError(rt, err)
			return book
		}

		rt.Repeat(map[string]func(*rapid.T){
			"borrow": func(rt *rapid.T) {
				borrower, book := drawBorrower(rt), drawBook(rt)
				canBorrow, available := borrower.CanBorrow(), book.AvailableForBorrow()
				_, err := svc.Borrow(borrower, book)
				if !canBorrow || !available {
					require.ErrorIs(rt, err, ErrIllegalState)
					return
				}
				require.NoError(rt, err)
			},
			"return": func(rt *rapid.T) {
				borrower, book := drawBorrower(rt), drawBook(rt)
				record, err := svc.Return(borrower, book)
				if err != nil {
					require.ErrorIs(rt, err, ErrIllegalState)
					return
				}
				_, set := record.ReturnDate()
				require.True(rt, set)
			},
			"pay": func(rt *rapid.T) {
				borrower := drawBorrower(rt)
				pending := borrower.PendingFine()
				amount := rapid.IntRange(1, 500).Draw(rt, "amount")
				excess, err := svc.PayFine(borrower, amount)
				if pending == 0 {
					require.ErrorIs(rt, err, ErrIllegalState)
					return
				}
				require.NoError(rt, err)
				applied[borrower.Key()] += amount - excess
			},
			"advance": func(rt *rapid.T) {
				day = day.AddDays(rapid.IntRange(1, 4).Draw(rt, "days"))
			},
			"": func(rt *rapid.T) {
				outstanding := make(map[string]int)
				for _, r := range svc.All() {
					require.GreaterOrEqual(rt, r.Fine(), 0)
					if _, set := r.ReturnDate(); !set {
						outstanding[r.Book().Key()]++
					}
				}
				for _, isbn := range isbns {
					book, err := books.Get(isbn)
					require.NoError(rt, err)
					require.GreaterOrEqual(rt, book.Quantity(), 0)
					// Copies never appear or vanish: shelf plus
					// outstanding loans is constant.
					require.Equal(rt, initialQuantity, book.Quantity()+outstanding[isbn])
				}
				for _, email := range emails {
					borrower, err := users.Borrower(email)
					require.NoError(rt, err)
					require.GreaterOrEqual(rt, borrower.PendingFine(), 0)
					// The ledger equals the fines charged to this
					// borrower minus the payments that landed.
					require.Equal(rt, sumFines(svc, borrower)-applied[email], borrower.PendingFine())
				}
			},
		})
	})
}

func sumFines(svc *BorrowingService, borrower Borrower) int {
	total := 0
	for _, r := range svc.ByBorrower(borrower) {
		total += r.Fine()
	}
	return total
}
