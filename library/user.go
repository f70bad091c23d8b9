package library

import "fmt"

// Role discriminates the user variants, both in memory and in the
// persisted form.
type Role string

const (
	RoleLibrarian Role = "librarian"
	RoleStudent   Role = "student"
)

// studentBorrowDays is the fixed borrow duration for students.
const studentBorrowDays = 3

// User is the closed set of directory entries: a *Librarian or a
// *Student, keyed by lower-cased e-mail. The unexported methods keep
// the set closed and route every mutation through the directory.
type User interface {
	// Key returns the normalized e-mail used as the natural key.
	Key() string
	Email() string
	Name() string
	Role() Role

	rename(name string)
	passwordHash() string
	setPasswordHash(hash string)
}

// Borrower is the capability of users permitted to borrow books.
// Only students implement it.
type Borrower interface {
	User

	PendingFine() int
	// CanBorrow holds exactly when no fine is pending.
	CanBorrow() bool
	// BorrowDurationDays is the fixed loan period for this borrower.
	BorrowDurationDays() int

	addPendingFine(amount int) error
	// reducePendingFine clamps at zero and reports the unapplied
	// excess. Nothing is credited for the excess; the caller decides
	// how to surface it.
	reducePendingFine(amount int) (excess int, err error)
}

type userCore struct {
	name  string
	email string
	hash  string
}

func (u *userCore) Key() string   { return u.email }
func (u *userCore) Email() string { return u.email }
func (u *userCore) Name() string  { return u.name }

func (u *userCore) rename(name string)          { u.name = name }
func (u *userCore) passwordHash() string        { return u.hash }
func (u *userCore) setPasswordHash(hash string) { u.hash = hash }

// Librarian is the administrative user variant. It carries no state
// beyond the common fields.
type Librarian struct {
	userCore
}

func (l *Librarian) Role() Role { return RoleLibrarian }

// Student is the borrowing user variant.
type Student struct {
	userCore
	address     string
	pendingFine int
}

func (s *Student) Role() Role { return RoleStudent }

func (s *Student) Address() string { return s.address }

func (s *Student) PendingFine() int { return s.pendingFine }

func (s *Student) CanBorrow() bool { return s.pendingFine == 0 }

func (s *Student) BorrowDurationDays() int { return studentBorrowDays }

func (s *Student) addPendingFine(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: fine must not be negative", ErrInvalidArgument)
	}
	s.pendingFine += amount
	return nil
}

func (s *Student) reducePendingFine(amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: fine must not be negative", ErrInvalidArgument)
	}
	if amount <= s.pendingFine {
		s.pendingFine -= amount
		return 0, nil
	}
	excess := amount - s.pendingFine
	s.pendingFine = 0
	return excess, nil
}

// newLibrarian and newStudent are reached only through the directory,
// which validates fields and hashes the password first.

func newLibrarian(name, email, hash string) *Librarian {
	return &Librarian{userCore: userCore{name: name, email: email, hash: hash}}
}

func newStudent(name, email, hash, address string) *Student {
	return &Student{
		userCore: userCore{name: name, email: email, hash: hash},
		address:  address,
	}
}
