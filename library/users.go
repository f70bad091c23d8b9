package library

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// userDocument is the durable form of a directory entry. The role tag
// decides which variant the loader builds; the student-only fields are
// present only on student entries.
type userDocument struct {
	Role        Role   `json:"role"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Address     string `json:"address,omitempty"`
	PendingFine int    `json:"pendingFine,omitempty"`
}

// Directory is the user repository: librarians and students keyed by
// lower-cased e-mail, persisted to one JSON document. Passwords are
// stored as bcrypt hashes and checked only through Authenticate.
type Directory struct {
	col     *Collection[User]
	storage *Storage[userDocument]
	log     *slog.Logger
}

// NewDirectory loads the directory from its backing file.
func NewDirectory(path string, log *slog.Logger) (*Directory, error) {
	d := &Directory{
		storage: NewStorage[userDocument](path),
		log:     log.With("component", "directory"),
	}
	d.col = newCollection(d.saveDocuments)

	docs, err := d.storage.Load()
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(docs))
	for _, doc := range docs {
		user, err := userFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: user %q in %s: %v", ErrStorageRead, doc.Email, path, err)
		}
		users = append(users, user)
	}
	d.col.replaceAll(users)
	return d, nil
}

func userFromDocument(doc userDocument) (User, error) {
	email := normalizeEmail(doc.Email)
	switch doc.Role {
	case RoleLibrarian:
		return newLibrarian(doc.Name, email, doc.Password), nil
	case RoleStudent:
		s := newStudent(doc.Name, email, doc.Password, doc.Address)
		s.pendingFine = doc.PendingFine
		return s, nil
	default:
		return nil, fmt.Errorf("unknown role %q", doc.Role)
	}
}

func (d *Directory) saveDocuments(users []User) error {
	docs := make([]userDocument, 0, len(users))
	for _, u := range users {
		doc := userDocument{
			Role:     u.Role(),
			Name:     u.Name(),
			Email:    u.Email(),
			Password: u.passwordHash(),
		}
		if s, ok := u.(*Student); ok {
			doc.Address = s.Address()
			doc.PendingFine = s.PendingFine()
		}
		docs = append(docs, doc)
	}
	return d.storage.Save(docs)
}

func hashPassword(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// AddLibrarian registers a librarian.
func (d *Directory) AddLibrarian(name, email, password string) (*Librarian, error) {
	if err := d.validateNewUser(name, email); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	librarian := newLibrarian(name, normalizeEmail(email), hash)
	if err := d.col.Add(librarian); err != nil {
		return nil, err
	}
	d.log.Info("librarian registered", "email", librarian.Email())
	return librarian, nil
}

// AddStudent registers a student borrower.
func (d *Directory) AddStudent(name, email, password, address string) (*Student, error) {
	if err := d.validateNewUser(name, email); err != nil {
		return nil, err
	}
	if err := validateNotBlank(address, "address"); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	student := newStudent(name, normalizeEmail(email), hash, address)
	if err := d.col.Add(student); err != nil {
		return nil, err
	}
	d.log.Info("student registered", "email", student.Email())
	return student, nil
}

func (d *Directory) validateNewUser(name, email string) error {
	if err := validateNotBlank(name, "user name"); err != nil {
		return err
	}
	return validateEmail(email)
}

// Remove deletes the user with the given e-mail, reporting whether one
// was present.
func (d *Directory) Remove(email string) (bool, error) {
	if err := validateEmail(email); err != nil {
		return false, err
	}
	removed, err := d.col.Remove(normalizeEmail(email))
	if err != nil {
		return removed, err
	}
	if removed {
		d.log.Info("user removed", "email", normalizeEmail(email))
	}
	return removed, nil
}

// RemoveStudent deletes the user only if the e-mail belongs to a
// student.
func (d *Directory) RemoveStudent(email string) error {
	user, err := d.Get(email)
	if err != nil {
		return err
	}
	if user.Role() != RoleStudent {
		return fmt.Errorf("%w: %s does not belong to a student", ErrIllegalState, user.Email())
	}
	_, err = d.Remove(email)
	return err
}

// Get returns the user with the given e-mail.
func (d *Directory) Get(email string) (User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	user, ok := d.col.Get(normalizeEmail(email))
	if !ok {
		return nil, fmt.Errorf("%w: user with e-mail %s", ErrNotFound, normalizeEmail(email))
	}
	return user, nil
}

// Borrower returns the user with the given e-mail as a borrower.
func (d *Directory) Borrower(email string) (Borrower, error) {
	user, err := d.Get(email)
	if err != nil {
		return nil, err
	}
	borrower, ok := user.(Borrower)
	if !ok {
		return nil, fmt.Errorf("%w: user %s cannot borrow", ErrIllegalState, user.Email())
	}
	return borrower, nil
}

// List returns a snapshot of all users.
func (d *Directory) List() []User { return d.col.All() }

// ListByRole returns the users with the given role.
func (d *Directory) ListByRole(role Role) []User {
	var users []User
	for _, u := range d.col.All() {
		if u.Role() == role {
			users = append(users, u)
		}
	}
	return users
}

// Len returns the number of users.
func (d *Directory) Len() int { return d.col.Len() }

// Search matches the query case-insensitively against name or e-mail.
func (d *Directory) Search(query string) ([]User, error) {
	if err := validateNotBlank(query, "search query"); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var results []User
	for _, u := range d.col.All() {
		if strings.Contains(strings.ToLower(u.Name()), q) || strings.Contains(strings.ToLower(u.Email()), q) {
			results = append(results, u)
		}
	}
	return results, nil
}

// UpdateName renames the user and re-saves the directory.
func (d *Directory) UpdateName(email, name string) error {
	if err := validateNotBlank(name, "user name"); err != nil {
		return err
	}
	user, err := d.Get(email)
	if err != nil {
		return err
	}
	user.rename(name)
	return d.Save()
}

// UpdatePassword replaces the user's password and re-saves the
// directory.
func (d *Directory) UpdatePassword(email, password string) error {
	user, err := d.Get(email)
	if err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.setPasswordHash(hash)
	return d.Save()
}

// Authenticate verifies the credentials and returns the user.
func (d *Directory) Authenticate(email, password string) (User, error) {
	user, err := d.Get(email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.passwordHash()), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, fmt.Errorf("%w: wrong password for %s", ErrInvalidCredentials, user.Email())
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}
	return user, nil
}

// Save rewrites the whole directory after an in-place user mutation.
func (d *Directory) Save() error { return d.col.persist() }
