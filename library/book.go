package library

import "fmt"

// Book is a catalog entry identified by its ISBN. The ISBN is immutable
// once set; every other field mutates only through validating setters,
// and the quantity never drops below zero.
type Book struct {
	isbn            string
	title           string
	author          string
	genre           string
	publicationDate Date
	quantity        int
}

// NewBook validates every field and builds a catalog entry.
func NewBook(isbn, title, author, genre string, publicationDate Date, quantity int) (*Book, error) {
	if err := validateISBN(isbn); err != nil {
		return nil, err
	}
	b := &Book{isbn: isbn}
	if err := b.SetTitle(title); err != nil {
		return nil, err
	}
	if err := b.SetAuthor(author); err != nil {
		return nil, err
	}
	if err := b.SetGenre(genre); err != nil {
		return nil, err
	}
	if err := b.SetPublicationDate(publicationDate); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidArgument)
	}
	b.quantity = quantity
	return b, nil
}

// Key returns the natural key of the book for collection membership.
func (b *Book) Key() string { return b.isbn }

func (b *Book) ISBN() string          { return b.isbn }
func (b *Book) Title() string         { return b.title }
func (b *Book) Author() string        { return b.author }
func (b *Book) Genre() string         { return b.genre }
func (b *Book) PublicationDate() Date { return b.publicationDate }
func (b *Book) Quantity() int         { return b.quantity }

func (b *Book) SetTitle(title string) error {
	if err := validateNotBlank(title, "title"); err != nil {
		return err
	}
	b.title = title
	return nil
}

func (b *Book) SetAuthor(author string) error {
	if err := validateNotBlank(author, "author"); err != nil {
		return err
	}
	b.author = author
	return nil
}

func (b *Book) SetGenre(genre string) error {
	if err := validateNotBlank(genre, "genre"); err != nil {
		return err
	}
	b.genre = genre
	return nil
}

func (b *Book) SetPublicationDate(d Date) error {
	if d.IsZero() {
		return fmt.Errorf("%w: publication date must be set", ErrInvalidArgument)
	}
	b.publicationDate = d
	return nil
}

// IncreaseQuantity adds value copies; value must not be negative.
func (b *Book) IncreaseQuantity(value int) error {
	if value < 0 {
		return fmt.Errorf("%w: quantity increase must not be negative", ErrInvalidArgument)
	}
	b.quantity += value
	return nil
}

// DecreaseQuantity removes value copies; the quantity never goes below
// zero.
func (b *Book) DecreaseQuantity(value int) error {
	if value < 0 {
		return fmt.Errorf("%w: quantity decrease must not be negative", ErrInvalidArgument)
	}
	if value > b.quantity {
		return fmt.Errorf("%w: cannot remove %d of %d copies of %s", ErrInvalidArgument, value, b.quantity, b.isbn)
	}
	b.quantity -= value
	return nil
}

// AvailableForBorrow reports whether at least one copy is on the shelf.
func (b *Book) AvailableForBorrow() bool { return b.quantity > 0 }
