package library

import (
	"fmt"
	"log/slog"
	"strings"
)

// SearchAttribute selects which book field a catalog search matches.
type SearchAttribute int

const (
	SearchAll SearchAttribute = iota
	SearchTitle
	SearchAuthor
	SearchGenre
)

// bookDocument is the durable form of a Book.
type bookDocument struct {
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"authorName"`
	Genre           string `json:"genre"`
	PublicationDate Date   `json:"publicationDate"`
	Quantity        int    `json:"quantity"`
}

// Catalog is the book repository: a keyed collection persisted to one
// JSON document, with validated operations layered on top. Every
// mutating operation saves the whole collection synchronously.
type Catalog struct {
	col     *Collection[*Book]
	storage *Storage[bookDocument]
	log     *slog.Logger
}

// NewCatalog loads the catalog from its backing file. A missing file
// starts an empty catalog; a corrupt one fails the load.
func NewCatalog(path string, log *slog.Logger) (*Catalog, error) {
	c := &Catalog{
		storage: NewStorage[bookDocument](path),
		log:     log.With("component", "catalog"),
	}
	c.col = newCollection(c.saveDocuments)

	docs, err := c.storage.Load()
	if err != nil {
		return nil, err
	}
	books := make([]*Book, 0, len(docs))
	for _, doc := range docs {
		book, err := NewBook(doc.ISBN, doc.Title, doc.Author, doc.Genre, doc.PublicationDate, doc.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%w: book %q in %s: %v", ErrStorageRead, doc.ISBN, path, err)
		}
		books = append(books, book)
	}
	c.col.replaceAll(books)
	return c, nil
}

func (c *Catalog) saveDocuments(books []*Book) error {
	docs := make([]bookDocument, 0, len(books))
	for _, b := range books {
		docs = append(docs, bookDocument{
			ISBN:            b.ISBN(),
			Title:           b.Title(),
			Author:          b.Author(),
			Genre:           b.Genre(),
			PublicationDate: b.PublicationDate(),
			Quantity:        b.Quantity(),
		})
	}
	return c.storage.Save(docs)
}

// Add validates the fields and inserts the book. Additions require at
// least one copy.
func (c *Catalog) Add(isbn, title, author, genre string, publicationDate Date, quantity int) (*Book, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", ErrInvalidArgument)
	}
	book, err := NewBook(isbn, title, author, genre, publicationDate, quantity)
	if err != nil {
		return nil, err
	}
	if err := c.col.Add(book); err != nil {
		return nil, err
	}
	c.log.Info("book added", "isbn", book.ISBN(), "title", book.Title(), "quantity", quantity)
	return book, nil
}

// Remove deletes the book, reporting whether one was present. The
// caller checks the active-borrowings precondition first.
func (c *Catalog) Remove(isbn string) (bool, error) {
	if err := validateISBN(isbn); err != nil {
		return false, err
	}
	removed, err := c.col.Remove(isbn)
	if err != nil {
		return removed, err
	}
	if removed {
		c.log.Info("book removed", "isbn", isbn)
	}
	return removed, nil
}

// Get returns the book with the given ISBN.
func (c *Catalog) Get(isbn string) (*Book, error) {
	if err := validateISBN(isbn); err != nil {
		return nil, err
	}
	book, ok := c.col.Get(isbn)
	if !ok {
		return nil, fmt.Errorf("%w: book with ISBN %s", ErrNotFound, isbn)
	}
	return book, nil
}

// List returns a snapshot of all books.
func (c *Catalog) List() []*Book { return c.col.All() }

// Len returns the number of books.
func (c *Catalog) Len() int { return c.col.Len() }

// Search matches the query case-insensitively as a substring of the
// selected attribute; SearchAll matches if any of title, author or
// genre matches.
func (c *Catalog) Search(query string, attribute SearchAttribute) ([]*Book, error) {
	if err := validateNotBlank(query, "search query"); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	contains := func(field string) bool { return strings.Contains(strings.ToLower(field), q) }

	var results []*Book
	for _, b := range c.col.All() {
		var match bool
		switch attribute {
		case SearchTitle:
			match = contains(b.Title())
		case SearchAuthor:
			match = contains(b.Author())
		case SearchGenre:
			match = contains(b.Genre())
		default:
			match = contains(b.Title()) || contains(b.Author()) || contains(b.Genre())
		}
		if match {
			results = append(results, b)
		}
	}
	return results, nil
}

// UpdateTitle changes the title of the book and re-saves the catalog.
func (c *Catalog) UpdateTitle(isbn, title string) error {
	return c.update(isbn, func(b *Book) error { return b.SetTitle(title) })
}

// UpdateAuthor changes the author of the book.
func (c *Catalog) UpdateAuthor(isbn, author string) error {
	return c.update(isbn, func(b *Book) error { return b.SetAuthor(author) })
}

// UpdateGenre changes the genre of the book.
func (c *Catalog) UpdateGenre(isbn, genre string) error {
	return c.update(isbn, func(b *Book) error { return b.SetGenre(genre) })
}

// UpdatePublicationDate changes the publication date of the book.
func (c *Catalog) UpdatePublicationDate(isbn string, d Date) error {
	return c.update(isbn, func(b *Book) error { return b.SetPublicationDate(d) })
}

// IncreaseQuantity adds copies; the delta must be positive.
func (c *Catalog) IncreaseQuantity(isbn string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%w: quantity increase must be greater than 0", ErrInvalidArgument)
	}
	return c.update(isbn, func(b *Book) error { return b.IncreaseQuantity(value) })
}

// DecreaseQuantity removes copies; the delta must be positive and may
// not take the quantity below zero.
func (c *Catalog) DecreaseQuantity(isbn string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%w: quantity decrease must be greater than 0", ErrInvalidArgument)
	}
	return c.update(isbn, func(b *Book) error { return b.DecreaseQuantity(value) })
}

func (c *Catalog) update(isbn string, mutate func(*Book) error) error {
	book, err := c.Get(isbn)
	if err != nil {
		return err
	}
	if err := mutate(book); err != nil {
		return err
	}
	return c.Save()
}

// Save rewrites the whole catalog after an in-place book mutation.
func (c *Catalog) Save() error { return c.col.persist() }
