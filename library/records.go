package library

import (
	"fmt"
	"log/slog"
)

// recordDocument is the durable form of a borrowing record. It stores
// only the foreign keys of the book and borrower; the live references
// are re-linked on load.
type recordDocument struct {
	RecordID      string       `json:"recordId"`
	BookISBN      string       `json:"bookIsbn"`
	BorrowerEmail string       `json:"borrowerEmail"`
	BorrowDate    Date         `json:"borrowDate"`
	DueDate       Date         `json:"dueDate"`
	ReturnDate    Date         `json:"returnDate"`
	Fine          int          `json:"fine"`
	Status        RecordStatus `json:"status"`
}

// RecordStore is the borrowing-record repository. Loading resolves
// each stored (ISBN, e-mail) pair against the catalog and directory
// and fails the whole load when a reference is dangling; saving
// flattens the live references back to their keys.
type RecordStore struct {
	col     *Collection[*BorrowingRecord]
	storage *Storage[recordDocument]
	books   *Catalog
	users   *Directory
	log     *slog.Logger
}

// NewRecordStore loads the records from their backing file, re-linking
// books and borrowers. Restoring a record re-derives its status and
// fine as of asOf, so fines accrued since the last save reach the
// borrowers' ledgers during the load.
func NewRecordStore(path string, books *Catalog, users *Directory, log *slog.Logger, asOf Date) (*RecordStore, error) {
	rs := &RecordStore{
		storage: NewStorage[recordDocument](path),
		books:   books,
		users:   users,
		log:     log.With("component", "records"),
	}
	rs.col = newCollection(rs.saveDocuments)

	docs, err := rs.storage.Load()
	if err != nil {
		return nil, err
	}
	records := make([]*BorrowingRecord, 0, len(docs))
	for _, doc := range docs {
		record, err := rs.resolve(doc, asOf)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	rs.col.replaceAll(records)
	return rs, nil
}

// resolve rebuilds one record from its durable form.
func (rs *RecordStore) resolve(doc recordDocument, asOf Date) (*BorrowingRecord, error) {
	book, ok := rs.books.col.Get(doc.BookISBN)
	if !ok {
		return nil, fmt.Errorf("%w: record %s references unknown book %s", ErrReferentialIntegrity, doc.RecordID, doc.BookISBN)
	}
	user, ok := rs.users.col.Get(doc.BorrowerEmail)
	if !ok {
		return nil, fmt.Errorf("%w: record %s references unknown user %s", ErrReferentialIntegrity, doc.RecordID, doc.BorrowerEmail)
	}
	borrower, ok := user.(Borrower)
	if !ok {
		return nil, fmt.Errorf("%w: record %s references user %s who cannot borrow", ErrReferentialIntegrity, doc.RecordID, doc.BorrowerEmail)
	}
	return restoreBorrowingRecord(doc.RecordID, book, borrower, doc.BorrowDate, doc.DueDate, doc.ReturnDate, doc.Fine, asOf)
}

func (rs *RecordStore) saveDocuments(records []*BorrowingRecord) error {
	docs := make([]recordDocument, 0, len(records))
	for _, r := range records {
		returnDate, _ := r.ReturnDate()
		docs = append(docs, recordDocument{
			RecordID:      r.ID(),
			BookISBN:      r.Book().ISBN(),
			BorrowerEmail: r.Borrower().Email(),
			BorrowDate:    r.BorrowDate(),
			DueDate:       r.DueDate(),
			ReturnDate:    returnDate,
			Fine:          r.Fine(),
			Status:        r.Status(),
		})
	}
	return rs.storage.Save(docs)
}

// Add inserts the record and persists the collection.
func (rs *RecordStore) Add(record *BorrowingRecord) error {
	return rs.col.Add(record)
}

// Remove deletes the record with the given ID. Present for
// completeness; no modeled flow removes records.
func (rs *RecordStore) Remove(recordID string) (bool, error) {
	return rs.col.Remove(recordID)
}

// Get returns the record with the given ID.
func (rs *RecordStore) Get(recordID string) (*BorrowingRecord, error) {
	if err := validateNotBlank(recordID, "record ID"); err != nil {
		return nil, err
	}
	record, ok := rs.col.Get(recordID)
	if !ok {
		return nil, fmt.Errorf("%w: borrowing record %s", ErrNotFound, recordID)
	}
	return record, nil
}

// All returns a snapshot of all records.
func (rs *RecordStore) All() []*BorrowingRecord { return rs.col.All() }

// Len returns the number of records.
func (rs *RecordStore) Len() int { return rs.col.Len() }

// Save rewrites the whole collection after in-place record mutations.
func (rs *RecordStore) Save() error { return rs.col.persist() }
