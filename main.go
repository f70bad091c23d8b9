package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/M-AdanAli/Smart-Library-Management-System/config"
	"github.com/M-AdanAli/Smart-Library-Management-System/library"
)

var (
	cfgFile string
	lib     *library.Library
)

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func openLibrary(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	lib, err = library.Open(library.Options{
		BooksPath:   cfg.BooksPath(),
		UsersPath:   cfg.UsersPath(),
		RecordsPath: cfg.RecordsPath(),
		Logger:      library.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr),
	})
	return err
}

func main() {
	root := &cobra.Command{
		Use:               "library",
		Short:             "Library management system over flat JSON files",
		PersistentPreRunE: openLibrary,
		SilenceUsage:      true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")

	root.AddCommand(booksCmd(), usersCmd(), recordsCmd(),
		borrowCmd(), returnCmd(), payFineCmd(), loginCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// ------------------ Books ------------------

func booksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "books", Short: "Manage the book catalog"}

	var (
		title, author, genre, published string
		quantity                        int
	)
	add := &cobra.Command{
		Use:   "add ISBN",
		Short: "Add a book to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := library.ParseDate(published)
			if err != nil {
				return err
			}
			book, err := lib.Books().Add(args[0], title, author, genre, pub, quantity)
			if err != nil {
				return err
			}
			fmt.Printf("Added %q (%s), %d copies.\n", book.Title(), book.ISBN(), book.Quantity())
			return nil
		},
	}
	add.Flags().StringVar(&title, "title", "", "book title")
	add.Flags().StringVar(&author, "author", "", "author name")
	add.Flags().StringVar(&genre, "genre", "", "genre")
	add.Flags().StringVar(&published, "published", "", "publication date (YYYY-MM-DD)")
	add.Flags().IntVar(&quantity, "quantity", 1, "number of copies")

	remove := &cobra.Command{
		Use:   "remove ISBN",
		Short: "Remove a book without active borrowings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lib.RemoveBook(args[0]); err != nil {
				return err
			}
			fmt.Println("Book removed.")
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all books",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBooks(lib.Books().List())
			return nil
		},
	}

	var by string
	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search books by title, author, or genre",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attr, err := parseSearchAttribute(by)
			if err != nil {
				return err
			}
			books, err := lib.Books().Search(args[0], attr)
			if err != nil {
				return err
			}
			printBooks(books)
			return nil
		},
	}
	search.Flags().StringVar(&by, "by", "all", "attribute to match: title, author, genre, all")

	increase := &cobra.Command{
		Use:   "increase ISBN COUNT",
		Short: "Add copies of a book",
		Args:  cobra.ExactArgs(2),
		RunE:  quantityRunE(func(isbn string, n int) error { return lib.Books().IncreaseQuantity(isbn, n) }),
	}
	decrease := &cobra.Command{
		Use:   "decrease ISBN COUNT",
		Short: "Remove copies of a book",
		Args:  cobra.ExactArgs(2),
		RunE:  quantityRunE(func(isbn string, n int) error { return lib.Books().DecreaseQuantity(isbn, n) }),
	}

	cmd.AddCommand(add, remove, list, search, increase, decrease)
	return cmd
}

func quantityRunE(apply func(isbn string, n int) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("count must be a number: %w", err)
		}
		if err := apply(args[0], n); err != nil {
			return err
		}
		fmt.Println("Quantity updated.")
		return nil
	}
}

func parseSearchAttribute(s string) (library.SearchAttribute, error) {
	switch strings.ToLower(s) {
	case "title":
		return library.SearchTitle, nil
	case "author":
		return library.SearchAuthor, nil
	case "genre":
		return library.SearchGenre, nil
	case "", "all":
		return library.SearchAll, nil
	}
	return library.SearchAll, fmt.Errorf("unknown search attribute %q", s)
}

func printBooks(books []*library.Book) {
	fmt.Printf("%-16s %-40s %-25s %-15s %-12s %8s\n", "ISBN", "TITLE", "AUTHOR", "GENRE", "PUBLISHED", "QUANTITY")
	for _, b := range books {
		fmt.Printf("%-16s %-40s %-25s %-15s %-12s %8d\n",
			b.ISBN(), b.Title(), b.Author(), b.Genre(), b.PublicationDate(), b.Quantity())
	}
}

// ------------------ Users ------------------

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage librarians and students"}

	var role, name, address string
	add := &cobra.Command{
		Use:   "add EMAIL",
		Short: "Register a librarian or student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			switch strings.ToLower(role) {
			case string(library.RoleLibrarian):
				_, err = lib.Users().AddLibrarian(name, args[0], password)
			case string(library.RoleStudent):
				_, err = lib.Users().AddStudent(name, args[0], password, address)
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			if err != nil {
				return err
			}
			fmt.Println("User registered.")
			return nil
		},
	}
	add.Flags().StringVar(&role, "role", "student", "librarian or student")
	add.Flags().StringVar(&name, "name", "", "full name")
	add.Flags().StringVar(&address, "address", "", "address (students only)")

	remove := &cobra.Command{
		Use:   "remove EMAIL",
		Short: "Remove a student account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lib.Users().RemoveStudent(args[0]); err != nil {
				return err
			}
			fmt.Println("Student removed.")
			return nil
		},
	}

	var listRole string
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(listRole) {
			case "":
				printUsers(lib.Users().List())
			case string(library.RoleLibrarian), string(library.RoleStudent):
				printUsers(lib.Users().ListByRole(library.Role(strings.ToLower(listRole))))
			default:
				return fmt.Errorf("unknown role %q", listRole)
			}
			return nil
		},
	}
	list.Flags().StringVar(&listRole, "role", "", "restrict to librarian or student")

	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search users by name or e-mail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := lib.Users().Search(args[0])
			if err != nil {
				return err
			}
			printUsers(users)
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename EMAIL NAME",
		Short: "Change a user's name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lib.Users().UpdateName(args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("Name updated.")
			return nil
		},
	}

	passwd := &cobra.Command{
		Use:   "passwd EMAIL",
		Short: "Change a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("New password: ")
			if err != nil {
				return err
			}
			if err := lib.Users().UpdatePassword(args[0], password); err != nil {
				return err
			}
			fmt.Println("Password updated.")
			return nil
		},
	}

	cmd.AddCommand(add, remove, list, search, rename, passwd)
	return cmd
}

func printUsers(users []library.User) {
	fmt.Printf("%-25s %-30s %-10s %-20s %12s\n", "NAME", "E-MAIL", "ROLE", "ADDRESS", "PENDING FINE")
	for _, u := range users {
		address, fine := "", "-"
		if s, ok := u.(*library.Student); ok {
			address = s.Address()
			fine = strconv.Itoa(s.PendingFine())
		}
		fmt.Printf("%-25s %-30s %-10s %-20s %12s\n", u.Name(), u.Email(), u.Role(), address, fine)
	}
}

// ------------------ Circulation ------------------

func borrowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrow EMAIL ISBN",
		Short: "Lend a copy of a book to a borrower",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := lib.BorrowBook(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Borrowed %q, due %s (record %s).\n",
				record.Book().Title(), record.DueDate(), record.ID())
			return nil
		},
	}
}

func returnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return EMAIL ISBN",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := lib.ReturnBook(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Returned %q with status %s.\n", record.Book().Title(), record.Status())
			if record.Fine() > 0 {
				fmt.Printf("A fine of %d was added; pending fine is now %d.\n",
					record.Fine(), record.Borrower().PendingFine())
			}
			return nil
		},
	}
}

func payFineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay-fine EMAIL AMOUNT",
		Short: "Pay down a borrower's pending fine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("amount must be a number: %w", err)
			}
			excess, err := lib.PayFine(args[0], amount)
			if err != nil {
				return err
			}
			fmt.Println("Fine paid.")
			if excess > 0 {
				fmt.Printf("Overpaid by %d; this amount should be returned to the payer.\n", excess)
			}
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login EMAIL",
		Short: "Verify a user's credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			user, err := lib.Users().Authenticate(args[0], password)
			if err != nil {
				return err
			}
			fmt.Printf("Welcome, %s (%s).\n", user.Name(), user.Role())
			return nil
		},
	}
}

// ------------------ Records ------------------

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "records", Short: "Inspect borrowing records"}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List borrowing records",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(status) {
			case "":
				printRecords(lib.Borrowing().All())
			case "active":
				printRecords(lib.Borrowing().Active())
			case "returned":
				printRecords(lib.Borrowing().Returned())
			case "overdue":
				printRecords(lib.Borrowing().ByStatus(library.StatusOverdue))
			default:
				return fmt.Errorf("unknown status %q", status)
			}
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "active, returned, or overdue")

	overdue := &cobra.Command{
		Use:   "overdue",
		Short: "List outstanding loans past their due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			printRecords(lib.Borrowing().Overdue())
			return nil
		},
	}

	byBorrower := &cobra.Command{
		Use:   "by-borrower EMAIL",
		Short: "List a borrower's history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			borrower, err := lib.Users().Borrower(args[0])
			if err != nil {
				return err
			}
			printRecords(lib.Borrowing().ByBorrower(borrower))
			return nil
		},
	}

	byBook := &cobra.Command{
		Use:   "by-book ISBN",
		Short: "List a book's history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := lib.Books().Get(args[0])
			if err != nil {
				return err
			}
			printRecords(lib.Borrowing().ByBook(book))
			return nil
		},
	}

	cmd.AddCommand(list, overdue, byBorrower, byBook)
	return cmd
}

func printRecords(records []*library.BorrowingRecord) {
	fmt.Printf("%-44s %-30s %-30s %-12s %-12s %-12s %-9s %6s\n",
		"RECORD", "BOOK", "BORROWER", "BORROWED", "DUE", "RETURNED", "STATUS", "FINE")
	for _, r := range records {
		returned := "-"
		if d, ok := r.ReturnDate(); ok {
			returned = d.String()
		}
		fmt.Printf("%-44s %-30s %-30s %-12s %-12s %-12s %-9s %6d\n",
			r.ID(), r.Book().Title(), r.Borrower().Email(),
			r.BorrowDate(), r.DueDate(), returned, r.Status(), r.Fine())
	}
}
