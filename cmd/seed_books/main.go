// Command seed_books imports a batch of books from a JSON seed file
// into the catalog, skipping entries that are already present.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/M-AdanAli/Smart-Library-Management-System/config"
	"github.com/M-AdanAli/Smart-Library-Management-System/library"
)

type seedBook struct {
	ISBN            string       `json:"isbn"`
	Title           string       `json:"title"`
	Author          string       `json:"authorName"`
	Genre           string       `json:"genre"`
	PublicationDate library.Date `json:"publicationDate"`
	Quantity        int          `json:"quantity"`
}

func main() {
	cfgFile := flag.String("config", "", "path to a YAML config file")
	seedFile := flag.String("seed", "seed_books.json", "JSON array of books to import")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	lib, err := library.Open(library.Options{
		BooksPath:   cfg.BooksPath(),
		UsersPath:   cfg.UsersPath(),
		RecordsPath: cfg.RecordsPath(),
		Logger:      library.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening library: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*seedFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading seed file: %v\n", err)
		os.Exit(1)
	}
	var seeds []seedBook
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &seeds); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing seed file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Importing %d books from %s...\n", len(seeds), *seedFile)
	successCount, skipCount, errorCount := 0, 0, 0
	for _, s := range seeds {
		fmt.Printf("Importing: %s by %s... ", s.Title, s.Author)
		_, err := lib.Books().Add(s.ISBN, s.Title, s.Author, s.Genre, s.PublicationDate, s.Quantity)
		switch {
		case errors.Is(err, library.ErrDuplicateKey):
			fmt.Println("SKIPPED (already in catalog)")
			skipCount++
		case err != nil:
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
		default:
			fmt.Println("SUCCESS")
			successCount++
		}
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Skipped: %d\n", skipCount)
	fmt.Printf("Errors: %d\n", errorCount)
}
