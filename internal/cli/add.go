package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/shelfview/internal/config"
	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/metadata"
)

// NewAddCmd creates the add command, which registers a book file.
func NewAddCmd() *cobra.Command {
	var title, author string

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a book file to the library",
		Long: `Adds a book file to the library. The book is identified by a hash of its content,
so adding the same file again updates the existing record.

Title, author and ISBN are read from EPUB files; --title and --author override them.`,
		Example: `  shelfview add ~/Books/dune.epub
  shelfview add notes.pdf --title "Lecture notes" --author "Me"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], title, author)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	return cmd
}

func runAdd(cmd *cobra.Command, path, title, author string) error {
	ctx := cmd.Context()
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	hash, err := library.HashFile(abs)
	if err != nil {
		return err
	}

	book := library.Book{
		Hash:     hash,
		Title:    title,
		Author:   author,
		Format:   strings.TrimPrefix(strings.ToLower(filepath.Ext(abs)), "."),
		FilePath: abs,
	}
	if book.Format == "epub" {
		fillFromEPUB(cmd, &book)
	}
	if book.Title == "" {
		book.Title = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}

	a, err := newApp(config.GetGlobalConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	now := time.Now().UTC()
	if existing, getErr := a.store.Get(ctx, hash); getErr == nil {
		book.CreatedAt = existing.CreatedAt
	} else {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	if putErr := a.store.Put(ctx, book); putErr != nil {
		return fmt.Errorf("adding %s: %w", path, putErr)
	}
	logger.Info().Ctx(ctx).Str("hash", hash).Str("file", abs).Msg("book added")
	cmd.Printf("Added %q (%s)\n", book.Title, shortHash(hash))
	return nil
}

// fillFromEPUB copies title, author and ISBN from the package document into
// the fields book does not set yet. A broken EPUB is still added.
func fillFromEPUB(cmd *cobra.Command, book *library.Book) {
	meta, err := metadata.ReadEPUB(book.FilePath)
	if err != nil {
		logger.Warn().Ctx(cmd.Context()).Err(err).Str("file", book.FilePath).Msg("reading EPUB metadata failed")
		return
	}
	if book.Title == "" {
		book.Title = meta.Title
	}
	if book.Author == "" {
		book.Author = meta.Author
	}
	if isbn := metadata.NormalizeISBN(meta.Identifier); isbn != "" {
		book.ISBN = isbn
	}
	if meta.CoverURL != "" {
		book.CoverImageURL = meta.CoverURL
	}
}
