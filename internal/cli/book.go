package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bibliotheca/internal/catalog"
	"github.com/mesh-intelligence/bibliotheca/internal/query"
	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

func newBookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage books in the catalog",
	}
	cmd.AddCommand(
		newBookAddCmd(a),
		newBookEditCmd(a),
		newBookDeleteCmd(a),
		newBookShowCmd(a),
		newBookListCmd(a),
		newBookSortCmd(a),
	)
	return cmd
}

// bookFlags binds the editable book fields to command flags.
func bookFlags(cmd *cobra.Command, f *types.BookFields) {
	cmd.Flags().StringVar(&f.Title, "title", "", "book title")
	cmd.Flags().StringVar(&f.Author, "author", "", "author name")
	cmd.Flags().StringVar(&f.Year, "year", "", "publication year")
	cmd.Flags().StringVar(&f.Genre, "genre", "", "genre")
	cmd.Flags().StringVar(&f.Description, "description", "", "short description")
}

func newBookAddCmd(a *app) *cobra.Command {
	var fields types.BookFields
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fields.Title == "" {
				return userError(fmt.Errorf("add: --title is required"))
			}
			return a.withCatalog(func(cat *catalog.Store) error {
				if fields.Author != "" && !cat.HasAuthorNamed(fields.Author) {
					a.logger.Warn("author is not registered", slog.String("author", fields.Author))
				}
				b, err := cat.AddBook(fields)
				if err != nil {
					return classify("add", err)
				}
				return writeBook(cmd.OutOrStdout(), a.flags.jsonMode, b)
			})
		},
	}
	bookFlags(cmd, &fields)
	return cmd
}

func newBookEditCmd(a *app) *cobra.Command {
	var fields types.BookFields
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a book; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(func(cat *catalog.Store) error {
				current, err := cat.BeginEdit(args[0])
				if err != nil {
					return classify("edit", err)
				}
				merged := current.BookFields
				flags := cmd.Flags()
				for name, dst := range map[string]*string{
					"title":       &merged.Title,
					"author":      &merged.Author,
					"year":        &merged.Year,
					"genre":       &merged.Genre,
					"description": &merged.Description,
				} {
					if flags.Changed(name) {
						*dst, _ = flags.GetString(name)
					}
				}
				if merged == current.BookFields {
					cat.CancelEdit()
					return writeBook(cmd.OutOrStdout(), a.flags.jsonMode, current)
				}
				b, updated, err := cat.Submit(merged)
				if err != nil {
					return classify("edit", err)
				}
				if !updated {
					return sysError(fmt.Errorf("edit: session for %s ended before submit", current.ID))
				}
				return writeBook(cmd.OutOrStdout(), a.flags.jsonMode, b)
			})
		},
	}
	bookFlags(cmd, &fields)
	return cmd
}

func newBookDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a book by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(func(cat *catalog.Store) error {
				removed, err := cat.DeleteBook(args[0])
				if err != nil {
					return classify("delete", err)
				}
				if !removed {
					return userError(fmt.Errorf("book %q not found", args[0]))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted book %s\n", args[0])
				return nil
			})
		},
	}
}

func newBookShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(func(cat *catalog.Store) error {
				b, err := cat.Book(args[0])
				if err != nil {
					return classify("show", err)
				}
				return writeBook(cmd.OutOrStdout(), a.flags.jsonMode, b)
			})
		},
	}
}

func newBookListCmd(a *app) *cobra.Command {
	var (
		search string
		sortBy string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books, optionally filtered and sorted",
		Long: `List books in stored order. --search keeps books whose title or author
contains the term, ignoring case. --sort orders the listing without changing
the stored order; use "book sort" to persist an order.

Sort keys: title-asc, title-desc, year-asc, year-desc, author-asc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var key query.SortKey
			if sortBy != "" {
				var err error
				if key, err = query.ParseSortKey(sortBy); err != nil {
					return classify("list", err)
				}
			}
			return a.withCatalog(func(cat *catalog.Store) error {
				books := query.Search(cat.Books(), search)
				if key != "" {
					var err error
					if books, err = a.sorter().Sort(books, key); err != nil {
						return classify("list", err)
					}
				}
				return writeBooks(cmd.OutOrStdout(), a.flags.jsonMode, books)
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by title or author substring")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort key for this listing")
	return cmd
}

func newBookSortCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sort <key>",
		Short: "Reorder the stored books",
		Long:  "Sort keys: title-asc, title-desc, year-asc, year-desc, author-asc",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := query.ParseSortKey(args[0])
			if err != nil {
				return classify("sort", err)
			}
			return a.withCatalog(func(cat *catalog.Store) error {
				books, err := cat.SortBooks(key)
				if err != nil {
					return classify("sort", err)
				}
				return writeBooks(cmd.OutOrStdout(), a.flags.jsonMode, books)
			})
		},
	}
}
