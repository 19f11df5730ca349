package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bibliotheca/internal/catalog"
	"github.com/mesh-intelligence/bibliotheca/internal/reconcile"
)

func newExternalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "external",
		Short: "Search OpenLibrary and import results",
	}
	cmd.AddCommand(newExternalSearchCmd(a), newExternalImportCmd(a))
	return cmd
}

func newExternalSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search OpenLibrary",
		Long: `Search OpenLibrary and list the first page of matches with the total
number of matches and the distinct authors on the page. The local catalog is
not touched.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.searchSession().Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return classify("search", err)
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeResults(cmd.OutOrStdout(), res)
		},
	}
}

func newExternalImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <query> <n>",
		Short: "Import the n-th search result as a new book",
		Long: `Run the search for <query> and add result number <n> (as listed by
"external search") to the catalog. Fields the result does not report get
placeholders and the genre is set to Other.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return userError(fmt.Errorf("import: invalid result number %q", args[1]))
			}
			res, err := a.searchSession().Search(cmd.Context(), args[0])
			if err != nil {
				return classify("import", err)
			}
			if n > len(res.Candidates) {
				return userError(fmt.Errorf("import: result %d out of range (search returned %d)", n, len(res.Candidates)))
			}
			return a.withCatalog(func(cat *catalog.Store) error {
				b, err := reconcile.ImportCandidate(cat, res.Candidates[n-1])
				if err != nil {
					return classify("import", err)
				}
				return writeBook(cmd.OutOrStdout(), a.flags.jsonMode, b)
			})
		},
	}
}

func writeResults(w io.Writer, res reconcile.Results) error {
	if err := writeFields(w,
		"Found", strconv.Itoa(res.TotalFound),
		"Authors", strconv.Itoa(len(res.UniqueAuthors)),
	); err != nil {
		return err
	}
	if len(res.Candidates) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	t := newTable("#", "Title", "Authors", "Year")
	for i, c := range res.Candidates {
		year := ""
		if c.FirstPublishYear != nil {
			year = strconv.Itoa(*c.FirstPublishYear)
		}
		t.Row(strconv.Itoa(i+1), truncate(c.Title, 48), truncate(strings.Join(c.Authors, ", "), 32), year)
	}
	_, err := fmt.Fprintln(w, t)
	return err
}
