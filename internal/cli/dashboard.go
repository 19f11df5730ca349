package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bibliotheca/internal/catalog"
	"github.com/mesh-intelligence/bibliotheca/internal/stats"
)

// barWidth is the longest histogram bar, in cells.
const barWidth = 30

func newDashboardCmd(a *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show catalog statistics",
		Long: `Show the number of books and authors, the most popular genre, the genre
distribution, and the number of books published in each of the last ten
years up to --year (default: the current year).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = a.now().Year()
			}
			return a.withCatalog(func(cat *catalog.Store) error {
				d := stats.Compute(cat.Catalog(), year)
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), d)
				}
				return writeDashboard(cmd.OutOrStdout(), d)
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "last year of the publication histogram")
	return cmd
}

func writeDashboard(w io.Writer, d stats.Dashboard) error {
	if err := writeFields(w,
		"Books", strconv.Itoa(d.TotalBooks),
		"Authors", strconv.Itoa(d.TotalAuthors),
		"Top genre", d.PopularGenre,
	); err != nil {
		return err
	}

	if len(d.Genres) > 0 {
		t := newTable("Genre", "Books")
		for _, g := range d.Genres {
			t.Row(g.Genre, strconv.Itoa(g.Count))
		}
		fmt.Fprintln(w, t)
	}

	peak := 0
	for _, y := range d.Years {
		peak = max(peak, y.Count)
	}
	t := newTable("Year", "Books", "")
	for _, y := range d.Years {
		t.Row(strconv.Itoa(y.Year), strconv.Itoa(y.Count), bar(y.Count, peak))
	}
	_, err := fmt.Fprintln(w, t)
	return err
}

func bar(n, peak int) string {
	if peak == 0 || n == 0 {
		return ""
	}
	return strings.Repeat("█", max(1, n*barWidth/peak))
}
