package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

var (
	purple = lipgloss.Color("99")

	headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(purple).Bold(true)
)

// newTable returns a borderless table with the given headers.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func writeBooks(w io.Writer, jsonMode bool, books []types.Book) error {
	if jsonMode {
		return writeJSON(w, books)
	}
	if len(books) == 0 {
		_, err := fmt.Fprintln(w, "No books found.")
		return err
	}
	t := newTable("#", "ID", "Title", "Author", "Year", "Genre")
	for i, b := range books {
		t.Row(strconv.Itoa(i+1), b.ID, truncate(b.Title, 40), truncate(b.Author, 30), b.Year, b.Genre)
	}
	_, err := fmt.Fprintln(w, t)
	return err
}

func writeBook(w io.Writer, jsonMode bool, b types.Book) error {
	if jsonMode {
		return writeJSON(w, b)
	}
	return writeFields(w,
		"ID", b.ID,
		"Title", b.Title,
		"Author", b.Author,
		"Year", b.Year,
		"Genre", b.Genre,
		"Description", b.Description)
}

func writeAuthors(w io.Writer, jsonMode bool, authors []types.Author) error {
	if jsonMode {
		return writeJSON(w, authors)
	}
	if len(authors) == 0 {
		_, err := fmt.Fprintln(w, "No authors found.")
		return err
	}
	t := newTable("#", "ID", "Name", "Nationality", "Born", "Bio")
	for i, a := range authors {
		t.Row(strconv.Itoa(i+1), a.ID, a.Name, a.Nationality, a.BirthYear, truncate(a.Bio, 40))
	}
	_, err := fmt.Fprintln(w, t)
	return err
}

func writeAuthor(w io.Writer, jsonMode bool, a types.Author) error {
	if jsonMode {
		return writeJSON(w, a)
	}
	return writeFields(w,
		"ID", a.ID,
		"Name", a.Name,
		"Nationality", a.Nationality,
		"Born", a.BirthYear,
		"Bio", a.Bio)
}

// writeFields prints label/value pairs, skipping empty values.
func writeFields(w io.Writer, kv ...string) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", kv[i]+":")), kv[i+1]); err != nil {
			return err
		}
	}
	return nil
}
