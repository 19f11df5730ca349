// Package stats derives dashboard figures from a catalog snapshot.
package stats

import (
	"strconv"
	"strings"

	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// NoGenre is reported as the most popular genre of an empty collection.
const NoGenre = "None"

// HistogramYears is the width of the rolling year window.
const HistogramYears = 10

// GenreCount is one entry of the genre distribution.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// YearCount is one bucket of the year histogram.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Dashboard holds every figure shown on the dashboard.
type Dashboard struct {
	TotalBooks    int          `json:"totalBooks"`
	TotalAuthors  int          `json:"totalAuthors"`
	PopularGenre  string       `json:"popularGenre"`
	Genres        []GenreCount `json:"genres"`
	Years         []YearCount  `json:"years"`
	ReferenceYear int          `json:"referenceYear"`
}

// Compute builds the Dashboard for c, with the year histogram ending at
// referenceYear.
func Compute(c types.Catalog, referenceYear int) Dashboard {
	return Dashboard{
		TotalBooks:    TotalBooks(c),
		TotalAuthors:  TotalAuthors(c),
		PopularGenre:  MostPopularGenre(c.Books),
		Genres:        GenreDistribution(c.Books),
		Years:         YearHistogram(c.Books, referenceYear),
		ReferenceYear: referenceYear,
	}
}

func TotalBooks(c types.Catalog) int   { return len(c.Books) }
func TotalAuthors(c types.Catalog) int { return len(c.Authors) }

// GenreDistribution counts books per genre. Entries appear in the order
// each genre is first encountered; absent genres have no entry.
func GenreDistribution(books []types.Book) []GenreCount {
	index := make(map[string]int)
	var out []GenreCount
	for _, b := range books {
		i, ok := index[b.Genre]
		if !ok {
			i = len(out)
			index[b.Genre] = i
			out = append(out, GenreCount{Genre: b.Genre})
		}
		out[i].Count++
	}
	if out == nil {
		return []GenreCount{}
	}
	return out
}

// MostPopularGenre returns the genre with the most books. Ties go to the
// genre encountered first. An empty collection yields NoGenre.
func MostPopularGenre(books []types.Book) string {
	best, top := NoGenre, 0
	for _, gc := range GenreDistribution(books) {
		if gc.Count > top {
			best, top = gc.Genre, gc.Count
		}
	}
	return best
}

// YearHistogram counts books per year for the HistogramYears years ending at
// referenceYear, ascending. Every year in the window has a bucket, even when
// its count is zero. A book's year is its leading integer; a year without
// one counts toward no bucket.
func YearHistogram(books []types.Book, referenceYear int) []YearCount {
	first := referenceYear - HistogramYears + 1
	out := make([]YearCount, HistogramYears)
	for i := range out {
		out[i].Year = first + i
	}
	for _, b := range books {
		y, ok := LeadingInt(b.Year)
		if !ok || y < first || y > referenceYear {
			continue
		}
		out[y-first].Count++
	}
	return out
}

// LeadingInt parses the optionally signed run of digits at the start of s,
// after leading whitespace. "2020-05" yields 2020; "circa 2020" fails.
func LeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
