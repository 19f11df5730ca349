package query

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// SortKey names a supported ordering of books.
type SortKey string

// Supported sort keys.
const (
	TitleAsc  SortKey = "title-asc"
	TitleDesc SortKey = "title-desc"
	YearAsc   SortKey = "year-asc"
	YearDesc  SortKey = "year-desc"
	AuthorAsc SortKey = "author-asc"
)

// SortKeys lists every supported key, in display order.
var SortKeys = []SortKey{TitleAsc, TitleDesc, YearAsc, YearDesc, AuthorAsc}

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "fr"

// ParseSortKey validates s. Returns types.ErrInvalidSortKey for unknown keys.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortKeys, k) {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", types.ErrInvalidSortKey, s)
}

// Sorter orders books. Text comparisons follow the collation rules of its
// locale; year comparisons are numeric.
type Sorter struct {
	tag language.Tag
}

// NewSorter returns a Sorter for the given BCP 47 locale. An empty or
// unparseable locale falls back to DefaultLocale.
func NewSorter(locale string) *Sorter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Sorter{tag: tag}
}

// Locale returns the sorter's language tag.
func (s *Sorter) Locale() string { return s.tag.String() }

// Sort returns a sorted copy of books. The sort is stable: books that
// compare equal keep their relative order. Books whose year is not numeric
// sort after every book with a numeric year, in both year directions.
func (s *Sorter) Sort(books []types.Book, key SortKey) ([]types.Book, error) {
	out := slices.Clone(books)
	// A collator holds scratch buffers, so each call gets its own.
	col := collate.New(s.tag)

	var cmp func(a, b types.Book) int
	switch key {
	case TitleAsc:
		cmp = func(a, b types.Book) int { return col.CompareString(a.Title, b.Title) }
	case TitleDesc:
		cmp = func(a, b types.Book) int { return col.CompareString(b.Title, a.Title) }
	case AuthorAsc:
		cmp = func(a, b types.Book) int { return col.CompareString(a.Author, b.Author) }
	case YearAsc:
		cmp = func(a, b types.Book) int { return compareYears(a.Year, b.Year, false) }
	case YearDesc:
		cmp = func(a, b types.Book) int { return compareYears(a.Year, b.Year, true) }
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidSortKey, key)
	}
	slices.SortStableFunc(out, cmp)
	return out, nil
}

// compareYears orders numeric years ascending (or descending) and places
// non-numeric years last.
func compareYears(a, b string, desc bool) int {
	ya, okA := NumericYear(a)
	yb, okB := NumericYear(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	c := 0
	switch {
	case ya < yb:
		c = -1
	case ya > yb:
		c = 1
	}
	if desc {
		return -c
	}
	return c
}

// NumericYear parses year as a decimal number. Surrounding whitespace is
// ignored. The empty string, NaN and infinities are not numeric.
func NumericYear(year string) (float64, bool) {
	s := strings.TrimSpace(year)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
