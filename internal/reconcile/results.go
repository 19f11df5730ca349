// Package reconcile turns OpenLibrary search responses into import
// candidates and maps a chosen candidate into a catalog book.
package reconcile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// Import placeholders for fields the external source did not report.
const (
	UnknownTitle  = "Unknown title"
	UnknownAuthor = "Unknown author"
	UnknownYear   = "Unknown"
	ImportGenre   = "Other"

	// MaxDescriptionSubjects bounds the subjects copied into a description.
	MaxDescriptionSubjects = 5
)

// Candidate is one externally reported book, fields as reported.
type Candidate struct {
	Key              string   `json:"key,omitempty"`
	Title            string   `json:"title,omitempty"`
	Authors          []string `json:"author_name,omitempty"`
	FirstPublishYear *int     `json:"first_publish_year,omitempty"`
	Subjects         []string `json:"subject,omitempty"`
}

// Results is one parsed page of an external search.
type Results struct {
	// TotalFound is the server's total match count, not the page size.
	TotalFound    int         `json:"totalFound"`
	Candidates    []Candidate `json:"candidates"`
	UniqueAuthors []string    `json:"uniqueAuthors"`
}

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []Candidate `json:"docs"`
}

// ParseSearchResults decodes a search.json body. A body that is not a JSON
// object, or whose fields have the wrong types, is an error; the zero
// Results is returned with it.
func ParseSearchResults(raw []byte) (Results, error) {
	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Results{}, fmt.Errorf("decoding search response: %w", err)
	}
	if resp.Docs == nil {
		resp.Docs = []Candidate{}
	}
	return Results{
		TotalFound:    resp.NumFound,
		Candidates:    resp.Docs,
		UniqueAuthors: UniqueAuthors(resp.Docs),
	}, nil
}

// UniqueAuthors collects the distinct author names across candidates in
// first-seen order. Names are trimmed, empty names are dropped, and
// comparison is case-sensitive.
func UniqueAuthors(candidates []Candidate) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, c := range candidates {
		for _, name := range c.Authors {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// BookFields maps a candidate to the fields of a new book. Author names are
// trimmed and blank ones dropped before joining.
func (c Candidate) BookFields() types.BookFields {
	authors := make([]string, 0, len(c.Authors))
	for _, name := range c.Authors {
		if name = strings.TrimSpace(name); name != "" {
			authors = append(authors, name)
		}
	}
	f := types.BookFields{
		Title:  c.Title,
		Author: strings.Join(authors, ", "),
		Year:   UnknownYear,
		Genre:  ImportGenre,
	}
	if f.Title == "" {
		f.Title = UnknownTitle
	}
	if len(authors) == 0 {
		f.Author = UnknownAuthor
	}
	if c.FirstPublishYear != nil && *c.FirstPublishYear != 0 {
		f.Year = strconv.Itoa(*c.FirstPublishYear)
	}
	if len(c.Subjects) > 0 {
		subjects := c.Subjects[:min(len(c.Subjects), MaxDescriptionSubjects)]
		f.Description = "Subjects: " + strings.Join(subjects, ", ")
	}
	return f
}

// BookAdder is the catalog operation an import goes through.
type BookAdder interface {
	AddBook(types.BookFields) (types.Book, error)
}

// ImportCandidate adds c to the catalog as a new book.
func ImportCandidate(adder BookAdder, c Candidate) (types.Book, error) {
	return adder.AddBook(c.BookFields())
}
