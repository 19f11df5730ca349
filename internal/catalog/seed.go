package catalog

import (
	"github.com/mesh-intelligence/bibliotheca/internal/ids"
	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// sampleBooks and sampleAuthors seed an empty catalog on first run.
var (
	sampleBooks = []types.BookFields{
		{
			Title:       "Le Petit Prince",
			Author:      "Antoine de Saint-Exupéry",
			Year:        "1943",
			Genre:       "Roman",
			Description: "Conte philosophique pour enfants et adultes",
		},
		{
			Title:       "1984",
			Author:      "George Orwell",
			Year:        "1949",
			Genre:       "Science-Fiction",
			Description: "Roman dystopique sur la surveillance totale",
		},
	}

	sampleAuthors = []types.AuthorFields{
		{
			Name:        "Antoine de Saint-Exupéry",
			Nationality: "Française",
			BirthYear:   "1900",
			Bio:         "Écrivain, poète, aviateur et reporter français",
		},
	}
)

// sampleData returns fresh copies of the sample records with new
// identifiers.
func sampleData(gen ids.Generator) ([]types.Book, []types.Author) {
	books := make([]types.Book, len(sampleBooks))
	for i, f := range sampleBooks {
		books[i] = types.Book{ID: gen.NewID(), BookFields: f}
	}
	authors := make([]types.Author, len(sampleAuthors))
	for i, f := range sampleAuthors {
		authors[i] = types.Author{ID: gen.NewID(), AuthorFields: f}
	}
	return books, authors
}
