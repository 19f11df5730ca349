package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// BookFields are the user-editable fields of a Book. Year is free text; it
// is usually numeric but nothing enforces that.
type BookFields struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Year        string `json:"year"`
	Genre       string `json:"genre"`
	Description string `json:"description,omitempty"`
}

// Book is a catalog entry. Author is a free-text name, not a reference to
// an Author record.
type Book struct {
	ID string `json:"id"`
	BookFields
}

// UnmarshalJSON accepts year as either a JSON string or a JSON number.
// Books imported by older versions stored the publish year as a number.
func (b *Book) UnmarshalJSON(data []byte) error {
	type alias Book
	aux := struct {
		*alias
		Year json.RawMessage `json:"year,omitempty"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	year, err := looseString(aux.Year)
	if err != nil {
		return fmt.Errorf("book %s year: %w", b.ID, err)
	}
	b.Year = year
	return nil
}

// AuthorFields are the user-editable fields of an Author. Everything except
// Name is optional.
type AuthorFields struct {
	Name        string `json:"name"`
	Nationality string `json:"nationality,omitempty"`
	BirthYear   string `json:"birthYear,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// Author is a registered author.
type Author struct {
	ID string `json:"id"`
	AuthorFields
}

// UnmarshalJSON accepts birthYear as either a JSON string or a JSON number.
func (a *Author) UnmarshalJSON(data []byte) error {
	type alias Author
	aux := struct {
		*alias
		BirthYear json.RawMessage `json:"birthYear,omitempty"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	birth, err := looseString(aux.BirthYear)
	if err != nil {
		return fmt.Errorf("author %s birthYear: %w", a.ID, err)
	}
	a.BirthYear = birth
	return nil
}

// looseString decodes a JSON string or number into its string form. Absent
// and null values decode to "".
func looseString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Catalog is the aggregate of all Book and Author records. Books keep a
// mutable order; authors keep insertion order.
type Catalog struct {
	Books   []Book
	Authors []Author
}

// Clone returns a deep copy whose slices do not alias c.
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Books:   make([]Book, len(c.Books)),
		Authors: make([]Author, len(c.Authors)),
	}
	copy(out.Books, c.Books)
	copy(out.Authors, c.Authors)
	return out
}

// Empty reports whether the catalog has neither books nor authors.
func (c Catalog) Empty() bool {
	return len(c.Books) == 0 && len(c.Authors) == 0
}
