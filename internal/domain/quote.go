// Package domain contains core business entities and rules.
package domain

import (
	"fmt"
	"time"
)

// Quote is a single saved quotation.
// Text, Title and Author are optional: a nil pointer means the field was never
// set, which is different from an empty string when the quote is projected for
// the widget.
type Quote struct {
	// ID is the store-assigned identity.
	ID string

	// Text is the quoted passage.
	Text *string

	// Title names the work the quote comes from.
	Title *string

	// Author is who said or wrote the quote.
	Author *string

	// MediaType is the raw media code as stored. Use Media() to resolve it.
	MediaType int

	// DateCreated is when the quote was saved. The zero time means absent.
	DateCreated time.Time
}

// TextOrEmpty returns the text, or "" when absent.
func (q Quote) TextOrEmpty() string { return deref(q.Text) }

// TitleOrEmpty returns the title, or "" when absent.
func (q Quote) TitleOrEmpty() string { return deref(q.Title) }

// AuthorOrEmpty returns the author, or "" when absent.
func (q Quote) AuthorOrEmpty() string { return deref(q.Author) }

// Media resolves the stored media code, falling back to MediaBook.
func (q Quote) Media() MediaType {
	return MediaTypeFromCode(q.MediaType)
}

// HasDate reports whether DateCreated is set.
func (q Quote) HasDate() bool {
	return !q.DateCreated.IsZero()
}

// NewQuote carries the fields supplied by the creation flow.
type NewQuote struct {
	Text        *string
	Title       *string
	Author      *string
	MediaType   MediaType
	DateCreated time.Time
}

// Validate checks the creation input. A quote needs at least one of text,
// title or author; otherwise there is nothing to show or search.
func (n NewQuote) Validate() error {
	if deref(n.Text) == "" && deref(n.Title) == "" && deref(n.Author) == "" {
		return NewValidationError("text", "one of text, title or author is required")
	}

	if !n.MediaType.Valid() {
		return NewValidationError("mediaType", fmt.Sprintf("unknown media type %d", int(n.MediaType)))
	}

	return nil
}

// Quote builds the entity to hand to the store. The store assigns the ID.
func (n NewQuote) Quote() Quote {
	return Quote{
		Text:        n.Text,
		Title:       n.Title,
		Author:      n.Author,
		MediaType:   int(n.MediaType),
		DateCreated: n.DateCreated,
	}
}

// Ptr returns a pointer to s. Handy for building optional quote fields.
func Ptr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
