package dto

import (
	"time"

	"github.com/EcMscS/Footnote/internal/domain"
)

// ListQuotesRequest is the query string of GET /quotes.
type ListQuotesRequest struct {
	PageRequest

	// Query is the free-text filter. Empty lists every quote.
	Query string `form:"q" json:"q" validate:"max=500"`
}

// CreateQuoteRequest is the body of POST /quotes. Omitted text, title and
// author stay absent; an explicit "" is stored as empty.
type CreateQuoteRequest struct {
	Text        *string    `json:"text" validate:"omitempty,max=10000"`
	Title       *string    `json:"title" validate:"omitempty,max=1000"`
	Author      *string    `json:"author" validate:"omitempty,max=1000"`
	MediaType   string     `json:"mediaType" validate:"omitempty,oneof=book movie tv music podcast article speech other"`
	DateCreated *time.Time `json:"dateCreated"`
}

// ToDomain converts the request to creation input. An omitted dateCreated
// is stamped with the current time by the service; an explicit zero time is
// rejected, since it could not be told apart from an omitted one.
func (r *CreateQuoteRequest) ToDomain() (domain.NewQuote, error) {
	if r.DateCreated != nil && r.DateCreated.IsZero() {
		return domain.NewQuote{}, domain.NewValidationError("dateCreated", "must not be the zero time")
	}

	media, err := domain.ParseMediaType(r.MediaType)
	if err != nil {
		return domain.NewQuote{}, err
	}

	in := domain.NewQuote{
		Text:      r.Text,
		Title:     r.Title,
		Author:    r.Author,
		MediaType: media,
	}
	if r.DateCreated != nil {
		in.DateCreated = r.DateCreated.UTC()
	}

	return in, nil
}

// DeleteAtRequest is the body of POST /quotes/delete. Positions index the
// list displayed for Query, counted from zero over the whole filtered list.
type DeleteAtRequest struct {
	Query     string `json:"q" validate:"max=500"`
	Positions []int  `json:"positions" validate:"required,min=1,max=100,dive,gte=0"`
}

// QuoteResponse is a quote as returned by the API. Absent fields are null.
type QuoteResponse struct {
	ID          string     `json:"id"`
	Text        *string    `json:"text"`
	Title       *string    `json:"title"`
	Author      *string    `json:"author"`
	MediaType   string     `json:"mediaType"`
	DateCreated *time.Time `json:"dateCreated"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	resp := QuoteResponse{
		ID:        q.ID,
		Text:      q.Text,
		Title:     q.Title,
		Author:    q.Author,
		MediaType: q.Media().String(),
	}
	if q.HasDate() {
		date := q.DateCreated.UTC()
		resp.DateCreated = &date
	}

	return resp
}

// NewQuoteResponses converts a slice of domain quotes, never returning nil.
func NewQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, NewQuoteResponse(q))
	}

	return out
}

// DeleteAtResponse lists the quotes removed by a positional delete.
type DeleteAtResponse struct {
	Deleted []QuoteResponse `json:"deleted"`
}

// WidgetEntryResponse is one decoded entry of the widget slot.
type WidgetEntryResponse struct {
	Date   time.Time `json:"date"`
	Text   string    `json:"text"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
}

// WidgetResponse is the decoded content of the widget slot.
type WidgetResponse struct {
	Key     string                `json:"key"`
	Entries []WidgetEntryResponse `json:"entries"`
}

// NewWidgetResponse converts decoded widget entries.
func NewWidgetResponse(key string, entries []domain.WidgetContent) WidgetResponse {
	out := make([]WidgetEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, WidgetEntryResponse{
			Date:   e.Date.UTC(),
			Text:   e.Text,
			Title:  e.Title,
			Author: e.Author,
		})
	}

	return WidgetResponse{Key: key, Entries: out}
}
