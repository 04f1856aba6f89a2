package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/EcMscS/Footnote/internal/domain"
)

// Page sizes for GET /quotes.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidCursor is returned for a cursor this server did not issue.
var ErrInvalidCursor = errors.New("invalid cursor")

// PageRequest selects one window of the filtered list.
type PageRequest struct {
	// Cursor is the NextCursor of the previous page. Empty starts at the top.
	Cursor string `form:"cursor" json:"cursor"`

	// Limit is the page size, 1 to 100. Zero means DefaultLimit.
	Limit int `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// PageSize returns Limit clamped to the allowed range.
func (p PageRequest) PageSize() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// Cursor marks the end of a served page: the last quote shown and the
// position the next page starts at.
type Cursor struct {
	After    string `json:"a"`
	Position int    `json:"p"`
}

// Encode returns the opaque, URL-safe form handed to clients.
func (c Cursor) Encode() string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor decodes a cursor from a previous page. The empty string is the
// zero Cursor, which resumes at the first quote.
func ParseCursor(s string) (Cursor, error) {
	var c Cursor
	if s == "" {
		return c, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	if err := json.Unmarshal(raw, &c); err != nil || c.Position < 0 {
		return Cursor{}, ErrInvalidCursor
	}

	return c, nil
}

// Resume returns the index in quotes where the next page starts. The last
// quote shown is looked up by ID so pages stay aligned when quotes are saved
// or deleted in between; once it is gone the stored position is used.
func (c Cursor) Resume(quotes []domain.Quote) int {
	if c.After != "" {
		for i, q := range quotes {
			if q.ID == c.After {
				return i + 1
			}
		}
	}

	return min(c.Position, len(quotes))
}

// QuotePage is one page of the filtered list.
type QuotePage struct {
	Items []QuoteResponse `json:"items"`

	// Total counts every quote matching the filter, across all pages.
	Total int `json:"total"`

	// NextCursor is empty on the last page.
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// NewQuotePage cuts the page of size limit starting at start out of the
// filtered list.
func NewQuotePage(quotes []domain.Quote, start, limit int) QuotePage {
	start = min(max(start, 0), len(quotes))
	end := min(start+limit, len(quotes))

	page := QuotePage{
		Items:   NewQuoteResponses(quotes[start:end]),
		Total:   len(quotes),
		HasMore: end < len(quotes),
	}

	if page.HasMore && end > start {
		page.NextCursor = Cursor{After: quotes[end-1].ID, Position: end}.Encode()
	}

	return page
}
