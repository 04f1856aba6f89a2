package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote_OrEmptyAccessors(t *testing.T) {
	q := Quote{Text: Ptr("Know thyself")}

	assert.Equal(t, "Know thyself", q.TextOrEmpty())
	assert.Empty(t, q.TitleOrEmpty())
	assert.Empty(t, q.AuthorOrEmpty())
	assert.False(t, q.HasDate())
}

func TestNewQuote_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   NewQuote
		wantErr bool
	}{
		{"text only", NewQuote{Text: Ptr("x")}, false},
		{"author only", NewQuote{Author: Ptr("Seneca")}, false},
		{"all absent", NewQuote{}, true},
		{"all empty", NewQuote{Text: Ptr(""), Title: Ptr(""), Author: Ptr("")}, true},
		{"bad media", NewQuote{Text: Ptr("x"), MediaType: MediaType(99)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewQuote_Quote(t *testing.T) {
	at := time.Date(2019, 12, 10, 0, 0, 0, 0, time.UTC)
	n := NewQuote{Text: Ptr("t"), Title: Ptr("ti"), Author: Ptr("a"), MediaType: MediaMusic, DateCreated: at}

	q := n.Quote()

	assert.Empty(t, q.ID)
	assert.Equal(t, "t", q.TextOrEmpty())
	assert.Equal(t, int(MediaMusic), q.MediaType)
	assert.Equal(t, at, q.DateCreated)
}
