package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t1 = time.Date(2020, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 = time.Date(2021, 7, 4, 18, 30, 0, 0, time.UTC)
)

// scenarioQuotes returns the Goethe/Horace pair already in display order.
func scenarioQuotes() []Quote {
	return []Quote{
		{ID: "horace", Text: Ptr("Carpe diem"), Author: Ptr("Horace"), Title: Ptr("Odes"), DateCreated: t2},
		{ID: "goethe", Text: Ptr("Be bold"), Author: Ptr("Goethe"), Title: Ptr("Faust"), DateCreated: t1},
	}
}

func ids(quotes []Quote) []string {
	out := make([]string, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, q.ID)
	}

	return out
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Café", "cafe"},
		{"CAFÉ", "cafe"},
		{"cafe\u0301", "cafe"},
		{"Ærøskøbing", "ærøskøbing"},
		{"Straße", "strasse"},
		{"İstanbul", "istanbul"},
		{"Crème Brûlée", "creme brulee"},
		{"naïve", "naive"},
		{"100% *literal*", "100% *literal*"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestFilter_EmptyPatternReturnsInput(t *testing.T) {
	quotes := scenarioQuotes()

	got := Filter(quotes, "")

	assert.Equal(t, quotes, got)
	assert.Equal(t, []string{"horace", "goethe"}, ids(got))
}

func TestFilter_EmptyPatternOnNil(t *testing.T) {
	assert.Nil(t, Filter(nil, ""))
	assert.Empty(t, Filter(nil, "x"))
}

func TestFilter_Scenario(t *testing.T) {
	quotes := scenarioQuotes()

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"upper case text match", "BOLD", []string{"goethe"}},
		{"author match", "hora", []string{"horace"}},
		{"title match", "faust", []string{"goethe"}},
		{"matches both", "e", []string{"horace", "goethe"}},
		{"no match", "seneca", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(quotes, tt.pattern)))
		})
	}
}

func TestFilter_DiacriticInsensitive(t *testing.T) {
	quotes := []Quote{
		{ID: "society", Text: Ptr("Café society")},
		{ID: "plain", Text: Ptr("Cafe au lait")},
		{ID: "other", Text: Ptr("Tea time")},
	}

	assert.Equal(t, []string{"society", "plain"}, ids(Filter(quotes, "café")))
	assert.Equal(t, []string{"society", "plain"}, ids(Filter(quotes, "CAFE")))
}

func TestFilter_LiteralMetacharacters(t *testing.T) {
	quotes := []Quote{
		{ID: "star", Text: Ptr("a*b")},
		{ID: "ab", Text: Ptr("aXXb")},
		{ID: "percent", Text: Ptr("100% sure")},
		{ID: "under", Text: Ptr("snake_case")},
		{ID: "regex", Text: Ptr("[a-z]+ matches?")},
		{ID: "backslash", Text: Ptr(`C:\path`)},
	}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"a*b", []string{"star"}},
		{"%", []string{"percent"}},
		{"_", []string{"under"}},
		{"[a-z]+", []string{"regex"}},
		{"?", []string{"regex"}},
		{".", []string{}},
		{`\`, []string{"backslash"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(quotes, tt.pattern)))
		})
	}
}

func TestFilter_AbsentFieldsNeverMatch(t *testing.T) {
	quotes := []Quote{
		{ID: "empty"},
		{ID: "title-only", Title: Ptr("Meditations")},
	}

	assert.Equal(t, []string{"title-only"}, ids(Filter(quotes, "med")))
	assert.Empty(t, Filter(quotes, "nil"))
}

func TestFilter_PreservesOrderAndMembership(t *testing.T) {
	quotes := []Quote{
		{ID: "1", Text: Ptr("Alpha"), Author: Ptr("Zed")},
		{ID: "2", Text: Ptr("Beta")},
		{ID: "3", Author: Ptr("álpha")},
		{ID: "4", Title: Ptr("Gamma")},
		{ID: "5", Title: Ptr("ALPHABET")},
	}

	for _, pattern := range []string{"alpha", "a", "zed", "ALP", "β", "bet"} {
		got := Filter(quotes, pattern)

		// Every survivor matches, every dropped quote does not.
		kept := make(map[string]bool, len(got))
		for _, q := range got {
			kept[q.ID] = true
			assert.True(t, q.matches(Fold(pattern)), "pattern %q id %s", pattern, q.ID)
		}

		for _, q := range quotes {
			if !kept[q.ID] {
				assert.False(t, q.matches(Fold(pattern)), "pattern %q id %s", pattern, q.ID)
			}
		}

		// Survivors keep their relative order.
		last := -1
		for _, q := range got {
			idx := indexOf(quotes, q.ID)
			require.Greater(t, idx, last)
			last = idx
		}
	}
}

func TestFilter_RepeatedCallsAreStateless(t *testing.T) {
	quotes := scenarioQuotes()
	first := Filter(quotes, "bold")

	for range 50 {
		assert.Equal(t, first, Filter(quotes, "bold"))
	}

	assert.Equal(t, scenarioQuotes(), quotes, "input must not be modified")
}

func TestFilter_PatternOfOnlyMarksMatchesAll(t *testing.T) {
	quotes := scenarioQuotes()

	assert.Equal(t, []string{"horace", "goethe"}, ids(Filter(quotes, "\u0301")))
}

func indexOf(quotes []Quote, id string) int {
	for i, q := range quotes {
		if q.ID == id {
			return i
		}
	}

	return -1
}
