package domain

import (
	"time"
)

// Placeholders used when a quote field is absent at projection time.
const (
	DefaultWidgetText   = "Default Text"
	DefaultWidgetTitle  = "Default Title"
	DefaultWidgetAuthor = "Default Author"
)

// WidgetContent is the compact public shape of a quote read by the home-screen
// widget. It has no identity and is rebuilt from scratch on every sync.
type WidgetContent struct {
	Date   time.Time
	Text   string
	Title  string
	Author string
}

// ProjectWidgetContent converts quotes to widget entries in the same order.
// Absent fields get the Default* placeholders and an absent date becomes now.
// A present but empty string is kept as is.
func ProjectWidgetContent(quotes []Quote, now time.Time) []WidgetContent {
	out := make([]WidgetContent, 0, len(quotes))

	for _, q := range quotes {
		date := q.DateCreated
		if date.IsZero() {
			date = now
		}

		out = append(out, WidgetContent{
			Date:   date,
			Text:   valueOr(q.Text, DefaultWidgetText),
			Title:  valueOr(q.Title, DefaultWidgetTitle),
			Author: valueOr(q.Author, DefaultWidgetAuthor),
		})
	}

	return out
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}

	return *s
}
