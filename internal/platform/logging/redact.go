package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// contentKeys are attribute keys whose values are what the user wrote:
// quote fields and search input.
var contentKeys = []string{"text", "title", "author", "q", "query", "pattern"}

// authValue matches credentials in header form.
var authValue = regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`)

func secretOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("authorization"),
		masq.WithFieldName("cookie"),
		masq.WithFieldName("password"),
		masq.WithFieldName("token"),
		masq.WithFieldName("api_key"),
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(authValue),
	}
}

// RedactOptions returns the masq options applied by every logger built here.
// Credentials are always masked; quote content only when content is true.
func RedactOptions(content bool) []masq.Option {
	opts := secretOptions()

	if content {
		for _, key := range contentKeys {
			opts = append(opts, masq.WithFieldName(key))
		}
	}

	return opts
}

// NewReplaceAttr returns a slog ReplaceAttr that applies RedactOptions and
// any extra options.
func NewReplaceAttr(content bool, extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(RedactOptions(content), extra...)...)
}
