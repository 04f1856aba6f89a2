package domain

import (
	"fmt"
	"strings"
)

// MediaType classifies the source of a quote.
type MediaType int

const (
	MediaBook MediaType = iota
	MediaMovie
	MediaTV
	MediaMusic
	MediaPodcast
	MediaArticle
	MediaSpeech
	MediaOther
)

var mediaNames = [...]string{
	MediaBook:    "book",
	MediaMovie:   "movie",
	MediaTV:      "tv",
	MediaMusic:   "music",
	MediaPodcast: "podcast",
	MediaArticle: "article",
	MediaSpeech:  "speech",
	MediaOther:   "other",
}

// Valid reports whether m is a known media code.
func (m MediaType) Valid() bool {
	return m >= MediaBook && int(m) < len(mediaNames)
}

// String returns the lowercase name of the media type.
func (m MediaType) String() string {
	if !m.Valid() {
		return mediaNames[MediaBook]
	}

	return mediaNames[m]
}

// MediaTypeFromCode maps a stored integer code to a MediaType.
// Unknown codes resolve to MediaBook.
func MediaTypeFromCode(code int) MediaType {
	m := MediaType(code)
	if !m.Valid() {
		return MediaBook
	}

	return m
}

// ParseMediaType maps a name such as "movie" to its MediaType.
// The empty string resolves to MediaBook.
func ParseMediaType(name string) (MediaType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return MediaBook, nil
	}

	for i, n := range mediaNames {
		if n == name {
			return MediaType(i), nil
		}
	}

	return MediaBook, NewValidationError("mediaType", fmt.Sprintf("unknown media type %q", name))
}
