package catalog

import "strings"

// Item is a single movie from the media library with the metadata the
// assistant needs to reason about it. Items are built once per fetch and
// never mutated afterwards.
type Item struct {
	Title     string   `json:"title"`
	Year      int      `json:"year"`
	Director  string   `json:"director"`
	Genre     string   `json:"genre"`
	Plot      string   `json:"plot"`
	Actors    []string `json:"actors"`
	Rating    float64  `json:"rating"`
	Watched   bool     `json:"-"`
	RatingKey string   `json:"ratingKey"`
}

// Status renders the watched flag the way the corpus and the assistant
// prompt expect it.
func (it Item) Status() string {
	if it.Watched {
		return "Watched"
	}
	return "Unwatched"
}

// NormalizeTitle folds a title for exact-match lookups: lowercased with
// surrounding whitespace removed. Both sides of a comparison must go
// through this, the library index and the assistant's output alike.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
