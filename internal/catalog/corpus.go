package catalog

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// corpusEntry is the serialized form of an Item inside the corpus
// document. The watched flag is rendered as a status string so the
// assistant's "status='Unwatched'" constraint matches the stored records
// verbatim.
type corpusEntry struct {
	Title     string  `json:"title"`
	Year      int     `json:"year"`
	Director  string  `json:"director"`
	Genre     string  `json:"genre"`
	Plot      string  `json:"plot"`
	Actors    string  `json:"actors"`
	Rating    float64 `json:"rating"`
	Status    string  `json:"status"`
	RatingKey string  `json:"ratingKey"`
}

// Document is the full catalog serialized as one artifact, ready for
// upload to the retrieval store. A new Document fully supersedes the
// previous one; there is no partial merge.
type Document struct {
	Name    string
	Content []byte
	Count   int
}

// BuildCorpus serializes the catalog into a single JSON document in
// library order. Missing optional metadata has already been mapped to
// placeholder values by the fetcher, so every entry carries all fields.
func BuildCorpus(items []Item) (Document, error) {
	entries := make([]corpusEntry, len(items))
	for i, it := range items {
		entries[i] = corpusEntry{
			Title:     it.Title,
			Year:      it.Year,
			Director:  it.Director,
			Genre:     it.Genre,
			Plot:      it.Plot,
			Actors:    strings.Join(it.Actors, ", "),
			Rating:    it.Rating,
			Status:    it.Status(),
			RatingKey: it.RatingKey,
		}
	}

	content, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return Document{}, fmt.Errorf("marshaling corpus: %w", err)
	}

	return Document{
		Name:    "movies_library.json",
		Content: content,
		Count:   len(entries),
	}, nil
}

// HistoryContext renders a recently-watched window as the bullet list the
// recommendation prompt embeds, most recent first.
func HistoryContext(items []Item) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("- %s (%d) - Director: %s, Género: %s", it.Title, it.Year, it.Director, it.Genre))
	}
	return strings.Join(lines, "\n")
}
