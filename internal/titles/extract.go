// Package titles turns the assistant's free-text reply into a clean list
// of movie titles. Model output is fuzzy: numbered lists, bullets,
// markdown emphasis, and the occasional prose line all show up, so the
// normalization here is deliberately deterministic and tested directly.
package titles

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minTitleLen filters out stray punctuation and single-letter noise.
const minTitleLen = 3

var (
	// Leading list markers: "1.", "2)", or a bullet (-, *, •) followed by
	// whitespace, possibly repeated. Bullets require the whitespace so a
	// "*" that opens markdown emphasis is left for the emphasis pass.
	listMarker = regexp.MustCompile(`^(\d+[.)]\s*|[-*•]\s+)+`)
	// Paired markdown emphasis or code around the whole line.
	emphasis = regexp.MustCompile("^(\\*\\*|\\*|__|_|`)(.*?)(\\*\\*|\\*|__|_|`)$")
)

// Parse extracts up to max distinct titles from the assistant's raw
// response, preserving presentation order (the model's implicit ranking;
// no re-ranking happens here). Normalization per line:
//
//  1. trim whitespace
//  2. strip leading enumeration and bullet markers
//  3. strip paired markdown emphasis and backticks
//  4. drop intro lines ending in a colon, trim trailing sentence
//     punctuation (. , ;)
//
// Lines that normalize to fewer than 3 runes are dropped, as are
// duplicates (case-insensitive, first occurrence wins). A result with
// zero titles is valid: the assistant may legitimately have found
// nothing.
func Parse(raw string, max int) []string {
	if max <= 0 {
		max = 10
	}

	seen := make(map[string]struct{})
	var out []string

	for _, line := range strings.Split(raw, "\n") {
		title := normalizeLine(line)
		if utf8.RuneCountInString(title) < minTitleLen {
			continue
		}

		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, title)
		if len(out) == max {
			break
		}
	}

	return out
}

func normalizeLine(line string) string {
	s := strings.TrimSpace(line)
	s = listMarker.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	// Strip emphasis repeatedly so "**_Title_**" unwraps fully.
	for {
		m := emphasis.FindStringSubmatch(s)
		if m == nil || m[1] != m[3] {
			break
		}
		s = m[2]
	}

	// A line ending in a colon is an intro like "Here are your picks:",
	// not a title.
	if strings.HasSuffix(s, ":") {
		return ""
	}

	s = strings.TrimRight(s, ".,; ")
	return strings.TrimSpace(s)
}
