package plex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jvaldes/plexcurator/internal/catalog"
)

// Placeholder values for metadata Plex did not provide. Absent fields
// never fail the pipeline.
const (
	unknownValue = "Unknown"
	noPlotValue  = "No plot available"
	maxActors    = 3
)

// sectionKey resolves a library name ("Movies") to its section key,
// caching the result.
func (c *Client) sectionKey(ctx context.Context, libraryName string) (string, error) {
	c.mu.Lock()
	cached, ok := c.sectionKeys[libraryName]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	var resp sectionsResponse
	if err := c.doJSONRequest(ctx, "/library/sections", nil, &resp); err != nil {
		return "", err
	}

	for _, dir := range resp.MediaContainer.Directory {
		if strings.EqualFold(dir.Title, libraryName) {
			c.mu.Lock()
			c.sectionKeys[libraryName] = dir.Key
			c.mu.Unlock()
			return dir.Key, nil
		}
	}
	return "", fmt.Errorf("plex library %q not found", libraryName)
}

// ListLibraryItems returns every item in the named library in library
// order, with the watched flag derived from viewCount > 0.
func (c *Client) ListLibraryItems(ctx context.Context, libraryName string) ([]catalog.Item, error) {
	key, err := c.sectionKey(ctx, libraryName)
	if err != nil {
		return nil, err
	}

	var resp contentResponse
	if err := c.doJSONRequest(ctx, "/library/sections/"+key+"/all", nil, &resp); err != nil {
		return nil, err
	}

	items := make([]catalog.Item, 0, len(resp.MediaContainer.Metadata))
	for _, md := range resp.MediaContainer.Metadata {
		items = append(items, toItem(md))
	}
	return items, nil
}

// ListRecentHistory returns the limit most recently viewed items of the
// named library, most recent first.
func (c *Client) ListRecentHistory(ctx context.Context, libraryName string, limit int) ([]catalog.Item, error) {
	key, err := c.sectionKey(ctx, libraryName)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("sort", "lastViewedAt:desc")
	query.Set("X-Plex-Container-Start", "0")
	query.Set("X-Plex-Container-Size", strconv.Itoa(limit))

	var resp contentResponse
	if err := c.doJSONRequest(ctx, "/library/sections/"+key+"/all", query, &resp); err != nil {
		return nil, err
	}

	items := make([]catalog.Item, 0, limit)
	for _, md := range resp.MediaContainer.Metadata {
		// Sorting by lastViewedAt puts never-viewed items at the tail;
		// only actually-viewed items belong in the history window.
		if md.LastViewedAt == 0 && md.ViewCount == 0 {
			continue
		}
		items = append(items, toItem(md))
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

// FindItemByTitle looks up a single item by exact title match, case
// normalized. The second return is false when no item matches.
func (c *Client) FindItemByTitle(ctx context.Context, libraryName, title string) (catalog.Item, bool, error) {
	key, err := c.sectionKey(ctx, libraryName)
	if err != nil {
		return catalog.Item{}, false, err
	}

	query := url.Values{}
	query.Set("title", title)

	var resp contentResponse
	if err := c.doJSONRequest(ctx, "/library/sections/"+key+"/all", query, &resp); err != nil {
		return catalog.Item{}, false, err
	}

	want := catalog.NormalizeTitle(title)
	for _, md := range resp.MediaContainer.Metadata {
		if catalog.NormalizeTitle(md.Title) == want {
			return toItem(md), true, nil
		}
	}
	return catalog.Item{}, false, nil
}

// toItem converts a Plex metadata record into a catalog item, mapping
// missing optional fields to placeholders.
func toItem(md metadata) catalog.Item {
	item := catalog.Item{
		Title:     md.Title,
		Year:      md.Year,
		Director:  joinTags(md.Director),
		Genre:     joinTags(md.Genre),
		Plot:      md.Summary,
		Rating:    md.Rating,
		Watched:   md.ViewCount > 0,
		RatingKey: md.RatingKey,
	}
	if item.Plot == "" {
		item.Plot = noPlotValue
	}
	for i, role := range md.Role {
		if i == maxActors {
			break
		}
		item.Actors = append(item.Actors, role.Tag)
	}
	if len(item.Actors) == 0 {
		item.Actors = []string{unknownValue}
	}
	return item
}

func joinTags(tags []tag) string {
	if len(tags) == 0 {
		return unknownValue
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = t.Tag
	}
	return strings.Join(parts, ", ")
}
