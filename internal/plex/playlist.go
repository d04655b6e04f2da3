package plex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// CreateOrReplacePlaylist creates a video playlist with the given name
// containing the items identified by ratingKeys, in order. Any existing
// playlist with the same name is deleted first, so re-running always
// yields a playlist matching the latest item set rather than an
// accumulation of past runs.
func (c *Client) CreateOrReplacePlaylist(ctx context.Context, name string, ratingKeys []string) error {
	if len(ratingKeys) == 0 {
		return fmt.Errorf("playlist %q: no items to add", name)
	}

	if err := c.deletePlaylistByName(ctx, name); err != nil {
		return err
	}

	machineID, err := c.machineIdentifier(ctx)
	if err != nil {
		return err
	}

	uri := fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/%s",
		machineID, strings.Join(ratingKeys, ","))

	query := url.Values{}
	query.Set("type", "video")
	query.Set("title", name)
	query.Set("smart", "0")
	query.Set("uri", uri)

	return c.doRequest(ctx, requestConfig{
		method:      http.MethodPost,
		path:        "/playlists",
		query:       query,
		expectNoErr: true,
	}, nil)
}

// deletePlaylistByName removes every playlist whose title matches name.
// A missing playlist is not an error.
func (c *Client) deletePlaylistByName(ctx context.Context, name string) error {
	var resp playlistsResponse
	if err := c.doJSONRequest(ctx, "/playlists", nil, &resp); err != nil {
		return err
	}

	for _, pl := range resp.MediaContainer.Metadata {
		if !strings.EqualFold(pl.Title, name) {
			continue
		}
		err := c.doRequest(ctx, requestConfig{
			method:      http.MethodDelete,
			path:        "/playlists/" + pl.RatingKey,
			expectNoErr: true,
		}, nil)
		if err != nil {
			return fmt.Errorf("deleting existing playlist %q: %w", name, err)
		}
	}
	return nil
}
