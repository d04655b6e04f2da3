package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload the movie library to the assistant",
	Long: `Upload the movie library to the assistant's vector store.

The server fetches every movie in the configured Plex library, renders a
catalog document with watched status, and replaces the previous snapshot
in the assistant's vector store. The work runs in the background; watch
the server log for completion.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/sync")
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("%s (task %s)", result["message"], result["task_id"])
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Ask the assistant for movie recommendations",
	Long: `Ask the assistant for unwatched movie recommendations.

Runs the full pipeline: viewing history, assistant query, playlist
creation and Telegram notification. With --async the server answers
immediately and delivers in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		async, _ := cmd.Flags().GetBool("async")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/recommend"
		if async {
			path += "?async=true"
		}

		resp, err := client.post(cmd.Context(), path)
		if err != nil {
			return err
		}

		if async {
			var result map[string]string
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}
			printSuccess("%s (task %s)", result["message"], result["task_id"])
			return nil
		}

		var result struct {
			Message         string   `json:"message"`
			Titles          []string `json:"titles"`
			PlaylistCreated bool     `json:"playlist_created"`
			TelegramSent    bool     `json:"telegram_sent"`
			NotFound        int      `json:"titles_not_found"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("%s", result.Message)
		for i, title := range result.Titles {
			fmt.Printf("  %2d. %s\n", i+1, title)
		}
		if result.PlaylistCreated {
			printStep("playlist updated")
		}
		if result.TelegramSent {
			printStep("telegram notification sent")
		}
		if result.NotFound > 0 {
			printWarning("%d recommended titles were not found in the library", result.NotFound)
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().Bool("async", false, "run in the background and return immediately")
}
