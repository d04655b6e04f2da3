package assistant

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Ask submits prompt to the assistant on a fresh thread and returns the
// raw response text. A single synchronous exchange: no multi-turn
// refinement. Retrieval over the vector store happens server-side via the
// assistant's file_search tool.
func (c *Client) Ask(ctx context.Context, assistantID, prompt string) (string, error) {
	var thread threadObject
	if err := c.doJSON(ctx, http.MethodPost, "/threads", struct{}{}, &thread); err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}

	msg := createMessageRequest{Role: "user", Content: prompt}
	if err := c.doJSON(ctx, http.MethodPost, "/threads/"+thread.ID+"/messages", msg, nil); err != nil {
		return "", fmt.Errorf("posting message: %w", err)
	}

	var run runObject
	if err := c.doJSON(ctx, http.MethodPost, "/threads/"+thread.ID+"/runs", createRunRequest{AssistantID: assistantID}, &run); err != nil {
		return "", fmt.Errorf("starting run: %w", err)
	}

	run, err := c.waitForRun(ctx, thread.ID, run.ID)
	if err != nil {
		return "", err
	}
	if run.Status != "completed" {
		return "", fmt.Errorf("assistant run ended with status %q", run.Status)
	}

	var msgs messageList
	if err := c.doJSON(ctx, http.MethodGet, "/threads/"+thread.ID+"/messages", nil, &msgs); err != nil {
		return "", fmt.Errorf("fetching run output: %w", err)
	}
	for _, m := range msgs.Data {
		if m.Role != "assistant" {
			continue
		}
		for _, part := range m.Content {
			if part.Type == "text" && part.Text != nil {
				return part.Text.Value, nil
			}
		}
	}
	return "", fmt.Errorf("assistant returned no text content")
}

// waitForRun polls the run until it reaches a terminal status or the
// run limit elapses.
func (c *Client) waitForRun(ctx context.Context, threadID, runID string) (runObject, error) {
	deadline := time.Now().Add(c.runLimit)

	for {
		var run runObject
		if err := c.doJSON(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &run); err != nil {
			return runObject{}, fmt.Errorf("polling run: %w", err)
		}

		switch run.Status {
		case "completed", "failed", "cancelled", "expired":
			return run, nil
		}

		if time.Now().After(deadline) {
			return runObject{}, fmt.Errorf("assistant run %s timed out after %s", runID, c.runLimit)
		}

		select {
		case <-ctx.Done():
			return runObject{}, ctx.Err()
		case <-time.After(c.runPoll):
		}
	}
}
