package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jvaldes/plexcurator/internal/catalog"
)

// curatorInstructions is the system persona the assistant is created
// with. It restates the unwatched constraint so the model carries it even
// when a prompt is terse.
const curatorInstructions = "Eres un curador experto de cine con un profundo conocimiento de películas, " +
	"directores, géneros y estilos cinematográficos. Tu trabajo es analizar el " +
	"historial de visualización del usuario y recomendar películas NO VISTAS que " +
	"continúen con la misma vibra, tono o estilo. Considera no solo los géneros, " +
	"sino también el ritmo, la dirección, la atmósfera y los temas. Recomienda " +
	"SOLO películas que tengan status='Unwatched'."

// EnsureAssistant returns the ID of the curator assistant, creating it
// with file search enabled if no assistant with the configured name
// exists yet.
func (c *Client) EnsureAssistant(ctx context.Context) (string, error) {
	var list assistantList
	if err := c.doJSON(ctx, http.MethodGet, "/assistants?limit=100", nil, &list); err != nil {
		return "", fmt.Errorf("listing assistants: %w", err)
	}
	for _, a := range list.Data {
		if a.Name == c.assistantName {
			return a.ID, nil
		}
	}

	slog.Info("creating assistant", "name", c.assistantName, "model", c.model)
	var created assistantObject
	req := createAssistantRequest{
		Name:         c.assistantName,
		Instructions: curatorInstructions,
		Model:        c.model,
		Tools:        []tool{{Type: "file_search"}},
	}
	if err := c.doJSON(ctx, http.MethodPost, "/assistants", req, &created); err != nil {
		return "", fmt.Errorf("creating assistant: %w", err)
	}
	return created.ID, nil
}

// EnsureVectorStore returns the ID of the corpus vector store, creating
// it and attaching it to the assistant if absent. The store is named
// after the assistant so multiple deployments do not collide.
func (c *Client) EnsureVectorStore(ctx context.Context, assistantID string) (string, error) {
	storeName := c.assistantName + " - Library"

	var list vectorStoreList
	if err := c.doJSON(ctx, http.MethodGet, "/vector_stores?limit=100", nil, &list); err != nil {
		return "", fmt.Errorf("listing vector stores: %w", err)
	}
	for _, vs := range list.Data {
		if vs.Name == storeName {
			return vs.ID, nil
		}
	}

	slog.Info("creating vector store", "name", storeName)
	var created vectorStoreObject
	if err := c.doJSON(ctx, http.MethodPost, "/vector_stores", createVectorStoreRequest{Name: storeName}, &created); err != nil {
		return "", fmt.Errorf("creating vector store: %w", err)
	}

	update := updateAssistantRequest{
		ToolResources: toolResources{
			FileSearch: fileSearchResources{VectorStoreIDs: []string{created.ID}},
		},
	}
	if err := c.doJSON(ctx, http.MethodPost, "/assistants/"+assistantID, update, nil); err != nil {
		return "", fmt.Errorf("attaching vector store to assistant: %w", err)
	}
	return created.ID, nil
}

// DeleteCorpusFiles removes every file currently attached to the vector
// store, so the store never holds two generations of the corpus at once.
func (c *Client) DeleteCorpusFiles(ctx context.Context, storeID string) error {
	var files fileList
	if err := c.doJSON(ctx, http.MethodGet, "/vector_stores/"+storeID+"/files", nil, &files); err != nil {
		return fmt.Errorf("listing corpus files: %w", err)
	}

	for _, f := range files.Data {
		if err := c.doJSON(ctx, http.MethodDelete, "/vector_stores/"+storeID+"/files/"+f.ID, nil, nil); err != nil {
			return fmt.Errorf("deleting corpus file %s: %w", f.ID, err)
		}
		slog.Debug("deleted corpus file", "file_id", f.ID)
	}
	return nil
}

// UploadCorpus uploads the document and attaches it to the vector store,
// returning the new file ID. Callers must have cleared the previous
// generation with DeleteCorpusFiles first.
func (c *Client) UploadCorpus(ctx context.Context, storeID string, doc catalog.Document) (string, error) {
	fileID, err := c.uploadFile(ctx, doc.Name, doc.Content)
	if err != nil {
		return "", fmt.Errorf("uploading corpus: %w", err)
	}

	if err := c.doJSON(ctx, http.MethodPost, "/vector_stores/"+storeID+"/files", attachFileRequest{FileID: fileID}, nil); err != nil {
		return "", fmt.Errorf("attaching corpus file: %w", err)
	}
	return fileID, nil
}
