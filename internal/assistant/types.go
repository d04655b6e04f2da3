package assistant

// Wire types for the subset of the OpenAI Assistants API the curator
// uses: assistants, vector stores, file upload, and threads/runs.

type assistantObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type assistantList struct {
	Data []assistantObject `json:"data"`
}

type createAssistantRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	Model        string `json:"model"`
	Tools        []tool `json:"tools"`
}

type tool struct {
	Type string `json:"type"`
}

type updateAssistantRequest struct {
	ToolResources toolResources `json:"tool_resources"`
}

type toolResources struct {
	FileSearch fileSearchResources `json:"file_search"`
}

type fileSearchResources struct {
	VectorStoreIDs []string `json:"vector_store_ids"`
}

type vectorStoreObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type vectorStoreList struct {
	Data []vectorStoreObject `json:"data"`
}

type createVectorStoreRequest struct {
	Name string `json:"name"`
}

type fileObject struct {
	ID string `json:"id"`
}

type fileList struct {
	Data []fileObject `json:"data"`
}

type attachFileRequest struct {
	FileID string `json:"file_id"`
}

type threadObject struct {
	ID string `json:"id"`
}

type createMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type createRunRequest struct {
	AssistantID string `json:"assistant_id"`
}

type runObject struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type messageList struct {
	Data []messageObject `json:"data"`
}

type messageObject struct {
	Role    string           `json:"role"`
	Content []messageContent `json:"content"`
}

type messageContent struct {
	Type string       `json:"type"`
	Text *messageText `json:"text,omitempty"`
}

type messageText struct {
	Value string `json:"value"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
