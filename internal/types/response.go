package types

type EnhanceResponse struct {
	EnhancedPrompt string `json:"enhancedPrompt"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ModelInfo is exposed via GET /api/models.
type ModelInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Provider Provider `json:"provider"`
}

// ModeInfo is exposed via GET /api/modes.
type ModeInfo struct {
	ID          Mode   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
