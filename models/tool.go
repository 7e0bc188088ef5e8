package models

type ToolGenerationRequest struct {
	Category   string `json:"category" binding:"required"`
	Prompt     string `json:"prompt"`
	Complexity string `json:"complexity" binding:"required"`
	MaxResults int    `json:"max_results"`
}

// KeywordSuggestion uses approximations rather than exact metrics because the
// values come from the language model, not the keyword provider
type KeywordSuggestion struct {
	Keyword      string `json:"keyword"`
	SearchVolume string `json:"search_volume"`
	Competition  string `json:"competition"`
	SuggestedCPC string `json:"suggested_cpc"`
}

type MonetizationIdea struct {
	Idea           string `json:"idea"`
	Description    string `json:"description"`
	PotentialValue string `json:"potential_value"`
}

type ToolSuggestion struct {
	Title                 string              `json:"title"`
	Description           string              `json:"description"`
	ImplementationDetails string              `json:"implementation_details"`
	Category              string              `json:"category"`
	Complexity            string              `json:"complexity"`
	Keywords              []KeywordSuggestion `json:"keywords"`
	MonetizationIdeas     []MonetizationIdea  `json:"monetization_ideas"`
	EmbedCode             string              `json:"embed_code,omitempty"`
}

type ToolGenerationResponse struct {
	Tools []ToolSuggestion `json:"tools"`
}
