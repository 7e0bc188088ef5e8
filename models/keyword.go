package models

// KeywordAnalysisRequest is the input for the keyword classification endpoints
type KeywordAnalysisRequest struct {
	SeedKeyword string `json:"seed_keyword" binding:"required"`
	Limit       int    `json:"limit"`
}

// KeywordSearchRequest is the input for the cached keyword-research endpoints
type KeywordSearchRequest struct {
	SeedKeyword  string `json:"seed_keyword" binding:"required"`
	LocationCode int    `json:"location_code"`
	LanguageCode string `json:"language_code"`
	Limit        int    `json:"limit"`
}

// KeywordMetrics is one classified keyword with its provider metrics
type KeywordMetrics struct {
	Keyword          string  `json:"keyword"`
	SearchVolume     int     `json:"search_volume"`
	Competition      string  `json:"competition"`
	CPC              float64 `json:"cpc"`
	Category         string  `json:"category"`
	Difficulty       *int    `json:"difficulty,omitempty"`
	TrafficPotential *int    `json:"traffic_potential,omitempty"`
}

type KeywordAnalysisResponse struct {
	SeedKeyword          string           `json:"seed_keyword"`
	ToolKeywords         []KeywordMetrics `json:"tool_keywords"`
	MonetizationKeywords []KeywordMetrics `json:"monetization_keywords"`
	Tags                 []string         `json:"tags"`
	IsSampleData         bool             `json:"is_sample_data"`
}
