package research

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/vigourpt/themonneygate2/models"
	"github.com/vigourpt/themonneygate2/services/dataforseo"
	"github.com/vigourpt/themonneygate2/testutils"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func providerResponse(keywords []map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"status_code": 20000,
		"tasks": []map[string]interface{}{
			{
				"result": []map[string]interface{}{
					{"keywords": keywords},
				},
			},
		},
	}
}

func newTestHandler(serverURL string) *Handler {
	provider := dataforseo.NewClient("user", "password")
	provider.BaseURL = serverURL
	return NewHandler(provider)
}

const documentSelectQuery = `SELECT \* FROM "documents" WHERE key = \$1 ORDER BY "documents"\."key" LIMIT \$2`

func TestAnalyze_ServesFreshCacheWithoutProviderCall(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	providerCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerCalls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cached := cachedAnalysis{
		KeywordAnalysisResponse: models.KeywordAnalysisResponse{
			SeedKeyword: "budget tracker",
			ToolKeywords: []models.KeywordMetrics{
				{Keyword: "budget tracker template", SearchVolume: 2000, Competition: "Low", CPC: 0.5, Category: "tool"},
			},
			MonetizationKeywords: []models.KeywordMetrics{},
			Tags:                 []string{"budgeting", "keyword-research"},
		},
		CachedDate: time.Now().Add(-24 * time.Hour),
	}
	cachedJSON, _ := json.Marshal(cached)

	mock.ExpectQuery(documentSelectQuery).
		WithArgs("keyword_analysis_budgettracker_en_2840", 1).
		WillReturnRows(mock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow("keyword_analysis_budgettracker_en_2840", cachedJSON, time.Now()))

	h := newTestHandler(server.URL)
	r := testutils.SetupTestRouter()
	r.POST("/research/analyze", h.Analyze)

	body, _ := json.Marshal(map[string]interface{}{"seed_keyword": "budget tracker"})
	req, _ := http.NewRequest(http.MethodPost, "/research/analyze", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, providerCalls)

	var result models.KeywordAnalysisResponse
	json.Unmarshal(resp.Body.Bytes(), &result)
	assert.Equal(t, "budget tracker", result.SeedKeyword)
	assert.Len(t, result.ToolKeywords, 1)
	assert.Equal(t, "budget tracker template", result.ToolKeywords[0].Keyword)
}

func TestAnalyze_StaleCacheTriggersFreshLookup(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	providerCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerCalls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	stale := cachedAnalysis{
		KeywordAnalysisResponse: models.KeywordAnalysisResponse{SeedKeyword: "budget tracker"},
		CachedDate:              time.Now().Add(-8 * 24 * time.Hour),
	}
	staleJSON, _ := json.Marshal(stale)

	mock.ExpectQuery(documentSelectQuery).
		WithArgs("keyword_analysis_budgettracker_en_2840", 1).
		WillReturnRows(mock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow("keyword_analysis_budgettracker_en_2840", staleJSON, time.Now()))

	h := newTestHandler(server.URL)
	r := testutils.SetupTestRouter()
	r.POST("/research/analyze", h.Analyze)

	body, _ := json.Marshal(map[string]interface{}{"seed_keyword": "budget tracker", "limit": 4})
	req, _ := http.NewRequest(http.MethodPost, "/research/analyze", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	// provider was consulted and failed, so the fallback data is served
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, providerCalls)

	var result models.KeywordAnalysisResponse
	json.Unmarshal(resp.Body.Bytes(), &result)
	assert.NotEmpty(t, result.ToolKeywords)
	assert.Equal(t, "Low", result.ToolKeywords[0].Competition)
	assert.Contains(t, result.Tags, "keyword-research")
}

func TestAnalyzeLive_ClassifiesByThresholds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3/keywords_data/google_ads/keywords_for_keywords/live":
			json.NewEncoder(w).Encode(providerResponse([]map[string]interface{}{
				{"keyword": "budget template", "search_volume": 3000},
				{"keyword": "budget app", "search_volume": 2000},
				{"keyword": "budget advisor", "search_volume": 800},
				{"keyword": "no volume", "search_volume": 0},
			}))
		case "/v3/keywords_data/google/search_volume/live":
			json.NewEncoder(w).Encode(providerResponse([]map[string]interface{}{
				{"keyword": "budget template", "search_volume": 3000, "competition_index": 0.2, "cpc": 0.8},
				{"keyword": "budget app", "search_volume": 2000, "competition_index": 0.5, "cpc": 1.0},
				{"keyword": "budget advisor", "search_volume": 800, "competition_index": 0.9, "cpc": 6.5},
			}))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	h := newTestHandler(server.URL)
	result, err := h.analyzeLive(models.KeywordSearchRequest{
		SeedKeyword:  "budget planner",
		LocationCode: 2840,
		LanguageCode: "en",
		Limit:        10,
	})

	assert.NoError(t, err)

	// Low competition with cpc < 2.0 is a tool keyword
	assert.Len(t, result.ToolKeywords, 1)
	tool := result.ToolKeywords[0]
	assert.Equal(t, "budget template", tool.Keyword)
	assert.Equal(t, "tool", tool.Category)
	assert.Equal(t, 20, *tool.Difficulty)
	assert.Equal(t, 300, *tool.TrafficPotential)

	// cpc > 3.0 is a monetization keyword, Medium competition with low cpc
	// lands nowhere
	assert.Equal(t, "budget advisor", result.MonetizationKeywords[0].Keyword)
	assert.Equal(t, "monetization", result.MonetizationKeywords[0].Category)

	assert.Equal(t, []string{"budgeting", "keyword-research"}, result.Tags)
}

func TestAnalyzeFallback_RoundRobinSampleData(t *testing.T) {
	h := newTestHandler("http://localhost:0")
	r := testutils.SetupTestRouter()
	r.POST("/research/analyze-fallback", h.AnalyzeFallback)

	body, _ := json.Marshal(map[string]interface{}{"seed_keyword": "Debt Payoff", "limit": 3})
	req, _ := http.NewRequest(http.MethodPost, "/research/analyze-fallback", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var result models.KeywordAnalysisResponse
	json.Unmarshal(resp.Body.Bytes(), &result)

	assert.Len(t, result.ToolKeywords, 3)
	assert.Len(t, result.MonetizationKeywords, 3)

	// variations are applied round-robin on the lowercased seed
	assert.Equal(t, "debt payoff template", result.ToolKeywords[0].Keyword)
	assert.Equal(t, "debt payoff calculator", result.ToolKeywords[1].Keyword)
	assert.Equal(t, "premium debt payoff", result.MonetizationKeywords[0].Keyword)

	for _, kw := range result.ToolKeywords {
		assert.Equal(t, "Low", kw.Competition)
		assert.Equal(t, "tool", kw.Category)
	}
	for _, kw := range result.MonetizationKeywords {
		assert.Equal(t, "High", kw.Competition)
		assert.GreaterOrEqual(t, kw.CPC, 5.0)
		assert.LessOrEqual(t, kw.CPC, 20.0)
	}

	assert.Equal(t, []string{"debt", "keyword-research"}, result.Tags)
}

func TestAnalyzeFallback_CapsAtFivePerSide(t *testing.T) {
	result := buildFallbackResponse(models.KeywordSearchRequest{SeedKeyword: "savings", Limit: 20})

	assert.Len(t, result.ToolKeywords, 5)
	assert.Len(t, result.MonetizationKeywords, 5)
	assert.Equal(t, []string{"savings", "keyword-research"}, result.Tags)
}

func TestCalculateTrafficPotential(t *testing.T) {
	assert.Equal(t, 100, calculateTrafficPotential(1000, "Low"))
	assert.Equal(t, 50, calculateTrafficPotential(1000, "Medium"))
	assert.Equal(t, 10, calculateTrafficPotential(1000, "High"))
}

func TestCategorizeSeed(t *testing.T) {
	assert.Equal(t, "budgeting", categorizeSeed("monthly budget planner"))
	assert.Equal(t, "debt", categorizeSeed("credit card payoff"))
	assert.Equal(t, "savings", categorizeSeed("saving for a house"))
	assert.Equal(t, "investment", categorizeSeed("stock screener"))
	assert.Equal(t, "retirement", categorizeSeed("401k calculator"))
	assert.Equal(t, "finance", categorizeSeed("tax deadline"))
}

func TestCacheKeySanitization(t *testing.T) {
	key := cacheKey(models.KeywordSearchRequest{
		SeedKeyword:  "budget tracker!",
		LanguageCode: "en",
		LocationCode: 2840,
	})
	assert.Equal(t, "keyword_analysis_budgettracker_en_2840", key)
}

func TestCacheMissWhenDocumentAbsent(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(documentSelectQuery).
		WithArgs("keyword_analysis_budget_en_2840", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	h := newTestHandler(server.URL)
	r := testutils.SetupTestRouter()
	r.POST("/research/analyze", h.Analyze)

	body, _ := json.Marshal(map[string]interface{}{"seed_keyword": "budget"})
	req, _ := http.NewRequest(http.MethodPost, "/research/analyze", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var result models.KeywordAnalysisResponse
	json.Unmarshal(resp.Body.Bytes(), &result)
	assert.NotEmpty(t, result.ToolKeywords)
}
