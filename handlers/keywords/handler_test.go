package keywords

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/vigourpt/themonneygate2/models"
	"github.com/vigourpt/themonneygate2/services/dataforseo"
	"github.com/vigourpt/themonneygate2/testutils"

	"github.com/stretchr/testify/assert"
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

func postAnalyze(t *testing.T, h *Handler, body map[string]interface{}) *httptest.ResponseRecorder {
	r := testutils.SetupTestRouter()
	r.POST("/keywords/analyze-metrics", h.AnalyzeMetrics)

	jsonData, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, "/keywords/analyze-metrics", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)
	return resp
}

func TestAnalyzeMetrics_InvalidKeyword(t *testing.T) {
	h := newTestHandler("http://localhost:0")

	resp := postAnalyze(t, h, map[string]interface{}{"seed_keyword": "!!!???"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "Invalid keyword", body["error"])
}

func TestAnalyzeMetrics_ClassifiesProviderData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(providerResponse([]map[string]interface{}{
			{"keyword": "budget planner", "search_volume": 4000, "keyword_info": map[string]interface{}{"competition": 0.2, "cpc": 0.5}},
			{"keyword": "financial advisor", "search_volume": 900, "keyword_info": map[string]interface{}{"competition": 0.8, "cpc": 12.0}},
			{"keyword": "budget advisor", "search_volume": 1500, "keyword_info": map[string]interface{}{"competition": 0.3, "cpc": 5.0}},
		}))
	}))
	defer server.Close()

	h := newTestHandler(server.URL)
	resp := postAnalyze(t, h, map[string]interface{}{"seed_keyword": "budget", "limit": 10})

	assert.Equal(t, http.StatusOK, resp.Code)

	var result models.KeywordAnalysisResponse
	json.Unmarshal(resp.Body.Bytes(), &result)

	assert.False(t, result.IsSampleData)
	assert.Equal(t, "budget", result.SeedKeyword)

	toolNames := keywordNames(result.ToolKeywords)
	monetizationNames := keywordNames(result.MonetizationKeywords)

	// competition < 0.4 lands in the tool list
	assert.Contains(t, toolNames, "budget planner")
	assert.Contains(t, toolNames, "budget advisor")
	assert.NotContains(t, toolNames, "financial advisor")

	// cpc > 1.0 lands in the monetization list, a record can be in both
	assert.Contains(t, monetizationNames, "financial advisor")
	assert.Contains(t, monetizationNames, "budget advisor")
	assert.NotContains(t, monetizationNames, "budget planner")

	// monetization list is sorted by cpc descending
	assert.Equal(t, "financial advisor", result.MonetizationKeywords[0].Keyword)

	assert.LessOrEqual(t, len(result.Tags), 5)
	assert.Contains(t, result.Tags, "budget")
}

func TestAnalyzeMetrics_FallsBackToSampleData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	h := newTestHandler(server.URL)
	resp := postAnalyze(t, h, map[string]interface{}{"seed_keyword": "budget tracker app", "limit": 3})

	assert.Equal(t, http.StatusOK, resp.Code)

	var result models.KeywordAnalysisResponse
	json.Unmarshal(resp.Body.Bytes(), &result)

	assert.True(t, result.IsSampleData)
	assert.LessOrEqual(t, len(result.ToolKeywords), 3)
	assert.LessOrEqual(t, len(result.MonetizationKeywords), 3)
	assert.NotEmpty(t, result.ToolKeywords)

	for _, kw := range result.ToolKeywords {
		assert.Contains(t, kw.Keyword, "budget tracker app")
	}
	assert.Contains(t, result.Tags, "budget tracker app")
}

func TestAnalyzeMetrics_TruncatesToLimit(t *testing.T) {
	var keywords []map[string]interface{}
	for i := 0; i < 40; i++ {
		keywords = append(keywords, map[string]interface{}{
			"keyword":       "budget idea " + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			"search_volume": 100 + i,
			"keyword_info":  map[string]interface{}{"competition": 0.1, "cpc": 2.0},
		})
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(providerResponse(keywords))
	}))
	defer server.Close()

	h := newTestHandler(server.URL)
	resp := postAnalyze(t, h, map[string]interface{}{"seed_keyword": "budget", "limit": 5})

	var result models.KeywordAnalysisResponse
	json.Unmarshal(resp.Body.Bytes(), &result)

	assert.Len(t, result.ToolKeywords, 5)
	assert.Len(t, result.MonetizationKeywords, 5)
}

func TestGenerateSampleData(t *testing.T) {
	records := GenerateSampleData("budget tracker app", 20)

	assert.Len(t, records, 20)

	for _, record := range records[:10] {
		assert.Contains(t, record.Keyword, "budget tracker app ")
		assert.GreaterOrEqual(t, *record.SearchVolume, 500)
		assert.LessOrEqual(t, *record.SearchVolume, 5000)
		assert.Less(t, *record.Competition, 0.4)
		assert.LessOrEqual(t, *record.CPC, 1.0)
	}
	for _, record := range records[10:] {
		assert.Contains(t, record.Keyword, " budget tracker app")
		assert.GreaterOrEqual(t, *record.Competition, 0.4)
		assert.GreaterOrEqual(t, *record.CPC, 1.0)
	}
}

func TestSanitizeKeyword(t *testing.T) {
	assert.Equal(t, "budget tracker", sanitizeKeyword("  Budget Tracker!  "))
	assert.Equal(t, "401k plan", sanitizeKeyword("401(k) plan"))
	assert.Equal(t, "", sanitizeKeyword("!!!"))
}

func TestCompetitionToText(t *testing.T) {
	assert.Equal(t, "Low", competitionToText(0.1))
	assert.Equal(t, "Medium", competitionToText(0.5))
	assert.Equal(t, "High", competitionToText(0.9))
}

func keywordNames(metrics []models.KeywordMetrics) []string {
	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.Keyword)
	}
	return names
}
