package research

import (
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vigourpt/themonneygate2/models"
	"github.com/vigourpt/themonneygate2/services/dataforseo"
	"github.com/vigourpt/themonneygate2/storage"
	"github.com/vigourpt/themonneygate2/utils"

	"github.com/gin-gonic/gin"
)

const cacheTTL = 7 * 24 * time.Hour

type Handler struct {
	Provider *dataforseo.Client
}

func NewHandler(provider *dataforseo.Client) *Handler {
	return &Handler{Provider: provider}
}

// cachedAnalysis is the document-store shape of a cached response
type cachedAnalysis struct {
	models.KeywordAnalysisResponse
	CachedDate time.Time `json:"cached_date"`
}

func cacheKey(req models.KeywordSearchRequest) string {
	return storage.SanitizeKey("keyword_analysis_" + req.SeedKeyword + "_" + req.LanguageCode + "_" + strconv.Itoa(req.LocationCode))
}

func competitionTier(index float64) string {
	if index < 0.33 {
		return "Low"
	} else if index > 0.66 {
		return "High"
	}
	return "Medium"
}

// calculateTrafficPotential estimates the share of search volume capturable
// at a given competition tier
func calculateTrafficPotential(searchVolume int, competition string) int {
	switch competition {
	case "Low":
		return int(float64(searchVolume) * 0.10)
	case "Medium":
		return int(float64(searchVolume) * 0.05)
	default:
		return int(float64(searchVolume) * 0.01)
	}
}

// Analyze runs the cached two-stage keyword research flow
// @Summary Analyze keywords with caching
// @Description Research low-competition tool keywords and high-CPC monetization keywords, with a 7 day read-through cache. Falls back to sample data on any provider failure.
// @Tags research
// @Accept json
// @Produce json
// @Param request body models.KeywordSearchRequest true "Seed keyword, market and result limit"
// @Success 200 {object} models.KeywordAnalysisResponse
// @Failure 400 {object} map[string]string
// @Router /research/analyze [post]
func (h *Handler) Analyze(c *gin.Context) {
	var req models.KeywordSearchRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}
	applyDefaults(&req)

	utils.LogInfo("Analyzing keyword: " + req.SeedKeyword)

	key := cacheKey(req)
	var cached cachedAnalysis
	found, err := storage.GetJSON(key, &cached)
	if err != nil {
		utils.LogError(err, "Cache retrieval error for key "+key)
	}
	if found && time.Since(cached.CachedDate) < cacheTTL {
		c.JSON(http.StatusOK, cached.KeywordAnalysisResponse)
		return
	}

	response, err := h.analyzeLive(req)
	if err != nil {
		utils.LogError(err, "Error analyzing keywords, falling back to sample data")
		c.JSON(http.StatusOK, buildFallbackResponse(req))
		return
	}

	if err := storage.PutJSON(key, cachedAnalysis{
		KeywordAnalysisResponse: response,
		CachedDate:              time.Now(),
	}); err != nil {
		utils.LogError(err, "Error caching result for key "+key)
	}

	c.JSON(http.StatusOK, response)
}

// AnalyzeFallback always serves synthetic data, used for testing and demos
// @Summary Analyze keywords with sample data
// @Description Always returns synthetic keyword data in the same shape as /research/analyze
// @Tags research
// @Accept json
// @Produce json
// @Param request body models.KeywordSearchRequest true "Seed keyword and result limit"
// @Success 200 {object} models.KeywordAnalysisResponse
// @Failure 400 {object} map[string]string
// @Router /research/analyze-fallback [post]
func (h *Handler) AnalyzeFallback(c *gin.Context) {
	var req models.KeywordSearchRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}
	applyDefaults(&req)
	c.JSON(http.StatusOK, buildFallbackResponse(req))
}

// Analyze2 is the simplified variant, currently synonymous with the fallback
// @Summary Analyze keywords (simplified)
// @Description Simplified keyword analysis serving synthetic data
// @Tags research
// @Accept json
// @Produce json
// @Param request body models.KeywordSearchRequest true "Seed keyword and result limit"
// @Success 200 {object} models.KeywordAnalysisResponse
// @Failure 400 {object} map[string]string
// @Router /research/analyze2 [post]
func (h *Handler) Analyze2(c *gin.Context) {
	h.AnalyzeFallback(c)
}

func applyDefaults(req *models.KeywordSearchRequest) {
	if req.LocationCode == 0 {
		req.LocationCode = dataforseo.DefaultLocationCode
	}
	if req.LanguageCode == "" {
		req.LanguageCode = dataforseo.DefaultLanguageCode
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}
}

// discoveryVariations pads the related-keyword list when discovery comes
// back empty
var discoveryVariations = []string{
	"calculator", "template", "spreadsheet", "planner", "tracker", "worksheet",
	"free", "tool", "guide", "app", "online", "excel", "pdf", "printable",
}

func (h *Handler) analyzeLive(req models.KeywordSearchRequest) (models.KeywordAnalysisResponse, error) {
	// stage 1: discover related keywords, keep the 30 most relevant with
	// real search volume
	discovered, err := h.Provider.RelatedKeywords(req.SeedKeyword, max(50, req.Limit*5))
	if err != nil {
		return models.KeywordAnalysisResponse{}, err
	}

	var relatedKeywords []string
	for _, record := range discovered {
		if record.SearchVolume != nil && *record.SearchVolume > 0 {
			relatedKeywords = append(relatedKeywords, record.Keyword)
		}
	}
	if len(relatedKeywords) > 30 {
		relatedKeywords = relatedKeywords[:30]
	}

	if len(relatedKeywords) == 0 {
		utils.LogInfo("No related keywords found for '" + req.SeedKeyword + "', generating similar ones")
		relatedKeywords = append(relatedKeywords, req.SeedKeyword)
		for _, variation := range discoveryVariations {
			relatedKeywords = append(relatedKeywords, req.SeedKeyword+" "+variation)
		}
	}

	// stage 2: volume and CPC lookup for the related terms
	records, err := h.Provider.SearchVolume(relatedKeywords)
	if err != nil {
		return models.KeywordAnalysisResponse{}, err
	}

	toolKeywords := []models.KeywordMetrics{}
	monetizationKeywords := []models.KeywordMetrics{}

	for _, record := range records {
		if record.Keyword == "" || record.SearchVolume == nil || *record.SearchVolume == 0 {
			continue
		}

		competitionIndex := 0.5
		if record.Competition != nil {
			competitionIndex = *record.Competition
		}
		competition := competitionTier(competitionIndex)

		cpc := 0.0
		if record.CPC != nil {
			cpc = *record.CPC
		}

		difficulty := int(competitionIndex * 100)
		trafficPotential := calculateTrafficPotential(*record.SearchVolume, competition)

		metrics := models.KeywordMetrics{
			Keyword:          record.Keyword,
			SearchVolume:     *record.SearchVolume,
			Competition:      competition,
			CPC:              cpc,
			Difficulty:       &difficulty,
			TrafficPotential: &trafficPotential,
		}

		if competition == "Low" && cpc < 2.0 {
			metrics.Category = "tool"
			toolKeywords = append(toolKeywords, metrics)
		} else if cpc > 3.0 {
			metrics.Category = "monetization"
			monetizationKeywords = append(monetizationKeywords, metrics)
		}
	}

	sortByVolumeDesc(toolKeywords)
	sortByCPCDesc(monetizationKeywords)

	categoryTag := categorizeSeed(req.SeedKeyword)

	// thin results are backfilled with known high-value terms for the
	// seed's topic
	if len(toolKeywords) < 3 || len(monetizationKeywords) < 3 {
		monetizationKeywords = append(monetizationKeywords, h.lookupHighValueTerms(req.SeedKeyword)...)
	}

	if len(toolKeywords) > req.Limit {
		toolKeywords = toolKeywords[:req.Limit]
	}
	if len(monetizationKeywords) > req.Limit {
		monetizationKeywords = monetizationKeywords[:req.Limit]
	}

	return models.KeywordAnalysisResponse{
		SeedKeyword:          req.SeedKeyword,
		ToolKeywords:         toolKeywords,
		MonetizationKeywords: monetizationKeywords,
		Tags:                 []string{categoryTag, "keyword-research"},
	}, nil
}

// lookupHighValueTerms fetches live metrics for the monetization phrases of
// the seed's topic bucket. Failures leave the result list empty, the caller
// proceeds with what it has.
func (h *Handler) lookupHighValueTerms(seedKeyword string) []models.KeywordMetrics {
	terms := monetizationTermsFor(seedKeyword)

	records, err := h.Provider.SearchVolume(terms)
	if err != nil {
		utils.LogError(err, "Error fetching high-value terms")
		return nil
	}

	var results []models.KeywordMetrics
	for _, record := range records {
		if record.Keyword == "" || record.SearchVolume == nil || *record.SearchVolume == 0 {
			continue
		}

		cpc := 10.0
		if record.CPC != nil {
			cpc = *record.CPC
		}
		// high-value terms are usually competitive
		difficulty := 85
		trafficPotential := calculateTrafficPotential(*record.SearchVolume, "High")

		results = append(results, models.KeywordMetrics{
			Keyword:          record.Keyword,
			SearchVolume:     *record.SearchVolume,
			Competition:      "High",
			CPC:              cpc,
			Category:         "monetization",
			Difficulty:       &difficulty,
			TrafficPotential: &trafficPotential,
		})
	}
	return results
}

type topicBucket struct {
	triggers          []string
	categoryTag       string
	monetizationTerms []string
}

var topicBuckets = []topicBucket{
	{
		triggers:          []string{"budget", "money", "spending"},
		categoryTag:       "budgeting",
		monetizationTerms: []string{"financial advisor", "money management service", "budgeting app premium"},
	},
	{
		triggers:          []string{"debt", "loan", "credit"},
		categoryTag:       "debt",
		monetizationTerms: []string{"debt consolidation", "credit repair service", "loan refinancing"},
	},
	{
		triggers:          []string{"save", "saving"},
		categoryTag:       "savings",
		monetizationTerms: []string{"high-yield savings account", "wealth management", "investment advisor"},
	},
	{
		triggers:          []string{"invest", "stock", "portfolio"},
		categoryTag:       "investment",
		monetizationTerms: []string{"investment advisor", "portfolio management", "stock broker service"},
	},
	{
		triggers:          []string{"retire", "401k", "pension"},
		categoryTag:       "retirement",
		monetizationTerms: []string{"retirement planning", "estate planning", "wealth advisor"},
	},
}

var defaultBucket = topicBucket{
	categoryTag:       "finance",
	monetizationTerms: []string{"financial advisor", "wealth management", "financial planning"},
}

func bucketFor(seedKeyword string) topicBucket {
	seed := strings.ToLower(seedKeyword)
	for _, bucket := range topicBuckets {
		for _, trigger := range bucket.triggers {
			if strings.Contains(seed, trigger) {
				return bucket
			}
		}
	}
	return defaultBucket
}

func categorizeSeed(seedKeyword string) string {
	return bucketFor(seedKeyword).categoryTag
}

func monetizationTermsFor(seedKeyword string) []string {
	return bucketFor(seedKeyword).monetizationTerms
}

func sortByVolumeDesc(keywords []models.KeywordMetrics) {
	sort.SliceStable(keywords, func(i, j int) bool {
		return keywords[i].SearchVolume > keywords[j].SearchVolume
	})
}

func sortByCPCDesc(keywords []models.KeywordMetrics) {
	sort.SliceStable(keywords, func(i, j int) bool {
		return keywords[i].CPC > keywords[j].CPC
	})
}

var fallbackToolVariations = []string{
	"template", "calculator", "spreadsheet", "tool", "tracker", "planner",
	"worksheet", "guide", "checklist", "budget", "free", "diy", "simple",
}

var fallbackMonetizationVariations = []string{
	"premium", "professional", "advisor", "consultant", "service", "management",
	"best", "expert", "certified", "top", "agency", "wealth", "investment",
}

// buildFallbackResponse synthesizes a full analysis response from fixed
// variation lists, round-robin over the variations, capped at 5 per side
func buildFallbackResponse(req models.KeywordSearchRequest) models.KeywordAnalysisResponse {
	seedKeyword := strings.ToLower(req.SeedKeyword)

	toolKeywords := []models.KeywordMetrics{}
	for i := 0; i < min(req.Limit, 5); i++ {
		variation := fallbackToolVariations[i%len(fallbackToolVariations)]
		searchVolume := rand.Intn(9001) + 1000
		competitionIndex := 0.1 + rand.Float64()*0.3
		cpc := 0.2 + rand.Float64()*1.3
		difficulty := int(competitionIndex * 100)
		trafficPotential := calculateTrafficPotential(searchVolume, "Low")

		toolKeywords = append(toolKeywords, models.KeywordMetrics{
			Keyword:          seedKeyword + " " + variation,
			SearchVolume:     searchVolume,
			Competition:      "Low",
			CPC:              cpc,
			Category:         "tool",
			Difficulty:       &difficulty,
			TrafficPotential: &trafficPotential,
		})
	}

	monetizationKeywords := []models.KeywordMetrics{}
	for i := 0; i < min(req.Limit, 5); i++ {
		variation := fallbackMonetizationVariations[i%len(fallbackMonetizationVariations)]
		searchVolume := rand.Intn(4501) + 500
		competitionIndex := 0.6 + rand.Float64()*0.3
		cpc := 5.0 + rand.Float64()*15.0
		difficulty := int(competitionIndex * 100)
		trafficPotential := calculateTrafficPotential(searchVolume, "High")

		monetizationKeywords = append(monetizationKeywords, models.KeywordMetrics{
			Keyword:          variation + " " + seedKeyword,
			SearchVolume:     searchVolume,
			Competition:      "High",
			CPC:              cpc,
			Category:         "monetization",
			Difficulty:       &difficulty,
			TrafficPotential: &trafficPotential,
		})
	}

	return models.KeywordAnalysisResponse{
		SeedKeyword:          req.SeedKeyword,
		ToolKeywords:         toolKeywords,
		MonetizationKeywords: monetizationKeywords,
		Tags:                 []string{categorizeSeed(seedKeyword), "keyword-research"},
	}
}
