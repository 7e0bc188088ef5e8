package tools

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vigourpt/themonneygate2/models"
	"github.com/vigourpt/themonneygate2/services/llm"
	"github.com/vigourpt/themonneygate2/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	LLM llm.Generator
}

func NewHandler(generator llm.Generator) *Handler {
	return &Handler{LLM: generator}
}

const systemPrompt = `You are an expert tool designer and marketing strategist specialized in creating
tools, templates, and calculators that connect free content to high-value monetization opportunities.

For each tool idea you generate, provide:
1. A compelling title and description
2. Detailed implementation specifics (what it should include, features, formulas, design elements)
3. Specific relevant keywords with search volume, competition estimates, and CPC values
4. Concrete monetization strategies detailing how to connect this free tool to high-value offers
5. Detailed HTML code for embedding this tool on a website, with proper JavaScript functionality

Focus on the "Hidden Money Door" concept - where low-competition keywords can lead to high-value
monetization opportunities. Be specific about the implementation details for spreadsheets, calculators,
or other tool formats.

For keywords, ensure you provide:
- Realistic search volume estimates as numeric values (e.g., "1,200")
- Competition levels (Low, Medium, High)
- Suggested CPC values with dollar signs (e.g., "$1.50")
- Keywords that specifically relate to the tool but could lead to higher-value monetization

For monetization ideas, be specific about:
- The exact product or service being promoted
- How it connects to the free tool
- Potential value or commission (with specific dollar amounts)

For the embed code, provide:
- Clean, functional HTML, CSS, and JavaScript
- Responsive design elements that work on different screen sizes
- Properly escaped code that can be embedded in an iframe or directly in a website
- Any necessary external libraries or dependencies`

func buildUserPrompt(req models.ToolGenerationRequest) string {
	focus := ""
	if req.Prompt != "" {
		focus = "Specific focus: " + req.Prompt
	}

	return fmt.Sprintf(`Create %d detailed tool ideas related to %s at a %s complexity level.

%s

For each tool:
1. Provide a clear title and compelling description
2. Include specific implementation details (formulas, fields, features it should have)
3. Suggest 4-6 relevant keywords with real-world search volume estimates in numeric format (e.g., "1,200"), specific competition level (Low/Medium/High), and approximate CPC with dollar sign (e.g., "$1.50")
4. Create 3-4 detailed monetization strategies explaining exactly how to connect this free tool to high-value offers, with specific potential value or commission amounts
5. Provide HTML/CSS/JS code that creates an interactive, embeddable version of this tool

Format your response as a JSON object with a 'tools' array containing tool objects with these properties:
- title (string): The name of the tool
- description (string): A compelling description of the tool
- implementation_details (string): Specific details on what the tool includes, formulas, etc.
- category (string): The category (should match "%s")
- complexity (string): The complexity level (should match "%s")
- keywords (array of objects): Each with 'keyword', 'search_volume', 'competition', and 'suggested_cpc'
- monetization_ideas (array of objects): Each with 'idea', 'description', and 'potential_value'
- embed_code (string): HTML/CSS/JS code that creates a functional version of the tool`,
		req.MaxResults, req.Category, req.Complexity, focus, req.Category, req.Complexity)
}

// Generate produces AI tool ideas for a category
// @Summary Generate tool ideas
// @Description Generate tool ideas with keyword suggestions, monetization strategies and embeddable HTML via the LLM provider
// @Tags tools
// @Accept json
// @Produce json
// @Param request body models.ToolGenerationRequest true "Category, optional focus prompt, complexity and result count"
// @Success 200 {object} models.ToolGenerationResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /tools/generate [post]
func (h *Handler) Generate(c *gin.Context) {
	var req models.ToolGenerationRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = 3
	}

	if h.LLM == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "LLM provider not configured"})
		return
	}

	utils.LogInfo("Generating tool ideas for category: " + req.Category + ", complexity: " + req.Complexity)

	raw, err := h.LLM.GenerateJSON(c.Request.Context(), systemPrompt, buildUserPrompt(req))
	if err != nil {
		utils.LogError(err, "Error generating tool ideas")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating tool ideas. Please try again."})
		return
	}

	tools, err := normalizeTools(raw, req)
	if err != nil {
		utils.LogError(err, "Error parsing LLM response")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid response format from AI: " + err.Error()})
		return
	}

	// the repair step always runs so required fields are never empty
	for i := range tools {
		repairTool(&tools[i], req.Category)
	}

	c.JSON(http.StatusOK, models.ToolGenerationResponse{Tools: tools})
}

// normalizeTools coerces the LLM's JSON into a tool list. Shapes are tried
// in order: bare array, "tools" key, "financial_tools" key, any other key
// holding an array, then the whole object as a single tool.
func normalizeTools(raw string, req models.ToolGenerationRequest) ([]models.ToolSuggestion, error) {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "[") {
		var tools []models.ToolSuggestion
		if err := json.Unmarshal([]byte(trimmed), &tools); err != nil {
			return nil, err
		}
		return tools, nil
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &object); err != nil {
		return nil, err
	}

	for _, key := range []string{"tools", "financial_tools"} {
		if value, ok := object[key]; ok {
			var tools []models.ToolSuggestion
			if err := json.Unmarshal(value, &tools); err != nil {
				return nil, err
			}
			return tools, nil
		}
	}

	for _, value := range object {
		if !strings.HasPrefix(strings.TrimSpace(string(value)), "[") {
			continue
		}
		var tools []models.ToolSuggestion
		if err := json.Unmarshal(value, &tools); err == nil && len(tools) > 0 {
			return tools, nil
		}
	}

	// last resort: treat the whole object as a single tool
	var tool models.ToolSuggestion
	if err := json.Unmarshal([]byte(trimmed), &tool); err != nil {
		return nil, err
	}
	if tool.Title == "" {
		tool.Title = "Financial Tool"
	}
	if tool.Description == "" {
		tool.Description = "Generated financial tool"
	}
	if tool.ImplementationDetails == "" {
		tool.ImplementationDetails = "Generated by AI"
	}
	tool.Category = req.Category
	tool.Complexity = req.Complexity
	if len(tool.Keywords) == 0 {
		tool.Keywords = []models.KeywordSuggestion{{
			Keyword:      req.Category + " tool",
			SearchVolume: "Medium",
			Competition:  "Medium",
			SuggestedCPC: "$1.00",
		}}
	}
	if len(tool.MonetizationIdeas) == 0 {
		tool.MonetizationIdeas = []models.MonetizationIdea{{
			Idea:           "Premium version",
			Description:    "Offer a premium version with additional features",
			PotentialValue: "Medium",
		}}
	}
	return []models.ToolSuggestion{tool}, nil
}

const embedCodeTemplate = `<div class="tool-container" style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 8px;">
  <h2 style="color: #333; margin-top: 0;">%s</h2>
  <p style="color: #666;">%s</p>
  <div class="tool-content" style="margin: 20px 0;">
    <!-- Tool content would go here -->
    <p style="font-style: italic; color: #999;">This is a placeholder for the %s tool. The actual implementation would include interactive elements.</p>
  </div>
  <div class="tool-footer" style="font-size: 12px; color: #999; text-align: center;">
    Powered by <a href="https://www.themoneygate.com" style="color: #0066cc; text-decoration: none;">TheMoneyGate</a>
  </div>
</div>`

// repairTool back-fills keywords, monetization ideas and embed code so the
// response contract never ships empty fields
func repairTool(tool *models.ToolSuggestion, category string) {
	if len(tool.Keywords) == 0 {
		tool.Keywords = []models.KeywordSuggestion{
			{
				Keyword:      category + " " + strings.ToLower(tool.Title),
				SearchVolume: "1,200",
				Competition:  "Medium",
				SuggestedCPC: "$1.00",
			},
			{
				Keyword:      "free " + category + " tool",
				SearchVolume: "2,400",
				Competition:  "Low",
				SuggestedCPC: "$0.75",
			},
		}
		utils.LogInfo("Fixed missing keywords for " + tool.Title)
	}

	if len(tool.MonetizationIdeas) == 0 {
		tool.MonetizationIdeas = []models.MonetizationIdea{
			{
				Idea:           "Premium version",
				Description:    "Enhanced version of the " + tool.Title + " with advanced features",
				PotentialValue: "$19.99 per month",
			},
			{
				Idea:           "Affiliate partnerships",
				Description:    "Connect users to relevant products and services",
				PotentialValue: "$50-100 per conversion",
			},
		}
		utils.LogInfo("Fixed missing monetization ideas for " + tool.Title)
	}

	if len(tool.EmbedCode) < 50 {
		tool.EmbedCode = fmt.Sprintf(embedCodeTemplate, tool.Title, tool.Description, tool.Title)
		utils.LogInfo("Added basic embed code for " + tool.Title)
	}
}
