package dataforseo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.dataforseo.com"

// United States / English, the only market the product targets today
const (
	DefaultLocationCode = 2840
	DefaultLanguageCode = "en"
)

// Client calls the DataForSEO keyword endpoints with basic auth
type Client struct {
	Username   string
	Password   string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(username, password string) *Client {
	return &Client{
		Username: username,
		Password: password,
		BaseURL:  defaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// KeywordRecord is one keyword row from the provider. Metric fields are
// pointers so that an absent value can be told apart from zero.
type KeywordRecord struct {
	Keyword      string
	SearchVolume *int
	Competition  *float64
	CPC          *float64
}

type keywordInfo struct {
	Competition *float64 `json:"competition"`
	CPC         *float64 `json:"cpc"`
}

type keywordEntry struct {
	Keyword          string       `json:"keyword"`
	SearchVolume     *int         `json:"search_volume"`
	CompetitionIndex *float64     `json:"competition_index"`
	CPC              *float64     `json:"cpc"`
	KeywordInfo      *keywordInfo `json:"keyword_info"`
}

type apiResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		Result []struct {
			Keywords []keywordEntry `json:"keywords"`
		} `json:"result"`
	} `json:"tasks"`
}

// RelatedKeywords returns up to limit keyword suggestions for a seed keyword
func (c *Client) RelatedKeywords(seedKeyword string, limit int) ([]KeywordRecord, error) {
	payload := []map[string]interface{}{
		{
			"keywords":          []string{seedKeyword},
			"location_code":     DefaultLocationCode,
			"language_code":     DefaultLanguageCode,
			"include_serp_info": true,
			"limit":             limit,
		},
	}
	return c.post("/v3/keywords_data/google_ads/keywords_for_keywords/live", payload)
}

// SearchVolume returns volume, competition and CPC for a keyword list
func (c *Client) SearchVolume(keywords []string) ([]KeywordRecord, error) {
	payload := []map[string]interface{}{
		{"keywords": keywords},
	}
	return c.post("/v3/keywords_data/google/search_volume/live", payload)
}

func (c *Client) post(path string, payload interface{}) ([]KeywordRecord, error) {
	if c.Username == "" || c.Password == "" {
		return nil, fmt.Errorf("DataForSEO credentials not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %v", err)
	}

	req, err := http.NewRequest("POST", c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.SetBasicAuth(c.Username, c.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("DataForSEO API error: status=%d, body=%s", resp.StatusCode, string(respBody))
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("error decoding response: %v", err)
	}

	if apiResp.StatusCode != 20000 {
		return nil, fmt.Errorf("DataForSEO API error: %s", apiResp.StatusMessage)
	}

	var records []KeywordRecord
	if len(apiResp.Tasks) > 0 && len(apiResp.Tasks[0].Result) > 0 {
		for _, entry := range apiResp.Tasks[0].Result[0].Keywords {
			record := KeywordRecord{
				Keyword:      entry.Keyword,
				SearchVolume: entry.SearchVolume,
			}
			// competition and cpc live under keyword_info or at the top
			// level depending on the endpoint
			if entry.KeywordInfo != nil && entry.KeywordInfo.Competition != nil {
				record.Competition = entry.KeywordInfo.Competition
			} else {
				record.Competition = entry.CompetitionIndex
			}
			if entry.KeywordInfo != nil && entry.KeywordInfo.CPC != nil {
				record.CPC = entry.KeywordInfo.CPC
			} else {
				record.CPC = entry.CPC
			}
			records = append(records, record)
		}
	}

	return records, nil
}
