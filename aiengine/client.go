package aiengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the internal scoring service. The service is optional:
// when no base URL is configured the matcher falls back to local scoring.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

type ScoreRequest struct {
	Skills       []string `json:"skills"`
	DesiredRoles []string `json:"desired_roles"`
	Headline     string   `json:"headline,omitempty"`
	Jobs         []JobRef `json:"jobs"`
}

type JobRef struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	RequiredSkills []string `json:"required_skills"`
	Description    string   `json:"description,omitempty"`
}

type JobScore struct {
	JobID string  `json:"job_id"`
	Score float64 `json:"score"`
}

type scoreResponse struct {
	Scores []JobScore `json:"scores"`
}

// ScoreJobs asks the scoring service to rank jobs against a profile.
func (c *Client) ScoreJobs(ctx context.Context, request ScoreRequest) ([]JobScore, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/score", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ai engine returned status %d", resp.StatusCode)
	}

	var parsed scoreResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	return parsed.Scores, nil
}
