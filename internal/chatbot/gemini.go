package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// APIError is a non-200 reply from the Gemini API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error (status %d): %s", e.StatusCode, e.Body)
}

// Model describes one entry of the models listing.
type Model struct {
	Name                       string   `json:"name"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// ID returns the model name without its "models/" prefix.
func (m Model) ID() string {
	return strings.TrimPrefix(m.Name, "models/")
}

func (m Model) SupportsGenerateContent() bool {
	for _, method := range m.SupportedGenerationMethods {
		if method == "generateContent" {
			return true
		}
	}
	return false
}

// GeminiClient talks to the Generative Language REST API.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiClient(apiKey, baseURL string) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

// newHTTPClient bounds connection setup tightly and generation loosely.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   90 * time.Second,
		Transport: transport,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateContent sends a single-turn prompt to model and returns the text
// of the first candidate.
func (c *GeminiClient) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp generateResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 {
		for _, p := range resp.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}

// ListModels returns the models visible to the API key.
func (c *GeminiClient) ListModels(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1beta/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var resp struct {
		Models []Model `json:"models"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

func (c *GeminiClient) do(req *http.Request, out any) error {
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
