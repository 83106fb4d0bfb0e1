package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medirush/medirush-backend/pkg/enums"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://ai.gateway.lovable.dev/v1"
	defaultModel               = "google/gemini-2.5-flash"
	extractToolName            = "analyze_prescription"
	errorBodyReadLimit   int64 = 1024
	defaultClientTimeout       = 30 * time.Second
)

// Client wraps the AI gateway used to read prescription images.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured gateway base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithModel overrides the model routed through the gateway.
func WithModel(model string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(model)
		if trimmed != "" {
			c.model = trimmed
		}
	}
}

// NewClient builds the gateway client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, fmt.Errorf("analysis gateway api key is required")
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultClientTimeout}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// Analyze sends the prescription image through the gateway exactly once and
// returns the structured read. Callers own retry policy.
func (c *Client) Analyze(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "analysis client not configured")
	}
	if len(image) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}
	if strings.TrimSpace(mimeType) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image mime type is required")
	}

	payload, err := json.Marshal(c.buildRequest(image, mimeType))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal analysis request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("chat/completions"), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build analysis request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysisFailed, err, "execute analysis request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "analysis gateway rate limit exceeded")
	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, pkgerrors.New(pkgerrors.CodeQuotaExceeded, "analysis gateway quota exhausted")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysisFailed, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "analysis request failed")
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content   string `json:"content"`
				ToolCalls []struct {
					Function struct {
						Name      string `json:"name"`
						Arguments string `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysisFailed, err, "decode analysis response")
	}
	if len(apiResp.Choices) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeAnalysisFailed, "analysis response contained no choices")
	}

	message := apiResp.Choices[0].Message
	for _, call := range message.ToolCalls {
		if call.Function.Name != extractToolName {
			continue
		}
		parsed, err := parseExtraction([]byte(call.Function.Arguments))
		if err != nil {
			return nil, err
		}
		return &Result{Parsed: true, Analysis: *parsed}, nil
	}

	// The model answered without calling the extraction tool. Surface the
	// prose so the caller can show it, and mark the read as unparsed.
	return &Result{
		Parsed:     false,
		RawContent: message.Content,
		Analysis: Analysis{
			IsValid:    true,
			Medicines:  []ExtractedMedicine{},
			Confidence: enums.ConfidenceLow,
			Warnings:   []string{"Automatic extraction unavailable; review the prescription manually."},
		},
	}, nil
}

func (c *Client) buildRequest(image []byte, mimeType string) map[string]any {
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	return map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{
				"role":    "system",
				"content": systemPrompt,
			},
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": userPrompt},
					{"type": "image_url", "image_url": map[string]any{"url": dataURI}},
				},
			},
		},
		"tools": []map[string]any{
			{
				"type": "function",
				"function": map[string]any{
					"name":        extractToolName,
					"description": "Extract structured prescription data from the image",
					"parameters":  extractionSchema,
				},
			},
		},
		"tool_choice": map[string]any{
			"type":     "function",
			"function": map[string]any{"name": extractToolName},
		},
	}
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
