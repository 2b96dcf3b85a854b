package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bryanwahyu/smartdocs/internal/domain/analysis"
)

// ResponsesClient talks to the /responses endpoint, which may answer with a
// parsed JSON content part or with plain output text.
type ResponsesClient struct {
	Endpoint string
	APIKey   string
	Model    string
	http     *http.Client
}

func NewResponsesClient(apiKey, baseURL, model string, timeout time.Duration) *ResponsesClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &ResponsesClient{
		Endpoint: strings.TrimRight(baseURL, "/") + "/responses",
		APIKey:   apiKey,
		Model:    model,
		http:     &http.Client{Timeout: timeout},
	}
}

type responsesRequest struct {
	Model       string         `json:"model"`
	Input       string         `json:"input"`
	Temperature *float32       `json:"temperature,omitempty"`
	Text        *responsesText `json:"text,omitempty"`
}

type responsesText struct {
	Format struct {
		Type string `json:"type"`
	} `json:"format"`
}

type responsesBody struct {
	Output []struct {
		Type    string           `json:"type"`
		Content []map[string]any `json:"content"`
	} `json:"output"`
	OutputText string `json:"output_text"`
}

// HTTPError is a non-2xx answer from the endpoint.
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// RetryAfterDelay exposes the parsed Retry-After header.
func (e *HTTPError) RetryAfterDelay() time.Duration { return e.RetryAfter }

func (c *ResponsesClient) Generate(ctx context.Context, prompt string, gen analysis.GenerationConfig) (analysis.ModelResponse, error) {
	model := pickModel(gen.Model, c.Model)
	req := responsesRequest{Model: model, Input: prompt}
	if !isReasoningModel(model) {
		t := gen.Temperature
		req.Temperature = &t
	}
	if gen.JSONOutput {
		req.Text = &responsesText{}
		req.Text.Format.Type = "json_object"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return analysis.ModelResponse{}, fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return analysis.ModelResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return analysis.ModelResponse{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return analysis.ModelResponse{}, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				httpErr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return analysis.ModelResponse{}, fmt.Errorf("%w: %w", analysis.ErrQuotaExceeded, httpErr)
		}
		return analysis.ModelResponse{}, httpErr
	}
	return parseResponses(raw)
}

// parseResponses picks the payload out of a /responses body. A "json"
// content part anywhere wins over text; otherwise the first non-empty
// "output_text" part, then the top-level output_text.
func parseResponses(raw []byte) (analysis.ModelResponse, error) {
	var body responsesBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return analysis.ModelResponse{}, fmt.Errorf("parsing response JSON: %w", err)
	}

	for _, out := range body.Output {
		for _, part := range out.Content {
			if part["type"] != "json" {
				continue
			}
			for _, key := range []string{"json", "content"} {
				if obj, ok := part[key].(map[string]any); ok {
					return analysis.Structured(obj), nil
				}
			}
		}
	}
	for _, out := range body.Output {
		for _, part := range out.Content {
			if part["type"] != "output_text" {
				continue
			}
			if text, ok := part["text"].(string); ok && text != "" {
				return analysis.Raw(text), nil
			}
		}
	}
	if body.OutputText != "" {
		return analysis.Raw(body.OutputText), nil
	}
	return analysis.ModelResponse{}, analysis.ErrUnknownResponseShape
}
