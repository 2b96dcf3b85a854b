package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/smartdocs/internal/domain/analysis"
)

const (
	DefaultModel = "gpt-4o-mini"
	maxTokens    = 8192
)

// Client is the chat-completions adapter. Its answer is always raw text.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, baseURL, model string, httpClient *http.Client) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (c *Client) Generate(ctx context.Context, prompt string, gen analysis.GenerationConfig) (analysis.ModelResponse, error) {
	model := pickModel(gen.Model, c.Model)
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if gen.JSONOutput {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens and leave temperature unset
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
		req.Temperature = gen.Temperature
		if req.Temperature == 0 {
			// omitempty drops a literal zero
			req.Temperature = math.SmallestNonzeroFloat32
		}
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return analysis.ModelResponse{}, fmt.Errorf("failed to create chat completion: %w", mapError(err))
	}
	if len(resp.Choices) == 0 {
		return analysis.ModelResponse{}, fmt.Errorf("no choices in chat completion: %w", analysis.ErrEmptyResponse)
	}
	return analysis.Raw(resp.Choices[0].Message.Content), nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", analysis.ErrQuotaExceeded, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", analysis.ErrQuotaExceeded, reqErr.Err)
	}
	return err
}

func pickModel(candidates ...string) string {
	for _, m := range candidates {
		if m != "" {
			return m
		}
	}
	return DefaultModel
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
