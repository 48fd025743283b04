// Package llm talks to an OpenAI-compatible chat-completion endpoint.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samzong/cmg/internal/logger"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultAPIBase = "https://api.openai.com/v1"

	maxTokens   = 100
	candidates  = 1
	temperature = 0.5
)

var (
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable is not set")
	ErrEmptyResponse = errors.New("LLM returned empty response")
)

// ProviderError is returned when the endpoint answers with a non-2xx status.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("API request failed with status code: %d", e.StatusCode)
}

type Options struct {
	APIKey  string
	APIBase string
	Model   string
	// Timeout bounds each request; zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Prompt     *Prompt
}

type Client struct {
	opts   Options
	prompt Prompt
}

func NewClient(opts Options) *Client {
	prompt := DefaultPrompt()
	if opts.Prompt != nil {
		prompt = *opts.Prompt
	}
	return &Client{opts: opts, prompt: prompt}
}

// BuildRequest assembles the chat-completion payload for diff.
func (c *Client) BuildRequest(model, diff string) openai.ChatCompletionRequest {
	if model == "" {
		model = c.opts.Model
	}
	return openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.prompt.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: c.prompt.UserMessage(diff),
			},
		},
		MaxTokens:   maxTokens,
		N:           candidates,
		Temperature: temperature,
	}
}

// GenerateCommitMessage sends diff to the endpoint once and returns the
// trimmed content of the first choice.
func (c *Client) GenerateCommitMessage(ctx context.Context, diff string) (string, error) {
	resp, err := c.createChatCompletion(ctx, c.BuildRequest("", diff))
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// TestConnection issues a minimal completion to verify credentials and model.
func (c *Client) TestConnection(ctx context.Context, model string) error {
	req := c.BuildRequest(model, "")
	req.Messages = []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "ping"},
	}
	req.MaxTokens = 1

	_, err := c.createChatCompletion(ctx, req)
	return err
}

func (c *Client) createChatCompletion(
	ctx context.Context,
	req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	if strings.TrimSpace(c.opts.APIKey) == "" {
		return openai.ChatCompletionResponse{}, ErrMissingAPIKey
	}

	recorder := &responseRecorder{doer: c.httpClient()}
	clientConfig := openai.DefaultConfig(c.opts.APIKey)
	clientConfig.BaseURL = c.apiBase()
	clientConfig.HTTPClient = recorder
	client := openai.NewClientWithConfig(clientConfig)

	logger.Debugf("Requesting completion from %s with model %s", clientConfig.BaseURL, req.Model)

	resp, err := client.CreateChatCompletion(ctx, req)
	if recorder.status != 0 {
		logger.Debugf("Completion endpoint answered %d", recorder.status)
		return openai.ChatCompletionResponse{}, &ProviderError{
			StatusCode: recorder.status,
			Body:       string(recorder.body),
		}
	}
	if err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("failed to call LLM: %w", err)
	}
	return resp, nil
}

func (c *Client) apiBase() string {
	base := strings.TrimRight(c.opts.APIBase, "/")
	if base == "" {
		return DefaultAPIBase
	}
	return base
}

func (c *Client) httpClient() *http.Client {
	if c.opts.HTTPClient != nil {
		return c.opts.HTTPClient
	}
	return &http.Client{Timeout: c.opts.Timeout}
}

// responseRecorder keeps the status and raw body of a non-2xx response,
// which go-openai would otherwise reduce to a parsed error message.
type responseRecorder struct {
	doer   openai.HTTPDoer
	status int
	body   []byte
}

func (r *responseRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := r.doer.Do(req)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read error response: %w", readErr)
	}
	r.status = resp.StatusCode
	r.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
