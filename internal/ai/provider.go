package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
)

var (
	ErrNoAPIKey           = errors.New("API key not set")
	ErrInvalidCredentials = errors.New("invalid API credentials")
	ErrQuotaExhausted     = errors.New("provider quota exhausted")
	ErrMalformedResponse  = errors.New("malformed provider response")
	ErrRateLimited        = errors.New("rate limited")
	ErrUsageLimitExceeded = errors.New("usage limit exceeded")
)

// ChatRequest is a provider-agnostic chat call.
type ChatRequest struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Usage reports token consumption for a single call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ChatResponse is the uniform result of a provider call.
type ChatResponse struct {
	Content string
	Usage   Usage
	Model   string
}

// Provider is the uniform adapter over a remote AI service. All
// provider-specific request/response shaping lives behind it (BYOK).
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// CallError wraps a provider failure with retry metadata for the pipeline.
type CallError struct {
	Err        error
	Retryable  bool
	RetryAfter time.Duration // provider-specified delay, 0 if none
}

func (e *CallError) Error() string {
	return e.Err.Error()
}

func (e *CallError) Unwrap() error {
	return e.Err
}

func fatal(err error) *CallError {
	return &CallError{Err: err, Retryable: false}
}

func retryable(err error) *CallError {
	return &CallError{Err: err, Retryable: true}
}

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates an Anthropic-backed provider.
func NewAnthropicProvider(apiKey, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY", ErrNoAPIKey)
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(apiKey),
		model:  model,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	prompt := req.Prompt
	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{{Type: "text", Text: &prompt}},
			},
		},
	})
	if err != nil {
		return nil, classifyAnthropicErr(err)
	}

	if len(resp.Content) == 0 {
		return nil, fatal(fmt.Errorf("%w: empty content from anthropic", ErrMalformedResponse))
	}

	return &ChatResponse{
		Content: resp.Content[0].GetText(),
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
		Model: string(resp.Model),
	}, nil
}

func classifyAnthropicErr(err error) *CallError {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsRateLimitErr():
			return retryable(fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message))
		case apiErr.IsOverloadedErr(), apiErr.IsApiErr():
			return retryable(err)
		case apiErr.IsAuthenticationErr():
			return fatal(fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Message))
		default:
			return fatal(err)
		}
	}

	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.StatusCode == 429 || reqErr.StatusCode >= 500 {
			return retryable(err)
		}
		return fatal(err)
	}

	// Network-level failure: worth retrying
	return retryable(err)
}

// OpenAIProvider calls the OpenAI chat completions API. It also serves
// OpenAI-compatible endpoints (OpenRouter) via a custom base URL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIProvider creates an OpenAI-backed provider. baseURL may be ""
// for the default endpoint.
func NewOpenAIProvider(apiKey, model, baseURL, name string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoAPIKey, name)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		name:   name,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: req.MaxTokens,
		Messages:  messages,
	})
	if err != nil {
		return nil, classifyOpenAIErr(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fatal(fmt.Errorf("%w: empty choices from %s", ErrMalformedResponse, p.name))
	}

	return &ChatResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Model: resp.Model,
	}, nil
}

func classifyOpenAIErr(err error) *CallError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return fatal(fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Message))
		case apiErr.HTTPStatusCode == 429:
			if apiErr.Type == "insufficient_quota" {
				return fatal(fmt.Errorf("%w: %s", ErrQuotaExhausted, apiErr.Message))
			}
			return retryable(fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message))
		case apiErr.HTTPStatusCode >= 500:
			return retryable(err)
		default:
			return fatal(err)
		}
	}

	return retryable(err)
}
