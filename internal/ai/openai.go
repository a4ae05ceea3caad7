package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// sdkProvider talks to any OpenAI-compatible chat completions endpoint
// through the official openai-go SDK. OpenRouter and OpenAI differ only in
// base URL and headers.
type sdkProvider struct {
	name   string
	model  string
	client openai.Client
}

// newOpenRouter creates a provider for OpenRouter's OpenAI-compatible API.
func newOpenRouter(cfg ProviderConfig) *sdkProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	var extra []option.RequestOption
	if cfg.Referer != "" {
		extra = append(extra, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		extra = append(extra, option.WithHeader("X-Title", cfg.Title))
	}
	return newSDKProvider("openrouter", cfg, extra...)
}

// newOpenAI creates a provider for the OpenAI API.
func newOpenAI(cfg ProviderConfig) *sdkProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return newSDKProvider("openai", cfg)
}

func newSDKProvider(name string, cfg ProviderConfig, extra ...option.RequestOption) *sdkProvider {
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(base),
		option.WithHTTPClient(&http.Client{Timeout: cfg.timeout()}),
		// Failed completions are reported, never retried.
		option.WithMaxRetries(0),
	}
	opts = append(opts, extra...)

	return &sdkProvider{
		name:   name,
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}
}

func (p *sdkProvider) Name() string { return p.name }

// Complete sends the prompt as a single user message.
func (p *sdkProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%s API error (status %d): %w", p.name, apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("%s completion: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
