// Package llm implements the embedding and generation capabilities on the
// OpenAI API. Both sides of the pipeline go through the same client so that
// query-time and ingestion-time embeddings come from the same model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// DefaultChatModel answers user questions.
	DefaultChatModel = "gpt-3.5-turbo"

	// DefaultEmbeddingModel produces article and query vectors.
	DefaultEmbeddingModel = "text-embedding-ada-002"

	// DefaultTemperature keeps answers factual.
	DefaultTemperature = 0.3

	// DefaultGenerateTimeout is generous but finite: generation must not
	// block a request indefinitely.
	DefaultGenerateTimeout = 120 * time.Second

	// DefaultEmbedTimeout bounds a single embedding call.
	DefaultEmbedTimeout = 30 * time.Second
)

// ErrAPIKeyNotSet means the OpenAI credential is missing from the environment.
var ErrAPIKeyNotSet = errors.New("OpenAI API key not set")

// Client wraps the OpenAI SDK behind the domain Embedder and Generator
// interfaces.
type Client struct {
	client          openai.Client
	chatModel       string
	embeddingModel  string
	temperature     float64
	generateTimeout time.Duration
	embedTimeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithChatModel overrides the chat model.
func WithChatModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.chatModel = model
		}
	}
}

// WithEmbeddingModel overrides the embedding model.
func WithEmbeddingModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.embeddingModel = model
		}
	}
}

// WithGenerateTimeout overrides the generation ceiling.
func WithGenerateTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.generateTimeout = d
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// NewClient creates a client from the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	c := &Client{
		client:          openai.NewClient(option.WithAPIKey(apiKey)),
		chatModel:       DefaultChatModel,
		embeddingModel:  DefaultEmbeddingModel,
		temperature:     DefaultTemperature,
		generateTimeout: DefaultGenerateTimeout,
		embedTimeout:    DefaultEmbedTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.embedTimeout)
	defer cancel()

	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned")
	}

	vector := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}

// Generate produces the model's answer for the given system message and
// prompt. No retry beyond the SDK's own transport retries; failures surface
// to the caller.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.chatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
