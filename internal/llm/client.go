// Package llm talks to an OpenAI-compatible API through langchaingo. It
// provides chat completion for the schema describer and text embeddings for
// the vector tools.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.opentelemetry.io/otel/attribute"

	"github.com/aura-assistant/aura/internal/instrumentation"
	"github.com/aura-assistant/aura/internal/schema"
)

// ErrDimensionMismatch is returned when the embedding width differs from the configured one.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client implements schema.Completer and Embedder.
type Client struct {
	model    llms.Model
	embedder embeddings.Embedder
	config   Config
	metrics  *instrumentation.Metrics
}

var (
	_ schema.Completer = (*Client)(nil)
	_ Embedder         = (*Client)(nil)
)

// New creates a Client for the OpenAI API described by config.
func New(config Config) (*Client, error) {
	opts := []openai.Option{
		openai.WithModel(config.Model),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	}
	if config.APIKey != "" {
		opts = append(opts, openai.WithToken(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(model)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return NewWithModel(model, embedder, config), nil
}

// NewWithModel builds a Client from existing langchaingo components.
func NewWithModel(model llms.Model, embedder embeddings.Embedder, config Config) *Client {
	if config.Dimension <= 0 {
		config.Dimension = schema.VectorDimension
	}
	return &Client{model: model, embedder: embedder, config: config}
}

// SetMetrics sets the metrics recorder. Nil disables recording.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

// Complete sends conv in JSON mode at temperature 0 and returns the first choice.
func (c *Client) Complete(ctx context.Context, conv schema.Conversation) (reply string, err error) {
	ctx, span := instrumentation.StartClientSpan(ctx, instrumentation.ServiceLLM, "complete",
		attribute.String(instrumentation.SpanAttrModel, c.config.Model))
	start := time.Now()
	defer func() {
		c.metrics.RecordLLMRequest(ctx, "complete", c.config.Model, status(err), time.Since(start))
		instrumentation.EndSpan(span, err)
	}()

	msgs := make([]llms.MessageContent, 0, conv.Len())
	for _, m := range conv.Messages() {
		msgs = append(msgs, llms.TextParts(messageType(m.Role), m.Content))
	}

	resp, err := c.model.GenerateContent(ctx, msgs,
		llms.WithModel(c.config.Model),
		llms.WithTemperature(0),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// Embed returns the embedding of text.
func (c *Client) Embed(ctx context.Context, text string) (vec []float32, err error) {
	ctx, span := instrumentation.StartClientSpan(ctx, instrumentation.ServiceLLM, "embed",
		attribute.String(instrumentation.SpanAttrModel, c.config.EmbeddingModel))
	start := time.Now()
	defer func() {
		c.metrics.RecordLLMRequest(ctx, "embed", c.config.EmbeddingModel, status(err), time.Since(start))
		instrumentation.EndSpan(span, err)
	}()

	vec, err = c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(vec) != c.config.Dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), c.config.Dimension)
	}
	return vec, nil
}

func messageType(r schema.Role) llms.ChatMessageType {
	switch r {
	case schema.RoleSystem:
		return llms.ChatMessageTypeSystem
	case schema.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

func status(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}
