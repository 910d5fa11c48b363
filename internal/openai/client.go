// Package openai provides a thin wrapper around the official OpenAI Go SDK
// for embeddings and short completions.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

var (
	// ErrEmptyInput is returned when CreateEmbedding is called with empty input.
	ErrEmptyInput = errors.New("openai: input text is empty")
	// ErrInvalidDims is returned when dimensions is not positive.
	ErrInvalidDims = errors.New("openai: embedding dimensions must be positive")
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("openai: no embedding in response")
	// ErrDimensionMismatch is returned when the response embedding length does not match configured dimensions.
	ErrDimensionMismatch = errors.New("openai: embedding dimension mismatch")
	// ErrNoCompletionInResponse is returned when a chat response contains no choices.
	ErrNoCompletionInResponse = errors.New("openai: no completion in response")
)

const (
	defaultEmbeddingModel = string(openaisdk.EmbeddingModelTextEmbedding3Large)
	defaultDimension      = 3072
	defaultChatModel      = "gpt-4o-mini"

	// Caps on the cluster sample sent to the labeling prompt.
	maxLabelTitles    = 15
	maxLabelSummaries = 5
)

// Client calls the OpenAI API via the official SDK.
type Client struct {
	sdk            openaisdk.Client
	embeddingModel string
	dimensions     int
	chatModel      string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithEmbeddingModel sets the embedding model.
func WithEmbeddingModel(model string) ClientOption {
	return func(c *Client) {
		c.embeddingModel = model
	}
}

// WithDimensions sets the requested embedding dimension (must match DB column).
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// WithChatModel sets the model used for theme labeling.
func WithChatModel(model string) ClientOption {
	return func(c *Client) {
		c.chatModel = model
	}
}

// NewClient creates an OpenAI client using the official SDK.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		sdk:            openaisdk.NewClient(option.WithAPIKey(apiKey)),
		embeddingModel: defaultEmbeddingModel,
		dimensions:     defaultDimension,
		chatModel:      defaultChatModel,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// CreateEmbedding returns the embedding vector for the given text.
// The returned slice length equals the configured dimensions.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 {
		return nil, ErrInvalidDims
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(input),
		},
		Model:      openaisdk.EmbeddingModel(c.embeddingModel),
		Dimensions: param.NewOpt(int64(c.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	emb := resp.Data[0].Embedding
	if len(emb) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), c.dimensions)
	}

	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}

	return out, nil
}

// GenerateThemeLabel asks the chat model for a short theme label describing
// a cluster of ideas, given member titles and summaries.
func (c *Client) GenerateThemeLabel(ctx context.Context, titles, summaries []string) (string, error) {
	if len(titles) > maxLabelTitles {
		titles = titles[:maxLabelTitles]
	}

	var nonEmptySummaries []string

	for _, s := range summaries {
		if strings.TrimSpace(s) == "" {
			continue
		}

		nonEmptySummaries = append(nonEmptySummaries, s)
		if len(nonEmptySummaries) == maxLabelSummaries {
			break
		}
	}

	var prompt strings.Builder

	prompt.WriteString("These employee improvement ideas belong to one thematic cluster.\n\nTitles:\n")

	for _, t := range titles {
		prompt.WriteString("- ")
		prompt.WriteString(t)
		prompt.WriteString("\n")
	}

	if len(nonEmptySummaries) > 0 {
		prompt.WriteString("\nSummaries:\n")

		for _, s := range nonEmptySummaries {
			prompt.WriteString("- ")
			prompt.WriteString(s)
			prompt.WriteString("\n")
		}
	}

	prompt.WriteString("\nReply with a concise theme label (2-5 words), no quotes, no punctuation at the end.")

	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.chatModel),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage("You name clusters of workplace improvement ideas with short, specific theme labels."),
			openaisdk.UserMessage(prompt.String()),
		},
		Temperature: param.NewOpt(0.3),
	})
	if err != nil {
		return "", fmt.Errorf("openai theme label: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoCompletionInResponse
	}

	label := strings.TrimSpace(resp.Choices[0].Message.Content)
	label = strings.Trim(label, `"'`)

	return label, nil
}
