package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	maxRetries     = 3
	initialBackoff = time.Second
)

var (
	// ErrEmptyResponse is returned when the model produced no usable text
	ErrEmptyResponse = errors.New("model returned empty content")
	// ErrBlocked is returned when the prompt was rejected by safety filters;
	// retrying the same prompt cannot help
	ErrBlocked = errors.New("prompt blocked by model")
)

// Result holds one generation outcome
type Result struct {
	Text       string
	TokensUsed int
}

// Client wraps the Gemini client with bounded retry and JSON response mode
type Client struct {
	genai *genai.Client
	model string
}

// New creates a client for the given model
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	return &Client{genai: gc, model: model}, nil
}

// ModelName returns the configured model identifier
func (c *Client) ModelName() string {
	return c.model
}

// Close releases the underlying client
func (c *Client) Close() error {
	return c.genai.Close()
}

// Generate produces free text for the prompt
func (c *Client) Generate(ctx context.Context, prompt string, temperature float32) (*Result, error) {
	model := c.genai.GenerativeModel(c.model)
	model.SetTemperature(temperature)
	return c.generate(ctx, model, prompt)
}

// GenerateJSON produces a JSON document for the prompt using the model's JSON
// response mode
func (c *Client) GenerateJSON(ctx context.Context, prompt string, temperature float32) (*Result, error) {
	model := c.genai.GenerativeModel(c.model)
	model.SetTemperature(temperature)
	model.ResponseMIMEType = "application/json"

	res, err := c.generate(ctx, model, prompt)
	if err != nil {
		return nil, err
	}
	res.Text = stripFences(res.Text)
	return res, nil
}

func (c *Client) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (*Result, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			continue
		}

		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return nil, fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
		}

		text := flatten(resp)
		if text == "" {
			lastErr = ErrEmptyResponse
			continue
		}

		res := &Result{Text: text}
		if resp.UsageMetadata != nil {
			res.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
		}
		return res, nil
	}

	return nil, fmt.Errorf("generation failed after %d attempts: %w", maxRetries, lastErr)
}

// flatten joins all text parts across candidates
func flatten(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}
	return builder.String()
}

// stripFences removes a surrounding markdown code fence if the model added one
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
