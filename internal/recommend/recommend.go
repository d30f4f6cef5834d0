// Package recommend asks a hosted chat-completion model for strain
// recommendations and validates the structured answer.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atinyakov/GreenCart/internal/models"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"
)

var (
	// ErrEmptyPreferences is returned when the preference text is blank.
	ErrEmptyPreferences = errors.New("preferences must not be empty")
	// ErrSchema is returned when the model output does not match the expected schema.
	ErrSchema = errors.New("completion output failed schema validation")
	// ErrUpstream is returned when the completion endpoint fails.
	ErrUpstream = errors.New("completion endpoint error")
)

// maxPreferenceLen caps the preference text in bytes.
const maxPreferenceLen = 2000

const schemaName = "strain_recommendations"

const systemPrompt = `You are a budtender. Recommend cannabis strains for the customer's stated preferences.
Return between 1 and 5 recommendations, each with the strain name and a one sentence reason.`

// answer is the structured output requested from the model.
type answer struct {
	Recommendations []models.Recommendation `json:"recommendations"`
}

// Client talks to an OpenAI-compatible chat completions API.
type Client struct {
	api    *openai.Client
	model  string
	schema *jsonschema.Definition
	log    *zap.Logger
}

// NewClient returns a Client for the API rooted at baseURL, for example
// https://api.openai.com/v1. Requests time out after 30 seconds.
func NewClient(baseURL, apiKey, model string, log *zap.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}

	schema, err := jsonschema.GenerateSchemaForType(answer{})
	if err != nil {
		panic(fmt.Sprintf("recommend: build response schema: %v", err))
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		schema: schema,
		log:    log,
	}
}

// Recommend returns strain suggestions for the free-text preferences.
// The call is not retried.
func (c *Client) Recommend(ctx context.Context, preferences string) ([]models.Recommendation, error) {
	preferences = strings.TrimSpace(preferences)
	if preferences == "" {
		return nil, ErrEmptyPreferences
	}
	preferences = truncate(preferences, maxPreferenceLen)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: preferences},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: c.schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		switch {
		case errors.As(err, &apiErr):
			c.log.Warn("completion endpoint returned error",
				zap.Int("status", apiErr.HTTPStatusCode), zap.String("message", apiErr.Message))
		case errors.As(err, &reqErr):
			c.log.Warn("completion endpoint returned error",
				zap.Int("status", reqErr.HTTPStatusCode), zap.Error(reqErr.Err))
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrSchema)
	}

	recs, err := Parse([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		c.log.Warn("rejected completion output", zap.Error(err))
		return nil, err
	}
	return recs, nil
}

// truncate shortens s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// Parse decodes model output and validates it. Unknown fields are rejected.
func Parse(content []byte) ([]models.Recommendation, error) {
	var out answer
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := Validate(out.Recommendations); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

// Validate checks that recs holds at least one item and every item has a
// non-empty strain and reason.
func Validate(recs []models.Recommendation) error {
	if len(recs) == 0 {
		return fmt.Errorf("%w: no recommendations", ErrSchema)
	}
	for i, r := range recs {
		if strings.TrimSpace(r.Strain) == "" {
			return fmt.Errorf("%w: item %d: missing strain", ErrSchema, i)
		}
		if strings.TrimSpace(r.Reason) == "" {
			return fmt.Errorf("%w: item %d: missing reason", ErrSchema, i)
		}
	}
	return nil
}
