// Package gemini generates advice with the Gemini generateContent API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash"

type Client struct {
	svc   *generativelanguage.Service
	model string
}

// New creates a client authenticated with apiKey. Extra options are passed
// to the underlying service (endpoint overrides in tests).
func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create generativelanguage service: %w", err)
	}
	return &Client{svc: svc, model: model}, nil
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
	}
	resp, err := c.svc.Models.GenerateContent(modelName(c.model), req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gemini generateContent: %w", err)
	}
	return responseText(resp), nil
}

func modelName(m string) string {
	if strings.HasPrefix(m, "models/") {
		return m
	}
	return "models/" + m
}

// responseText joins the text parts of the first candidate.
func responseText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
