package classify

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

var verdictSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"isThreat": {
			Type:        genai.TypeBoolean,
			Description: "Is the file a potential threat?",
		},
		"threatType": {
			Type:        genai.TypeString,
			Description: "Type of threat, e.g., 'Malware', 'Adware', 'Spyware', 'Phishing', 'Keylogger', 'Potentially Unwanted Program', or 'Clean' if not a threat.",
		},
		"recommendation": {
			Type:        genai.TypeString,
			Description: "A brief recommendation, e.g., 'Quarantine Recommended', 'Delete Immediately', or 'No Action Needed'.",
		},
	},
	Required: []string{"isThreat", "threatType", "recommendation"},
}

// GeminiGenerator calls the Gemini API with a JSON response schema.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   verdictSchema,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
