package llm

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

const vertexModel = "gemini-1.5-flash"

// VertexAIClient wraps the Vertex AI Gemini API
type VertexAIClient struct {
	client    *genai.Client
	projectID string
	location  string
}

// NewVertexAIClient creates a new Vertex AI client. credentialsPath may be
// empty to use application default credentials.
func NewVertexAIClient(ctx context.Context, projectID, location, credentialsPath string) (*VertexAIClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("google cloud project not configured")
	}
	if location == "" {
		location = "us-central1"
	}

	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := genai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexAIClient{
		client:    client,
		projectID: projectID,
		location:  location,
	}, nil
}

// Complete sends the prompt with the system text as system instruction
func (v *VertexAIClient) Complete(ctx context.Context, req Request) (string, error) {
	model := v.client.GenerativeModel(vertexModel)
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	slog.Info("requesting completion", "provider", "vertexai", "model", vertexModel, "project", v.projectID, "location", v.location)

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", &Error{Provider: "vertexai", Message: err.Error(), Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &Error{Provider: "vertexai", Message: "no response candidates returned"}
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}

	return result, nil
}

// Close closes the Vertex AI client
func (v *VertexAIClient) Close() error {
	return v.client.Close()
}
