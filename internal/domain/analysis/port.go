package analysis

import "context"

// TextExtractor turns a stored document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

type GenerationConfig struct {
	Model       string
	Temperature float32
	JSONOutput  bool
}

// Model is a generative model endpoint.
type Model interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (ModelResponse, error)
}

// DocumentStore archives uploaded source documents and returns their location.
type DocumentStore interface {
	Upload(ctx context.Context, localPath, objectKey string) (string, error)
}
