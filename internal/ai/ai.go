package ai

import "context"

// Client is the text/vision inference collaborator. Implementations return
// the model's freeform text output; interpreting it is the caller's job.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
