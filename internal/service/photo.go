package service

import (
	"context"
	"strings"
)

const photoAnalysisPrompt = "Analyze this image for a city complaint. Describe the visible problem, size, condition, and safety risk in no more than 50 words. No extra commentary."

// PhotoAnalysisUnavailable is stored when the vision call fails. The
// failure never blocks the rest of the pipeline.
const PhotoAnalysisUnavailable = "AI photo analysis unavailable"

const photoAnalysisWordCap = 50

// AnalyzePhoto asks the vision model to describe the attached image and
// enforces the word cap locally; the model's own compliance with the
// instruction is not trusted. Returns false when analysis failed and the
// placeholder was used instead.
func AnalyzePhoto(ctx context.Context, client visionCaller, image []byte, mimeType string) (string, bool) {
	text, err := client.GenerateVision(ctx, photoAnalysisPrompt, image, mimeType)
	if err != nil {
		return PhotoAnalysisUnavailable, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return PhotoAnalysisUnavailable, false
	}
	return CapWords(text, photoAnalysisWordCap), true
}

type visionCaller interface {
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// CapWords truncates s to its first max words and appends an ellipsis
// marker; text at or under the cap passes through untouched.
func CapWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ") + "..."
}
