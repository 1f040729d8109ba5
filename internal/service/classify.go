package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mizuhara-san/city-ai/internal/ai"
	"github.com/mizuhara-san/city-ai/internal/models"
)

// ErrClassificationParse covers every way the classifier can let us down:
// transport failure, non-JSON output, or a response outside the category
// and priority enumerations. Callers recover with FallbackClassification.
var ErrClassificationParse = errors.New("classifier response could not be parsed")

const classifyPromptFormat = `You are an intelligent AI agent for city complaints.
Think step by step and respond in this JSON format only:

{
  "thinking": ["step 1", "step 2", "step 3"],
  "category": %s,
  "location": "extracted location or 'No location mentioned'",
  "priority": "Low", "Medium", or "High",
  "summary": "short summary"
}

Complaint: "%s"`

// BuildClassifyPrompt renders the fixed classification instruction for one
// complaint body.
func BuildClassifyPrompt(message string) string {
	quoted := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		quoted = append(quoted, fmt.Sprintf("%q", c))
	}
	return fmt.Sprintf(classifyPromptFormat, strings.Join(quoted, " or "), message)
}

// Classify makes exactly one inference call for the complaint body and
// parses the result. It never retries; retrying is the caller's decision.
func Classify(ctx context.Context, client ai.Client, message string) (models.Classification, error) {
	raw, err := client.GenerateText(ctx, BuildClassifyPrompt(message))
	if err != nil {
		return models.Classification{}, fmt.Errorf("%w: %v", ErrClassificationParse, err)
	}
	return ParseClassification(raw)
}

// ParseClassification strips Markdown code fences, parses the JSON object,
// and normalizes category and priority against their enumerations. A
// response outside them is treated the same as unparseable output.
func ParseClassification(raw string) (models.Classification, error) {
	text := StripCodeFences(raw)

	var cls models.Classification
	if err := json.Unmarshal([]byte(text), &cls); err != nil {
		return models.Classification{}, fmt.Errorf("%w: %v", ErrClassificationParse, err)
	}

	category, ok := models.NormalizeCategory(cls.Category)
	if !ok {
		return models.Classification{}, fmt.Errorf("%w: unknown category %q", ErrClassificationParse, cls.Category)
	}
	priority, ok := models.NormalizePriority(cls.Priority)
	if !ok {
		return models.Classification{}, fmt.Errorf("%w: unknown priority %q", ErrClassificationParse, cls.Priority)
	}
	if strings.TrimSpace(cls.Summary) == "" {
		return models.Classification{}, fmt.Errorf("%w: missing summary", ErrClassificationParse)
	}

	cls.Category = category
	cls.Priority = string(priority)
	cls.Location = strings.TrimSpace(cls.Location)
	cls.Summary = strings.TrimSpace(cls.Summary)
	if len(cls.Thinking) == 0 {
		cls.Thinking = []string{"Analysis complete"}
	}
	return cls, nil
}

// StripCodeFences removes Markdown fence markers the model may wrap its
// JSON in. Normalization only; the parse itself decides validity.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

const fallbackTraceNote = "Used fallback classification"

// FallbackClassification is the deterministic safe default applied when
// classification fails. Total: it always yields a storable result.
func FallbackClassification(message string) models.Classification {
	return models.Classification{
		Thinking: []string{fallbackTraceNote},
		Category: "Roads & Potholes",
		Location: "No location mentioned",
		Priority: string(models.PriorityMedium),
		Summary:  firstNChars(message, 100),
	}
}

func firstNChars(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
