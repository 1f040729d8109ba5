package ai

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mizuhara-san/city-ai/internal/models"
)

func TestMockClientReportsModelVersionInThinking(t *testing.T) {
	m := MockClient{ModelVersion: "mock-v1"}

	raw, err := m.GenerateText(context.Background(), `Complaint: "Garbage not collected in Green Park"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(raw, "```json") {
		t.Fatalf("expected fenced response, got %q", raw)
	}

	body := strings.TrimSpace(strings.NewReplacer("```json", "", "```", "").Replace(raw))
	var cls models.Classification
	if err := json.Unmarshal([]byte(body), &cls); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cls.Thinking) == 0 || !strings.Contains(cls.Thinking[0], "mock-v1") {
		t.Fatalf("expected model version in thinking, got %v", cls.Thinking)
	}
	if cls.Category != "Waste Management" {
		t.Fatalf("unexpected category %q", cls.Category)
	}
}

func TestMockClientVisionStaysUnderWordCap(t *testing.T) {
	m := MockClient{ModelVersion: "mock-v1"}

	text, err := m.GenerateVision(context.Background(), "describe", []byte{1, 2, 3}, "image/jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(strings.Fields(text)); n == 0 || n > 50 {
		t.Fatalf("expected 1..50 words, got %d", n)
	}
}
