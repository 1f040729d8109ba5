package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubVision struct {
	resp string
	err  error
}

func (s stubVision) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return s.resp, s.err
}

func TestCapWordsTruncatesLongText(t *testing.T) {
	words := make([]string, 80)
	for i := range words {
		words[i] = "word"
	}
	capped := CapWords(strings.Join(words, " "), 50)
	got := strings.Fields(capped)
	if len(got) != 50 {
		t.Fatalf("expected 50 words, got %d", len(got))
	}
	if !strings.HasSuffix(capped, "...") {
		t.Fatalf("expected ellipsis marker, got %q", capped)
	}
	if got[49] != "word..." {
		t.Fatalf("marker should attach to the last word, got %q", got[49])
	}
}

func TestCapWordsLeavesShortTextAlone(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 50))
	if out := CapWords(text, 50); out != text {
		t.Fatalf("text at the cap should pass through, got %q", out)
	}
}

func TestAnalyzePhotoCapsModelOutput(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("debris ", 80))
	analysis, ok := AnalyzePhoto(context.Background(), stubVision{resp: long}, []byte{1}, "image/jpeg")
	if !ok {
		t.Fatalf("expected success")
	}
	if n := len(strings.Fields(analysis)); n != 50 {
		t.Fatalf("expected 50 words, got %d", n)
	}
}

func TestAnalyzePhotoFailureUsesPlaceholder(t *testing.T) {
	analysis, ok := AnalyzePhoto(context.Background(), stubVision{err: errors.New("boom")}, []byte{1}, "image/jpeg")
	if ok {
		t.Fatalf("expected failure")
	}
	if analysis != PhotoAnalysisUnavailable {
		t.Fatalf("expected placeholder, got %q", analysis)
	}
}

func TestAnalyzePhotoEmptyResponseUsesPlaceholder(t *testing.T) {
	analysis, ok := AnalyzePhoto(context.Background(), stubVision{resp: "   "}, []byte{1}, "image/jpeg")
	if ok || analysis != PhotoAnalysisUnavailable {
		t.Fatalf("expected placeholder for blank response, got %q", analysis)
	}
}
