package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mizuhara-san/city-ai/internal/models"
	"github.com/mizuhara-san/city-ai/internal/utils"
)

// MockClient is a deterministic stand-in used when no Gemini key is
// configured. It answers the classification prompt with fenced JSON so the
// full response-normalization path runs in development too.
type MockClient struct {
	ModelVersion string
}

func (m MockClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	message := extractComplaint(prompt)
	lower := strings.ToLower(message)

	category := "Roads & Potholes"
	switch {
	case containsAny(lower, "garbage", "waste", "trash", "dump"):
		category = "Waste Management"
	case containsAny(lower, "streetlight", "street light", "lamp"):
		category = "Streetlights"
	case containsAny(lower, "water", "pipeline", "sewage"):
		category = "Water Supply"
	case containsAny(lower, "dead animal", "carcass"):
		category = "Animal Deaths"
	case containsAny(lower, "accident", "collision", "crash"):
		category = "Accidents"
	case containsAny(lower, "blocked", "blockage", "fallen tree"):
		category = "Road Blockage"
	case containsAny(lower, "pothole", "road", "crack"):
		category = "Roads & Potholes"
	}

	priority := models.PriorityMedium
	if containsAny(lower, "danger", "urgent", "unsafe", "injur", "emergency") {
		priority = models.PriorityHigh
	} else if utils.HashStringToUint64(message)%3 == 0 {
		priority = models.PriorityLow
	}

	summary := message
	if words := strings.Fields(summary); len(words) > 12 {
		summary = strings.Join(words[:12], " ")
	}

	cls := models.Classification{
		Thinking: []string{
			fmt.Sprintf("Model %s reading the complaint text", m.ModelVersion),
			"Matching it against known complaint categories",
			fmt.Sprintf("Selected %q with %s priority", category, priority),
		},
		Category: category,
		Location: "No location mentioned",
		Priority: string(priority),
		Summary:  summary,
	}
	b, err := json.Marshal(cls)
	if err != nil {
		return "", err
	}
	return "```json\n" + string(b) + "\n```", nil
}

func (m MockClient) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	h := utils.HashStringToUint64(fmt.Sprintf("%s:%d", mimeType, len(image)))
	conditions := []string{"severe", "moderate", "minor"}
	condition := conditions[h%uint64(len(conditions))]
	return fmt.Sprintf(
		"The photo shows a %s civic issue affecting the immediate area. The damage appears established rather than fresh and poses a safety risk to pedestrians and vehicles passing nearby.",
		condition,
	), nil
}

// extractComplaint pulls the quoted citizen message back out of the
// classification prompt. Falls back to the whole prompt if the marker is
// missing, which keeps the mock total.
func extractComplaint(prompt string) string {
	const marker = `Complaint: "`
	idx := strings.LastIndex(prompt, marker)
	if idx < 0 {
		return prompt
	}
	rest := prompt[idx+len(marker):]
	if end := strings.LastIndex(rest, `"`); end >= 0 {
		return rest[:end]
	}
	return rest
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
