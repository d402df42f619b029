package respond

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crowsnest/internal/models"
	"crowsnest/pkg/llm"
	"crowsnest/pkg/logging"
)

const (
	maxPostChars = 500
	draftTimeout = 45 * time.Second
)

const drafterSystemPrompt = `You are a professional administrator responding to social media posts on behalf of the person/organization mentioned.
Generate a professional admin-style response based on the evidence provided from search results.
Write as if you are the admin/representative responding to this post.
Use ONLY the evidence provided.
Generate exactly 2-3 sentences (not more, not less).
Be professional, clear, and evidence-based.
Address the specific claim in the post directly.
Reference specific facts from the evidence when possible.
Make it sound like an official admin response.`

type DrafterConfig struct {
	LLM    llm.Provider
	Logger logging.Logger
}

// Drafter writes suggested admin replies for high-risk posts, grounded
// in whatever evidence was collected for them. A nil provider disables
// drafting; the caller gets an empty draft and no error.
type Drafter struct {
	llm    llm.Provider
	logger logging.Logger
}

func NewDrafter(cfg DrafterConfig) *Drafter {
	return &Drafter{llm: cfg.LLM, logger: cfg.Logger}
}

// Draft produces a 2-3 sentence admin reply to the post. The evidence
// digest is embedded verbatim in the prompt so the model can cite it.
func (d *Drafter) Draft(ctx context.Context, postText string, evidence []models.EvidenceResult) (string, error) {
	if d.llm == nil {
		d.logger.Debug("Drafter: LLM provider not configured, skipping admin response")
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, draftTimeout)
	defer cancel()

	userPrompt := fmt.Sprintf(`Post text: %q

Evidence from search:
%s

Generate a professional admin response to this post based on the evidence. Keep it to 2-3 sentences.`,
		truncate(postText, maxPostChars), evidenceDigest(evidence))

	reply, err := d.llm.Complete(ctx, llm.Request{
		Messages:    llm.SystemUser(drafterSystemPrompt, userPrompt),
		Temperature: 0.6,
		MaxTokens:   200,
	})
	if err != nil {
		return "", fmt.Errorf("failed to draft admin response: %w", err)
	}
	return reply, nil
}

func evidenceDigest(evidence []models.EvidenceResult) string {
	if len(evidence) == 0 {
		return "No evidence found from search."
	}
	blocks := make([]string, 0, len(evidence))
	for i, ev := range evidence {
		body := ev.Snippet
		if body == "" {
			body = ev.TextBlock
		}
		blocks = append(blocks, fmt.Sprintf("EVIDENCE %d:\nTitle: %s\nURL: %s\n%s\n---",
			i+1, ev.Title, ev.URL, body))
	}
	return strings.Join(blocks, "\n\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
