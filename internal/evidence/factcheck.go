package evidence

import (
	"fmt"
	"strings"

	"crowsnest/internal/models"
)

type Verdict string

const (
	VerdictTrue       Verdict = "true"
	VerdictFalse      Verdict = "false"
	VerdictMisleading Verdict = "misleading"
	VerdictUnverified Verdict = "unverified"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Claim is one reviewable fact-check item derived from stored evidence.
// Claims are presented as-is for human review, so the verdict stays
// unverified unless a future analysis step upgrades it.
type Claim struct {
	ID           string                 `json:"id"`
	Text         string                 `json:"text"`
	Verdict      Verdict                `json:"verdict"`
	Confidence   Confidence             `json:"confidence"`
	CorrectData  string                 `json:"correctData,omitempty"`
	Sources      []string               `json:"sources"`
	Explanation  string                 `json:"explanation"`
	EvidenceItem *models.EvidenceResult `json:"evidenceItem,omitempty"`
}

type FactCheckResult struct {
	Claims      []Claim `json:"claims"`
	HasEvidence bool    `json:"hasEvidence"`
}

const maxClaimTextChars = 500

// FactCheck turns the evidence stored for a post into reviewable claims.
// Without evidence the post itself becomes a single unverified claim,
// since evidence is only collected for high-risk posts.
func FactCheck(postContent string, evidence []models.EvidenceResult) FactCheckResult {
	if len(evidence) == 0 {
		return FactCheckResult{
			Claims: []Claim{{
				ID:         "claim-1",
				Text:       truncate(postContent, maxClaimTextChars),
				Verdict:    VerdictUnverified,
				Confidence: ConfidenceLow,
				Sources:    []string{},
				Explanation: "No evidence available for fact-checking. " +
					"Evidence is only collected for high-risk posts (score >= 8).",
			}},
			HasEvidence: false,
		}
	}

	claims := make([]Claim, 0, len(evidence))
	for i, ev := range evidence {
		ev := ev
		snippet := ev.Snippet
		if snippet == "" {
			snippet = ev.TextBlock
		}

		text := strings.TrimSpace(strings.TrimPrefix(ev.Title, "AI Summary:"))
		if text == "" {
			text = snippet
		}
		if text == "" {
			text = fmt.Sprintf("Evidence %d: Related Information", i+1)
		}

		confidence := ConfidenceLow
		switch {
		case len(snippet) > 150 && ev.URL != "":
			confidence = ConfidenceHigh
		case len(snippet) > 50:
			confidence = ConfidenceMedium
		}

		var sources []string
		if ev.URL != "" {
			sources = append(sources, ev.URL)
		}
		if ev.Title != "" && ev.Title != ev.URL {
			sources = append(sources, ev.Title)
		}
		if len(sources) == 0 {
			sources = []string{"Unknown source"}
		}

		explanation := snippet
		if explanation == "" {
			if ev.Title != "" {
				explanation = "Evidence collected from Google AI Mode: " + ev.Title
			} else {
				explanation = "Evidence collected from Google AI Mode."
			}
		}

		claims = append(claims, Claim{
			ID:           fmt.Sprintf("claim-%d", i+1),
			Text:         text,
			Verdict:      VerdictUnverified,
			Confidence:   confidence,
			CorrectData:  snippet,
			Sources:      sources,
			Explanation:  explanation,
			EvidenceItem: &ev,
		})
	}

	return FactCheckResult{Claims: claims, HasEvidence: true}
}
