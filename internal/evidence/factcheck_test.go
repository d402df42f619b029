package evidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowsnest/internal/models"
)

func TestFactCheckWithoutEvidence(t *testing.T) {
	result := FactCheck("Acme is hiding losses from investors", nil)

	assert.False(t, result.HasEvidence)
	require.Len(t, result.Claims, 1)

	claim := result.Claims[0]
	assert.Equal(t, "claim-1", claim.ID)
	assert.Equal(t, "Acme is hiding losses from investors", claim.Text)
	assert.Equal(t, VerdictUnverified, claim.Verdict)
	assert.Equal(t, ConfidenceLow, claim.Confidence)
	assert.Empty(t, claim.Sources)
	assert.Contains(t, claim.Explanation, "score >= 8")
}

func TestFactCheckTruncatesPostText(t *testing.T) {
	long := strings.Repeat("x", 600)
	result := FactCheck(long, nil)
	require.Len(t, result.Claims, 1)
	assert.Len(t, result.Claims[0].Text, 500)
}

func TestFactCheckConvertsEvidence(t *testing.T) {
	longSnippet := strings.Repeat("Audited filings show the opposite. ", 6) // > 150 chars
	evidence := []models.EvidenceResult{
		{
			Title:   "AI Summary: Acme earnings were positive",
			URL:     "https://www.google.com/search?q=acme",
			Snippet: longSnippet,
		},
		{
			Title:   "Reuters report",
			URL:     "https://reuters.example/acme",
			Snippet: "Earnings rose twelve percent this quarter, beating analyst expectations.",
		},
		{
			URL: "https://example.com/bare",
		},
	}

	result := FactCheck("ignored when evidence exists", evidence)

	assert.True(t, result.HasEvidence)
	require.Len(t, result.Claims, 3)

	first := result.Claims[0]
	assert.Equal(t, "claim-1", first.ID)
	assert.Equal(t, "Acme earnings were positive", first.Text, "AI Summary prefix stripped")
	assert.Equal(t, ConfidenceHigh, first.Confidence)
	assert.Equal(t, VerdictUnverified, first.Verdict)
	assert.Equal(t, longSnippet, first.CorrectData)
	assert.Contains(t, first.Sources, "https://www.google.com/search?q=acme")

	second := result.Claims[1]
	assert.Equal(t, "Reuters report", second.Text)
	assert.Equal(t, ConfidenceMedium, second.Confidence)
	assert.Equal(t, "Earnings rose twelve percent this quarter, beating analyst expectations.", second.Explanation)

	third := result.Claims[2]
	assert.Equal(t, "Evidence 3: Related Information", third.Text)
	assert.Equal(t, ConfidenceLow, third.Confidence)
	assert.Equal(t, []string{"https://example.com/bare"}, third.Sources)
	assert.Equal(t, "Evidence collected from Google AI Mode.", third.Explanation)
	require.NotNil(t, third.EvidenceItem)
	assert.Equal(t, "https://example.com/bare", third.EvidenceItem.URL)
}
