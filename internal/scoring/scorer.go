package scoring

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"crowsnest/internal/models"
	"crowsnest/pkg/llm"
	"crowsnest/pkg/logging"
)

const (
	// FallbackScore is returned whenever the model is unavailable or its
	// reply cannot be parsed. Neutral on the 1-10 scale.
	FallbackScore = 5

	maxContentChars = 1000
	scoreTimeout    = 30 * time.Second
)

const systemPrompt = `You are a sentiment analysis expert. Analyze social media posts and score them from 1 to 10 where:
- Score 1-3: Very positive, supportive, appreciative, praising, expressing love/joy
- Score 4-5: Neutral or slightly positive/negative, balanced, factual
- Score 6-7: Moderately negative, critical, concerned, disappointed
- Score 8-10: Very negative, hateful, blaming, attacking, extreme criticism, accusations

Consider factors like:
- Overall sentiment (positive, neutral, negative)
- Intensity of emotion
- Presence of hatred, blame, or extreme criticism
- Tone and language used

Respond with ONLY a single integer from 1 to 10, nothing else.`

var scoreRe = regexp.MustCompile(`\b([1-9]|10)\b`)

type Config struct {
	LLM    llm.Provider
	Logger logging.Logger
}

// Scorer classifies post content onto the 1-10 risk scale via the
// completion provider. A nil provider pins every score to FallbackScore.
type Scorer struct {
	llm    llm.Provider
	logger logging.Logger
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{llm: cfg.LLM, logger: cfg.Logger}
}

// Score returns a risk score in [1,10] for the given content. It never
// fails: credential absence, call errors and unparsable replies all
// resolve to FallbackScore.
func (s *Scorer) Score(ctx context.Context, content, platform string) int {
	if s.llm == nil {
		s.logger.Debug("Scorer: LLM provider not configured, using fallback score")
		return FallbackScore
	}

	ctx, cancel := context.WithTimeout(ctx, scoreTimeout)
	defer cancel()

	userPrompt := fmt.Sprintf(`Analyze this %s post and assign a score from 1-10 (1=positive, 10=negative):

%q

Respond with only the integer score (1-10):`, platform, truncate(content, maxContentChars))

	reply, err := s.llm.Complete(ctx, llm.Request{
		Messages:    llm.SystemUser(systemPrompt, userPrompt),
		Temperature: 0.3,
		MaxTokens:   10,
	})
	if err != nil {
		s.logger.WithError(err).Warn("Scorer: completion call failed, using fallback score")
		return FallbackScore
	}
	if reply == "" {
		s.logger.Warn("Scorer: empty completion reply, using fallback score")
		return FallbackScore
	}

	m := scoreRe.FindStringSubmatch(reply)
	if m == nil {
		s.logger.WithField("reply", reply).Warn("Scorer: could not parse score, using fallback")
		return FallbackScore
	}

	score := 0
	fmt.Sscanf(m[1], "%d", &score)
	return clamp(score, 1, 10)
}

// ScoreToSentiment maps a final risk score onto the sentiment enum:
// 1-3 positive, 8-10 negative, everything else neutral.
func ScoreToSentiment(score int) models.Sentiment {
	switch {
	case score <= 3:
		return models.SentimentPositive
	case score >= 8:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
