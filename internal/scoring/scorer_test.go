package scoring

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"crowsnest/internal/models"
	"crowsnest/pkg/llm"
)

type stubProvider struct {
	reply string
	err   error
	last  llm.Request
}

func (p *stubProvider) Complete(_ context.Context, req llm.Request) (string, error) {
	p.last = req
	return p.reply, p.err
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestScoreParsesInteger(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
	}{
		{"bare integer", "8", 8},
		{"ten", "10", 10},
		{"wrapped in prose", "I would rate this a 7 out of 10.", 7},
		{"leading whitespace", "  3", 3},
		{"no digit", "negative", FallbackScore},
		{"zero only", "0", FallbackScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{reply: tt.reply}
			s := NewScorer(Config{LLM: p, Logger: testLogger()})
			got := s.Score(context.Background(), "some post", "Twitter")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreRequestShape(t *testing.T) {
	p := &stubProvider{reply: "9"}
	s := NewScorer(Config{LLM: p, Logger: testLogger()})

	s.Score(context.Background(), "Acme Corp is a disaster", "Reddit")

	assert.Len(t, p.last.Messages, 2)
	assert.Equal(t, "system", p.last.Messages[0].Role)
	assert.Equal(t, "user", p.last.Messages[1].Role)
	assert.Contains(t, p.last.Messages[1].Content, "Reddit")
	assert.Contains(t, p.last.Messages[1].Content, "Acme Corp is a disaster")
	assert.Equal(t, 0.3, p.last.Temperature)
	assert.Equal(t, 10, p.last.MaxTokens)
}

func TestScoreTruncatesLongContent(t *testing.T) {
	long := make([]rune, 2500)
	for i := range long {
		long[i] = 'x'
	}
	p := &stubProvider{reply: "5"}
	s := NewScorer(Config{LLM: p, Logger: testLogger()})

	s.Score(context.Background(), string(long), "News")

	assert.LessOrEqual(t, len(p.last.Messages[1].Content), 1200)
}

func TestScoreFallbacks(t *testing.T) {
	t.Run("nil provider", func(t *testing.T) {
		s := NewScorer(Config{Logger: testLogger()})
		assert.Equal(t, FallbackScore, s.Score(context.Background(), "anything", "Twitter"))
	})

	t.Run("provider error", func(t *testing.T) {
		p := &stubProvider{err: errors.New("rate limited")}
		s := NewScorer(Config{LLM: p, Logger: testLogger()})
		assert.Equal(t, FallbackScore, s.Score(context.Background(), "anything", "Twitter"))
	})

	t.Run("empty reply", func(t *testing.T) {
		p := &stubProvider{reply: ""}
		s := NewScorer(Config{LLM: p, Logger: testLogger()})
		assert.Equal(t, FallbackScore, s.Score(context.Background(), "anything", "Twitter"))
	})
}

func TestScoreToSentiment(t *testing.T) {
	tests := []struct {
		score int
		want  models.Sentiment
	}{
		{1, models.SentimentPositive},
		{3, models.SentimentPositive},
		{4, models.SentimentNeutral},
		{7, models.SentimentNeutral},
		{8, models.SentimentNegative},
		{10, models.SentimentNegative},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreToSentiment(tt.score), "score %d", tt.score)
	}
}
