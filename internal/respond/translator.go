package respond

import (
	"context"
	"fmt"
	"time"

	"crowsnest/pkg/llm"
	"crowsnest/pkg/logging"
)

const (
	maxTranslateChars = 1000
	translateTimeout  = 30 * time.Second
)

const translatorSystemPrompt = `You are a translation assistant. Translate the given text to English.
If the text is already in English, return it as-is.
If the text is in another language, translate it to clear, natural English.
Preserve the tone and style of the original text.
Return ONLY the translated text, nothing else.`

type TranslatorConfig struct {
	LLM    llm.Provider
	Logger logging.Logger
}

// Translator renders post content into English on demand. Language
// detection is left to the model; English input comes back unchanged.
type Translator struct {
	llm    llm.Provider
	logger logging.Logger
}

func NewTranslator(cfg TranslatorConfig) *Translator {
	return &Translator{llm: cfg.LLM, logger: cfg.Logger}
}

func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	if t.llm == nil {
		t.logger.Debug("Translator: LLM provider not configured, skipping translation")
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, translateTimeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Translate this text to English:\n\n%q", truncate(text, maxTranslateChars))

	reply, err := t.llm.Complete(ctx, llm.Request{
		Messages:    llm.SystemUser(translatorSystemPrompt, userPrompt),
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("failed to translate text: %w", err)
	}
	if reply == "" {
		t.logger.Warn("Translator: empty completion reply")
		return "", nil
	}
	return reply, nil
}
