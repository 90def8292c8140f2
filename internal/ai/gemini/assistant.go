package gemini

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	_ "embed"

	"github.com/civicsource/civicsource/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	defaultCity         = "Memphis, TN"
	defaultMultiplier   = "1.8"
	maxMessageRunes     = 2000
	maxNotesRunes       = 500
)

// PromptOverrides customise the context block of the system prompt.
type PromptOverrides struct {
	City       string
	Multiplier string
	Notes      string
}

// Assistant answers chat messages about the marketplace with Gemini.
type Assistant struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	overrides PromptOverrides
}

func NewAssistant(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Assistant{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Assistant) SetPromptOverrides(overrides PromptOverrides) {
	a.overrides = overrides
}

// Reply sends the sanitized message to Gemini and returns its answer.
func (a *Assistant) Reply(ctx context.Context, message string) (string, error) {
	message = sanitizeMessage(message)
	system := buildPrompt(a.overrides)

	a.logger.Debug("gemini chat request",
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, a.maxLogLen)),
	)

	reply, err := a.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini chat response",
		zap.Int("response_length", utf8.RuneCountInString(reply)),
		zap.String("response_preview", utils.TruncateForLog(reply, a.maxLogLen)),
	)

	return reply, nil
}

func buildPrompt(overrides PromptOverrides) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "City: {{CITY}}\nMultiplier: {{MULTIPLIER}}\nNotes:\n{{NOTES}}"
	}

	city := sanitizeSingleLine(overrides.City)
	if city == "" {
		city = defaultCity
	}
	multiplier := sanitizeSingleLine(overrides.Multiplier)
	if multiplier == "" {
		multiplier = defaultMultiplier
	}

	prompt := strings.ReplaceAll(template, "{{CITY}}", city)
	prompt = strings.ReplaceAll(prompt, "{{MULTIPLIER}}", multiplier)
	prompt = strings.ReplaceAll(prompt, "{{NOTES}}", notesBlock(overrides.Notes))
	return prompt
}

func notesBlock(notes string) string {
	var lines []string
	for _, line := range strings.Split(truncateRunes(neutralizeBrackets(notes), maxNotesRunes), "\n") {
		if line = sanitizeSingleLine(line); line != "" {
			lines = append(lines, "  - "+line)
		}
	}
	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}

// sanitizeMessage drops control characters other than newlines, and caps the length.
func sanitizeMessage(message string) string {
	message = strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, message)
	return truncateRunes(strings.TrimSpace(message), maxMessageRunes)
}

func sanitizeSingleLine(s string) string {
	return strings.Join(strings.Fields(neutralizeBrackets(s)), " ")
}

// neutralizeBrackets keeps user text from opening its own prompt section.
func neutralizeBrackets(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
