package repository

import (
	"context"
	"fmt"
	"strings"

	"macrodesk/internal/analyzer/config"
	"macrodesk/pkg/logger"

	"google.golang.org/genai"
)

// geminiSummarizerRepository produces short aggregate explanations using the
// Google Gemini API.
type geminiSummarizerRepository struct {
	cfg         *config.Config
	logger      *logger.Logger
	genAiClient *genai.Client
}

// NewGeminiSummarizerRepository creates a new SummarizerRepository backed by
// Gemini.
func NewGeminiSummarizerRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) SummarizerRepository {
	return &geminiSummarizerRepository{
		cfg:         cfg,
		logger:      log,
		genAiClient: genAiClient,
	}
}

// Summarize condenses the concatenated evidence titles into one short
// rationale sentence.
func (r *geminiSummarizerRepository) Summarize(ctx context.Context, text string) (string, error) {
	prompt := buildSummaryPrompt(text)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	summary := strings.TrimSpace(resp.Text())
	if summary == "" {
		return "", fmt.Errorf("summarizer returned empty text")
	}

	return summary, nil
}

func buildSummaryPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Summarize the following market news headlines into a single short sentence ")
	b.WriteString("describing the dominant theme. Respond with the sentence only, no preamble.\n\n")
	b.WriteString(text)
	return b.String()
}
