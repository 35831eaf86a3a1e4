package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository scores article sentiment through the Google Gemini API.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		genAiClient:    genAiClient,
	}, nil
}

const scoreArticlePrompt = `You are a financial news analyst. Analyze the following article and respond with JSON only, no markdown fences, matching this schema:
{"sentiment_score": <float -1..1>, "sentiment_label": "positive|neutral|negative", "summary": "<one sentence>", "asset_codes": ["<ticker>", ...]}

Title: %s
Published: %s

%s`

// ScoreArticle performs sentiment scoring of a single article.
func (r *geminiAIRepository) ScoreArticle(ctx context.Context, title, publishedDate, content string) (*dto.ArticleScore, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	prompt := fmt.Sprintf(scoreArticlePrompt, title, publishedDate, content)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned an empty response")
	}

	return parseArticleScore(text)
}

func parseArticleScore(text string) (*dto.ArticleScore, error) {
	// Models occasionally wrap JSON in markdown fences despite instructions.
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var score dto.ArticleScore
	if err := json.Unmarshal([]byte(cleaned), &score); err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}

	if score.SentimentScore > 1 {
		score.SentimentScore = 1
	}
	if score.SentimentScore < -1 {
		score.SentimentScore = -1
	}

	return &score, nil
}
