package repository

import (
	"context"

	"golang-tradebot/internal/engine/dto"
)

// AIRepository scores the sentiment of a news article through an external
// model. It is consumed as a scalar score; model inference stays outside the
// engine.
type AIRepository interface {
	ScoreArticle(ctx context.Context, title, publishedDate, content string) (*dto.ArticleScore, error)
}
