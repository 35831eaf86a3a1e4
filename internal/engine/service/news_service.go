package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/internal/engine/repository"
	"golang-tradebot/internal/entity"
	"golang-tradebot/pkg/common"
	"golang-tradebot/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/redis/go-redis/v9"
)

// NewsService collects articles from the configured RSS feeds, scores their
// sentiment, maps them to assets of the universe, and stores them for the
// sentiment provider to aggregate.
type NewsService interface {
	ProcessTask(ctx context.Context)
	Scan(ctx context.Context) error
}

type newsService struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	assetRepo   repository.AssetRepository
	newsRepo    repository.NewsRepository
	aiRepo      repository.AIRepository // nil when the keyword scorer is used
	feedParser  *gofeed.Parser
	httpClient  *http.Client
}

func NewNewsService(cfg *config.Config, log *logger.Logger,
	redisClient *redis.Client,
	assetRepo repository.AssetRepository,
	newsRepo repository.NewsRepository,
	aiRepo repository.AIRepository) NewsService {
	return &newsService{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
		assetRepo:   assetRepo,
		newsRepo:    newsRepo,
		aiRepo:      aiRepo,
		feedParser:  gofeed.NewParser(),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ProcessTask consumes one news-scan trigger from the Redis stream.
func (s *newsService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamNewsScan, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()
	if err != nil {
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.log.Error("Failed to read from news scan stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]

	taskData, ok := message.Values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", message.ID))
		return
	}

	var streamData dto.StreamDataNewsScan
	if err := json.Unmarshal([]byte(taskData), &streamData); err != nil {
		s.log.Error("Failed to unmarshal news scan payload", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	if err := s.Scan(ctx); err != nil {
		s.log.Error("News scan failed", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	if err := s.redisClient.XAck(ctx, common.RedisStreamNewsScan, common.RedisStreamGroup, message.ID).Err(); err != nil {
		s.log.Error("Failed to acknowledge news scan task", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}
	if err := s.redisClient.XDel(ctx, common.RedisStreamNewsScan, message.ID).Err(); err != nil {
		s.log.Error("Failed to delete news scan task", logger.ErrorField(err), logger.Field("message_id", message.ID))
	}
}

// Scan fetches every configured feed and stores the new articles. Per-feed
// and per-article failures are isolated.
func (s *newsService) Scan(ctx context.Context) error {
	assets, err := s.assetRepo.GetAssets(ctx)
	if err != nil {
		return fmt.Errorf("failed to load asset universe: %w", err)
	}

	maxAge := time.Duration(s.cfg.News.MaxArticleAgeDays) * 24 * time.Hour
	var stored int

	for _, feedURL := range s.cfg.News.FeedURLs {
		feed, err := s.feedParser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			s.log.Error("Failed to parse feed", logger.ErrorField(err), logger.StringField("feed_url", feedURL))
			continue
		}

		for _, item := range feed.Items {
			if s.cfg.News.MaxArticles > 0 && stored >= s.cfg.News.MaxArticles {
				break
			}

			published := time.Now()
			if item.PublishedParsed != nil {
				published = *item.PublishedParsed
			}
			if maxAge > 0 && time.Since(published) > maxAge {
				continue
			}
			if s.isBlacklisted(item.Link) {
				continue
			}

			ok, err := s.processItem(ctx, item, published, assets, feed.Title)
			if err != nil {
				s.log.Error("Failed to process article", logger.ErrorField(err), logger.StringField("link", item.Link))
				continue
			}
			if ok {
				stored++
			}
		}
	}

	s.log.InfoContext(ctx, "News scan completed", logger.IntField("stored", stored))
	return nil
}

func (s *newsService) processItem(ctx context.Context, item *gofeed.Item, published time.Time, assets []entity.Asset, source string) (bool, error) {
	hash := hashLink(item.Link)
	exists, err := s.newsRepo.ExistsByHash(ctx, hash)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	text := item.Title + " " + item.Description
	if s.cfg.News.FetchArticleBody {
		if body, err := s.fetchArticleBody(ctx, item.Link); err != nil {
			s.log.Debug("Failed to fetch article body, scoring title and description only",
				logger.ErrorField(err), logger.StringField("link", item.Link))
		} else {
			text = text + " " + body
		}
	}

	score, label, summary := s.scoreArticle(ctx, item, published, text)

	// One row per mentioned asset; a row with an empty asset code records
	// market-wide sentiment.
	matched := false
	for _, asset := range assets {
		hits := MatchAssetKeywords(text, asset.Keywords)
		if hits == 0 {
			continue
		}
		matched = true
		article := entity.NewsArticle{
			Title:          item.Title,
			Link:           item.Link,
			HashIdentifier: hashFor(hash, asset.Code),
			Summary:        summary,
			AssetCode:      asset.Code,
			SentimentScore: score,
			SentimentLabel: label,
			KeywordHits:    hits,
			Source:         source,
			PublishedAt:    published,
		}
		if err := s.newsRepo.Create(ctx, &article); err != nil {
			return false, err
		}
	}

	if !matched {
		article := entity.NewsArticle{
			Title:          item.Title,
			Link:           item.Link,
			HashIdentifier: hash,
			Summary:        summary,
			SentimentScore: score,
			SentimentLabel: label,
			Source:         source,
			PublishedAt:    published,
		}
		if err := s.newsRepo.Create(ctx, &article); err != nil {
			return false, err
		}
	}

	return true, nil
}

// scoreArticle uses the AI provider when configured and falls back to the
// keyword scorer on any failure.
func (s *newsService) scoreArticle(ctx context.Context, item *gofeed.Item, published time.Time, text string) (float64, string, string) {
	if s.aiRepo != nil {
		result, err := s.aiRepo.ScoreArticle(ctx, item.Title, published.Format("2006-01-02"), text)
		if err == nil {
			return result.SentimentScore, result.SentimentLabel, result.Summary
		}
		s.log.Warn("AI sentiment scoring failed, falling back to keywords",
			logger.ErrorField(err), logger.StringField("link", item.Link))
	}

	score, _ := KeywordSentiment(text, s.cfg.News.PositiveKeywords, s.cfg.News.NegativeKeywords)
	return score, SentimentLabel(score), ""
}

func (s *newsService) fetchArticleBody(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", err
	}

	content, err := goquery.NewDocumentFromReader(strings.NewReader(doc.Content()))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(content.Text()), nil
}

func (s *newsService) isBlacklisted(link string) bool {
	for _, domain := range s.cfg.News.BlacklistedDomains {
		if strings.Contains(link, domain) {
			return true
		}
	}
	return false
}

func hashLink(link string) string {
	sum := md5.Sum([]byte(link))
	return hex.EncodeToString(sum[:])
}

func hashFor(hash, assetCode string) string {
	return hash + ":" + assetCode
}
