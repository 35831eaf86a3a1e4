package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAssetRepo struct {
	assets []entity.Asset
}

func (s *stubAssetRepo) GetAssets(ctx context.Context) ([]entity.Asset, error) {
	return s.assets, nil
}

// memoryNewsRepo mimics the stored-hash semantics of the gorm repository:
// asset-matched rows live under "<hash>:<asset_code>", and ExistsByHash
// matches the bare hash as well as any suffixed form of it.
type memoryNewsRepo struct {
	articles map[string]entity.NewsArticle
	creates  int
}

func newMemoryNewsRepo() *memoryNewsRepo {
	return &memoryNewsRepo{articles: make(map[string]entity.NewsArticle)}
}

func (m *memoryNewsRepo) Create(ctx context.Context, article *entity.NewsArticle) error {
	m.creates++
	m.articles[article.HashIdentifier] = *article
	return nil
}

func (m *memoryNewsRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	for stored := range m.articles {
		if stored == hash || strings.HasPrefix(stored, hash+":") {
			return true, nil
		}
	}
	return false, nil
}

const testFeedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Actualités Finance</title>
    <item>
      <title>%s</title>
      <link>https://news.example.com/articles/1</link>
      <description>%s</description>
    </item>
  </channel>
</rss>`

func newsTestConfig(feedURL string) *config.Config {
	return &config.Config{
		News: config.News{
			FeedURLs:         []string{feedURL},
			PositiveKeywords: []string{"record"},
			NegativeKeywords: []string{"perte"},
		},
	}
}

func TestNewsService_Scan(t *testing.T) {
	t.Run("asset-matched article is stored once across scans", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/rss+xml")
			feed := strings.Replace(testFeedTemplate, "%s", "Airbus signe un contrat record", 1)
			feed = strings.Replace(feed, "%s", "Un contrat record pour Airbus", 1)
			_, _ = w.Write([]byte(feed))
		}))
		defer server.Close()

		newsRepo := newMemoryNewsRepo()
		svc := NewNewsService(newsTestConfig(server.URL), newTestLogger(t), nil,
			&stubAssetRepo{assets: []entity.Asset{{Code: "AIR.PA", Name: "Airbus", Keywords: "airbus"}}},
			newsRepo, nil)

		require.NoError(t, svc.Scan(context.Background()))
		require.Equal(t, 1, newsRepo.creates)

		// The stored row carries the per-asset suffixed hash.
		for stored := range newsRepo.articles {
			assert.True(t, strings.HasSuffix(stored, ":AIR.PA"))
		}

		// A second scan over the identical feed must not refetch, rescore or
		// re-store the article.
		require.NoError(t, svc.Scan(context.Background()))
		assert.Equal(t, 1, newsRepo.creates)
	})

	t.Run("unmatched article is stored market-wide once across scans", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/rss+xml")
			feed := strings.Replace(testFeedTemplate, "%s", "Le marché en baisse", 1)
			feed = strings.Replace(feed, "%s", "Une séance sans relief", 1)
			_, _ = w.Write([]byte(feed))
		}))
		defer server.Close()

		newsRepo := newMemoryNewsRepo()
		svc := NewNewsService(newsTestConfig(server.URL), newTestLogger(t), nil,
			&stubAssetRepo{assets: []entity.Asset{{Code: "AIR.PA", Name: "Airbus", Keywords: "airbus"}}},
			newsRepo, nil)

		require.NoError(t, svc.Scan(context.Background()))
		require.Equal(t, 1, newsRepo.creates)

		for _, article := range newsRepo.articles {
			assert.Empty(t, article.AssetCode)
		}

		require.NoError(t, svc.Scan(context.Background()))
		assert.Equal(t, 1, newsRepo.creates)
	})
}
