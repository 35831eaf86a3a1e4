package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang-tradebot/internal/engine/repository"
	"golang-tradebot/internal/entity"
	"golang-tradebot/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPortfolioRepo struct {
	snapshots []entity.PortfolioSnapshot
}

func (s *stubPortfolioRepo) GetLatestSnapshot(ctx context.Context) (*entity.PortfolioSnapshot, error) {
	if len(s.snapshots) == 0 {
		return nil, nil
	}
	return &s.snapshots[0], nil
}

func (s *stubPortfolioRepo) GetSnapshots(ctx context.Context, limit int) ([]entity.PortfolioSnapshot, error) {
	if limit > len(s.snapshots) {
		limit = len(s.snapshots)
	}
	return s.snapshots[:limit], nil
}

func (s *stubPortfolioRepo) SaveRun(ctx context.Context, apply repository.RunApply) error {
	return nil
}

func newHandlerTestContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestPortfolioHandler_GetSnapshots(t *testing.T) {
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	runDate := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	repo := &stubPortfolioRepo{snapshots: []entity.PortfolioSnapshot{
		{Capital: 1050, TotalValue: 1050, RunDate: runDate},
		{Capital: 1000, TotalValue: 1000, RunDate: runDate.AddDate(0, 0, -1)},
	}}
	handler := NewPortfolioHandler(repo, nil, nil, nil, 0, log)

	t.Run("returns the history", func(t *testing.T) {
		c, rec := newHandlerTestContext(t, "/api/v1/snapshots")

		require.NoError(t, handler.GetSnapshots(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var snapshots []entity.PortfolioSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshots))
		require.Len(t, snapshots, 2)
		assert.Equal(t, 1050.0, snapshots[0].TotalValue)
	})

	t.Run("honors the limit parameter", func(t *testing.T) {
		c, rec := newHandlerTestContext(t, "/api/v1/snapshots?limit=1")

		require.NoError(t, handler.GetSnapshots(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var snapshots []entity.PortfolioSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshots))
		assert.Len(t, snapshots, 1)
	})

	t.Run("rejects a bad limit", func(t *testing.T) {
		c, rec := newHandlerTestContext(t, "/api/v1/snapshots?limit=abc")

		require.NoError(t, handler.GetSnapshots(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
