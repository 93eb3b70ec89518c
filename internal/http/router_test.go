// Тесты REST-поверхности:
//   - публичные маршруты ленты и редакционных статей отвечают 200
//     и отдают ожидаемые конверты;
//   - ошибки нижних слоёв маппятся в статусы (404/400/503);
//   - админские маршруты закрыты: 401 без токена, 403 без права admin;
//   - /metrics отдаёт реестр метрик.
package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalwire/newspulse/internal/auth"
	"github.com/globalwire/newspulse/internal/config"
	"github.com/globalwire/newspulse/internal/metrics"
	"github.com/globalwire/newspulse/internal/models"
	"github.com/globalwire/newspulse/internal/providers"
	"github.com/globalwire/newspulse/internal/service"
	"github.com/globalwire/newspulse/internal/storage"
	"github.com/globalwire/newspulse/mocks"
)

const testSecret = "router-test-secret"

type env struct {
	handler  http.Handler
	primary  *mocks.MockProvider
	backup   *mocks.MockProvider
	storage  *mocks.MockStorage
	registry *prometheus.Registry
}

func newEnv(t *testing.T) *env {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	primary := mocks.NewMockProvider(ctrl)
	primary.EXPECT().Name().Return("gnews").AnyTimes()

	backup := mocks.NewMockProvider(ctrl)
	backup.EXPECT().Name().Return("guardian").AnyTimes()

	st := mocks.NewMockStorage(ctrl)

	reg := prometheus.NewRegistry()
	svc := service.New(primary, backup, st, metrics.New(reg),
		config.LimitsConfig{Default: 12, Max: 100, SearchScan: 200})

	handler := NewRouter(svc, auth.NewVerifier(testSecret), Options{
		Logger:   slog.Default(),
		Timeout:  5 * time.Second,
		Registry: reg,
	})

	return &env{handler: handler, primary: primary, backup: backup, storage: st, registry: reg}
}

func (e *env) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, target, &buf)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)

	return w
}

func signedToken(t *testing.T, admin bool) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	return signed
}

func sampleFeed(n int) []models.Article {
	out := make([]models.Article, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Article{
			ID:    fmt.Sprintf("a-%d", i),
			Title: fmt.Sprintf("Article %d", i),
			URL:   fmt.Sprintf("https://ex.com/%d", i),
			Date:  "2024-05-01",
		})
	}
	return out
}

func TestHealth(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestFeed(t *testing.T) {
	e := newEnv(t)

	e.primary.EXPECT().
		FetchCategory(gomock.Any(), models.CategoryTop, 1).
		Return(sampleFeed(3), nil)

	w := e.do(t, http.MethodGet, "/feed/top", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Articles []models.Article `json:"articles"`
		Provider string           `json:"provider"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Articles, 3)
	assert.Equal(t, "gnews", resp.Provider)
}

func TestFeedCached(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/feed/top/cached", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Articles []models.Article `json:"articles"`
		Cached   bool             `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Articles)
	assert.False(t, resp.Cached)

	// Наполняем кэш обычной выборкой и перечитываем.
	e.primary.EXPECT().
		FetchCategory(gomock.Any(), models.CategoryTop, 1).
		Return(sampleFeed(2), nil)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/feed/top", "", nil).Code)

	w = e.do(t, http.MethodGet, "/feed/top/cached", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Articles, 2)
	assert.True(t, resp.Cached)
}

func TestFeedSearch_Unavailable(t *testing.T) {
	e := newEnv(t)

	upstreamErr := fmt.Errorf("status=500: %w", providers.ErrTransport)
	e.primary.EXPECT().Search(gomock.Any(), "cyber", models.CategoryTop).Return(nil, upstreamErr)
	e.backup.EXPECT().Search(gomock.Any(), "cyber", models.CategoryTop).Return(nil, upstreamErr)

	w := e.do(t, http.MethodGet, "/feed/search?q=cyber", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestClearCache_AdminOnly(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/feed/cache/clear", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, "/feed/cache/clear", signedToken(t, false), nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/feed/cache/clear", signedToken(t, true), nil).Code)
}

func TestListNews(t *testing.T) {
	e := newEnv(t)

	e.storage.EXPECT().
		ListPublished(gomock.Any(), models.StoryListOptions{Category: "", Page: 1, Limit: 12}).
		Return([]models.Story{{ID: "s-1", Title: "Story"}}, nil)

	w := e.do(t, http.MethodGet, "/news", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stories []models.Story
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stories))
	require.Len(t, stories, 1)
	assert.Equal(t, "s-1", stories[0].ID)
}

func TestNewsByID_NotFound(t *testing.T) {
	e := newEnv(t)

	e.storage.EXPECT().StoryByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	w := e.do(t, http.MethodGet, "/news/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Error struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestSearchNews_EmptyQuery(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminCreateStory(t *testing.T) {
	e := newEnv(t)

	payload := map[string]any{"title": "Breaking", "category": "top", "status": "published"}

	t.Run("no token -> 401", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/admin/news", "", payload).Code)
	})

	t.Run("not admin -> 403", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, "/admin/news", signedToken(t, false), payload).Code)
	})

	t.Run("admin -> 201", func(t *testing.T) {
		e.storage.EXPECT().
			CreateStory(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, story models.Story) (*models.Story, error) {
				story.ID = "new-id"
				return &story, nil
			})

		w := e.do(t, http.MethodPost, "/admin/news", signedToken(t, true), payload)
		require.Equal(t, http.StatusCreated, w.Code)

		var created models.Story
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "new-id", created.ID)
		assert.Equal(t, "Breaking", created.Title)
	})

	t.Run("bad payload -> 400", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/admin/news", bytes.NewBufferString("{not json"))
		r.Header.Set("Authorization", "Bearer "+signedToken(t, true))
		w := httptest.NewRecorder()
		e.handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdminDeleteStory(t *testing.T) {
	e := newEnv(t)

	e.storage.EXPECT().DeleteStory(gomock.Any(), "s-1").Return(nil)
	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/admin/news/s-1", signedToken(t, true), nil).Code)

	e.storage.EXPECT().DeleteStory(gomock.Any(), "gone").Return(storage.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/admin/news/gone", signedToken(t, true), nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
