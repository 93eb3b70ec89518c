package guardian

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/globalwire/newspulse/internal/models"
	"github.com/globalwire/newspulse/internal/providers"
)

// Тесты клиента Guardian:
//  - перебор поисковых подсказок до первого непустого результата;
//  - параметры запроса (секция, show-fields, order-by);
//  - упорядоченные кандидаты полей в маппере;
//  - классификация отказов.

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return New(Options{BaseURL: srv.URL, APIKey: "test"})
}

func writeResults(t *testing.T, w http.ResponseWriter, titles ...string) {
	t.Helper()

	type item struct {
		WebTitle           string `json:"webTitle"`
		WebURL             string `json:"webUrl"`
		WebPublicationDate string `json:"webPublicationDate"`
	}

	var out struct {
		Response struct {
			Results []item `json:"results"`
		} `json:"response"`
	}
	for _, title := range titles {
		out.Response.Results = append(out.Response.Results, item{
			WebTitle:           title,
			WebURL:             "https://guardian.example/" + title,
			WebPublicationDate: "2024-05-02T08:00:00Z",
		})
	}

	require.NoError(t, json.NewEncoder(w).Encode(out))
}

func TestFetchCategory_TriesHintsInOrder(t *testing.T) {
	t.Parallel()

	var hints []string
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hints = append(hints, r.URL.Query().Get("q"))
		if len(hints) == 1 {
			writeResults(t, w) // первая подсказка пустая
			return
		}
		writeResults(t, w, "Second Hint Story")
	})

	got, err := cli.FetchCategory(context.Background(), models.CategoryTop, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []string{"latest headlines", "global news"}, hints)
}

func TestFetchCategory_RequestShape(t *testing.T) {
	t.Parallel()

	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "test", q.Get("api-key"))
		require.Equal(t, "newest", q.Get("order-by"))
		require.Equal(t, "thumbnail,trailText,body,byline", q.Get("show-fields"))
		require.Equal(t, "business", q.Get("section"))
		writeResults(t, w, "Markets Story")
	})

	_, err := cli.FetchCategory(context.Background(), models.CategoryIndustry, 1)
	require.NoError(t, err)
}

func TestFetchCategory_AuthBlockedSurfaces(t *testing.T) {
	t.Parallel()

	cli := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := cli.FetchCategory(context.Background(), models.CategoryTop, 1)
	require.ErrorIs(t, err, providers.ErrAuthBlocked)
}

func TestSearch_SurfacesClassifiedError(t *testing.T) {
	t.Parallel()

	cli := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := cli.Search(context.Background(), "ai policy", models.CategoryIntel)
	require.ErrorIs(t, err, providers.ErrRateLimited)
}

func TestMapArticles_CandidateFieldOrder(t *testing.T) {
	t.Parallel()

	cli := New(Options{})

	raw := []rawItem{
		{
			WebTitle:           "Guardian Title",
			WebURL:             "https://guardian.example/a",
			WebPublicationDate: "2024-05-02T08:00:00Z",
			SectionName:        "World news",
		},
	}
	raw[0].Fields.TrailText = "Trail <em>text</em>"
	raw[0].Fields.Body = "Full body"
	raw[0].Fields.Byline = "Jane Reporter"
	raw[0].Fields.Thumbnail = "http://media.example/tn.jpg"

	got := cli.mapArticles(models.CategoryWorld, 1, raw)
	require.Len(t, got, 1)

	a := got[0]
	require.Equal(t, "Guardian Title", a.Title)
	require.Equal(t, "Trail text", a.Summary)
	require.Equal(t, "Jane Reporter", a.Author)
	require.Equal(t, "World news", a.Region)
	require.Equal(t, "2024-05-02", a.Date)
	require.Equal(t, "WORLD", a.Tag)
	require.NotNil(t, a.Image)
	require.Equal(t, "https://media.example/tn.jpg", a.Image.Src, "http -> https")
	require.Equal(t, []string{"Trail text", "Full body"}, a.Content)
}

func TestMapArticles_TotalOverEmptyRecord(t *testing.T) {
	t.Parallel()

	cli := New(Options{})
	got := cli.mapArticles(models.CategoryTop, 1, []rawItem{{}})

	require.Len(t, got, 1)
	require.Equal(t, "Untitled", got[0].Title)
	require.Equal(t, "News Desk", got[0].Author)
	require.Equal(t, "-", got[0].Date)
	require.Nil(t, got[0].Image)
	require.NotEmpty(t, got[0].ID)
}
