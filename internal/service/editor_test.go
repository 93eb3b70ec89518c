// Тесты редакционного контура:
//   - нормализация payload: дефолты полей, статусы, таймстамп публикации;
//   - трансляция ошибок хранилища в сервисные сентинели;
//   - зажим лимитов выборки и валидация категории;
//   - подстрочный поиск по свежим опубликованным статьям.
package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalwire/newspulse/internal/metrics"
	"github.com/globalwire/newspulse/internal/models"
	"github.com/globalwire/newspulse/internal/storage"
	"github.com/globalwire/newspulse/mocks"
)

func newEditor(t *testing.T) (*Service, *mocks.MockStorage) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	st := mocks.NewMockStorage(ctrl)
	svc := New(nil, nil, st, metrics.New(prometheus.NewRegistry()), testLimits())

	return svc, st
}

func TestNormalizeStory(t *testing.T) {
	t.Run("empty payload gets defaults", func(t *testing.T) {
		got := normalizeStory(models.Story{})

		assert.Equal(t, models.CategoryTop, got.Category)
		assert.Equal(t, "Untitled", got.Title)
		assert.Equal(t, "Open to read details.", got.Summary)
		assert.Equal(t, "News Desk", got.Author)
		assert.Equal(t, "World", got.Region)
		assert.Equal(t, "TOP", got.Tag)
		assert.Equal(t, "5 min read", got.ReadTime)
		assert.Equal(t, "-", got.Date)
		assert.Equal(t, models.StatusPublished, got.Status)
		assert.NotZero(t, got.PublishedAtTs)
		assert.NotNil(t, got.Content)
		assert.NotNil(t, got.KeyPoints)
		assert.NotNil(t, got.Timeline)
	})

	t.Run("published timestamp derived from date", func(t *testing.T) {
		got := normalizeStory(models.Story{Date: "2024-05-01"})

		want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
		assert.Equal(t, models.StatusPublished, got.Status)
		assert.Equal(t, want, got.PublishedAtTs)
	})

	t.Run("explicit timestamp preserved", func(t *testing.T) {
		got := normalizeStory(models.Story{PublishedAtTs: 42})

		assert.EqualValues(t, 42, got.PublishedAtTs)
	})

	t.Run("draft stays draft without timestamp", func(t *testing.T) {
		got := normalizeStory(models.Story{Status: models.StatusDraft})

		assert.Equal(t, models.StatusDraft, got.Status)
		assert.Zero(t, got.PublishedAtTs)
	})

	t.Run("unknown status degrades to published", func(t *testing.T) {
		got := normalizeStory(models.Story{Status: "archived"})

		assert.Equal(t, models.StatusPublished, got.Status)
	})

	t.Run("image without src dropped, alt defaults to title", func(t *testing.T) {
		noSrc := normalizeStory(models.Story{Image: &models.Image{Src: "  "}})
		assert.Nil(t, noSrc.Image)

		noAlt := normalizeStory(models.Story{Title: "Headline", Image: &models.Image{Src: "https://img"}})
		require.NotNil(t, noAlt.Image)
		assert.Equal(t, "Headline", noAlt.Image.Alt)
	})

	t.Run("empty content entries dropped", func(t *testing.T) {
		got := normalizeStory(models.Story{
			Content:   []string{" first ", "", "  ", "second"},
			KeyPoints: []string{"", "point"},
		})

		assert.Equal(t, []string{"first", "second"}, got.Content)
		assert.Equal(t, []string{"point"}, got.KeyPoints)
	})

	t.Run("tag defaults to uppercased category", func(t *testing.T) {
		got := normalizeStory(models.Story{Category: models.CategoryIntel})

		assert.Equal(t, "INTEL", got.Tag)
	})
}

func TestCreateStory_NormalizesBeforeSave(t *testing.T) {
	svc, st := newEditor(t)
	ctx := context.Background()

	st.EXPECT().
		CreateStory(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, story models.Story) (*models.Story, error) {
			assert.Equal(t, "Breaking", story.Title)
			assert.Equal(t, "News Desk", story.Author)
			assert.Equal(t, models.StatusPublished, story.Status)
			story.ID = "id-1"
			return &story, nil
		})

	created, err := svc.CreateStory(ctx, models.Story{Title: "Breaking"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)
}

func TestCreateStory_TitleRequired(t *testing.T) {
	svc, _ := newEditor(t)

	_, err := svc.CreateStory(context.Background(), models.Story{Title: "   "})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUpdateStory_NotFound(t *testing.T) {
	svc, st := newEditor(t)
	ctx := context.Background()

	st.EXPECT().
		UpdateStory(gomock.Any(), "missing", gomock.Any()).
		Return(nil, storage.ErrNotFound)

	_, err := svc.UpdateStory(ctx, "missing", models.Story{Title: "X"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateStory(ctx, "  ", models.Story{})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDeleteStory(t *testing.T) {
	svc, st := newEditor(t)
	ctx := context.Background()

	st.EXPECT().DeleteStory(gomock.Any(), "id-1").Return(nil)
	require.NoError(t, svc.DeleteStory(ctx, "id-1"))

	st.EXPECT().DeleteStory(gomock.Any(), "id-2").Return(storage.ErrNotFound)
	require.ErrorIs(t, svc.DeleteStory(ctx, "id-2"), ErrNotFound)
}

func TestStory_NotFound(t *testing.T) {
	svc, st := newEditor(t)
	ctx := context.Background()

	st.EXPECT().StoryByID(gomock.Any(), "nope").Return(nil, storage.ErrNotFound)

	_, err := svc.Story(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListStories(t *testing.T) {
	tests := []struct {
		name     string
		category string
		page     int
		limit    int
		wantOpts models.StoryListOptions
		wantErr  error
	}{
		{
			name:     "defaults applied",
			category: "all",
			page:     0,
			limit:    0,
			wantOpts: models.StoryListOptions{Category: "", Page: 1, Limit: 12},
		},
		{
			name:     "limit clamped to max",
			category: models.CategoryIntel,
			page:     3,
			limit:    500,
			wantOpts: models.StoryListOptions{Category: models.CategoryIntel, Page: 3, Limit: 100},
		},
		{
			name:     "unknown category rejected",
			category: "gossip",
			wantErr:  ErrInvalidArgument,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, st := newEditor(t)
			ctx := context.Background()

			if tc.wantErr == nil {
				st.EXPECT().
					ListPublished(gomock.Any(), tc.wantOpts).
					Return([]models.Story{}, nil)
			}

			_, err := svc.ListStories(ctx, tc.category, tc.page, tc.limit)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSearchStories(t *testing.T) {
	svc, st := newEditor(t)
	ctx := context.Background()

	recent := []models.Story{
		{ID: "1", Title: "Cyber attack on utilities", Summary: "Grid down"},
		{ID: "2", Title: "Weather outlook", Summary: "Sunny", Content: []string{"A calm cyber-free weekend"}},
		{ID: "3", Title: "Sports roundup", Summary: "Scores"},
	}

	st.EXPECT().RecentPublished(gomock.Any(), "", 200).Return(recent, nil)

	got, err := svc.SearchStories(ctx, "CYBER", "all", 1, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	_, err = svc.SearchStories(ctx, "  ", "", 1, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSearchStories_Pagination(t *testing.T) {
	svc, st := newEditor(t)
	ctx := context.Background()

	recent := []models.Story{
		{ID: "1", Title: "Cyber one"},
		{ID: "2", Title: "Cyber two"},
		{ID: "3", Title: "Cyber three"},
	}

	st.EXPECT().RecentPublished(gomock.Any(), models.CategoryIntel, 200).Return(recent, nil).Times(2)

	page1, err := svc.SearchStories(ctx, "cyber", models.CategoryIntel, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, storyIDs(page1))

	page2, err := svc.SearchStories(ctx, "cyber", models.CategoryIntel, 2, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"3"}, storyIDs(page2))
}

func storyIDs(stories []models.Story) []string {
	out := make([]string, 0, len(stories))
	for _, st := range stories {
		out = append(out, st.ID)
	}
	return out
}
