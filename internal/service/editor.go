package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/globalwire/newspulse/internal/models"
	"github.com/globalwire/newspulse/internal/providers"
	"github.com/globalwire/newspulse/internal/storage"
)

// Редакционный контур: CRUD статей и поиск по опубликованным документам.
// Ошибки хранилища транслируются в сервисные сентинели на этой границе.

// CreateStory нормализует и сохраняет новую редакционную статью.
// Заголовок обязателен — остальные поля получают дефолты.
func (s *Service) CreateStory(ctx context.Context, story models.Story) (*models.Story, error) {
	const op = "service/editor/CreateStory"

	if strings.TrimSpace(story.Title) == "" {
		return nil, fmt.Errorf("%s: empty title: %w", op, ErrInvalidArgument)
	}

	created, err := s.stories.CreateStory(ctx, normalizeStory(story))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// UpdateStory целиком заменяет статью по id.
func (s *Service) UpdateStory(ctx context.Context, id string, story models.Story) (*models.Story, error) {
	const op = "service/editor/UpdateStory"

	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%s: empty id: %w", op, ErrInvalidArgument)
	}

	updated, err := s.stories.UpdateStory(ctx, id, normalizeStory(story))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// DeleteStory удаляет статью по id.
func (s *Service) DeleteStory(ctx context.Context, id string) error {
	const op = "service/editor/DeleteStory"

	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s: empty id: %w", op, ErrInvalidArgument)
	}

	if err := s.stories.DeleteStory(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Story возвращает статью по id без фильтра по статусу.
func (s *Service) Story(ctx context.Context, id string) (*models.Story, error) {
	const op = "service/editor/Story"

	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%s: empty id: %w", op, ErrInvalidArgument)
	}

	story, err := s.stories.StoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return story, nil
}

// ListStories возвращает страницу опубликованных статей.
// Лимит зажимается в серверные границы, категория "all"/"" снимает фильтр.
func (s *Service) ListStories(ctx context.Context, category string, page, limit int) ([]models.Story, error) {
	const op = "service/editor/ListStories"

	cat, err := listCategory(category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.limits.Default
	}
	if limit > s.limits.Max {
		limit = s.limits.Max
	}

	stories, err := s.stories.ListPublished(ctx, models.StoryListOptions{
		Category: cat,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stories, nil
}

// SearchStories ищет подстроку по свежим опубликованным статьям.
// Сканируется ограниченное число документов (limits.search_scan),
// совпадение — по заголовку, описанию и телу без учёта регистра;
// страница вырезается из отфильтрованного списка.
func (s *Service) SearchStories(ctx context.Context, query, category string, page, limit int) ([]models.Story, error) {
	const op = "service/editor/SearchStories"

	q := providers.NormalizeText(query)
	if q == "" {
		return nil, fmt.Errorf("%s: empty query: %w", op, ErrInvalidArgument)
	}

	cat, err := listCategory(category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.limits.Default
	}
	if limit > s.limits.Max {
		limit = s.limits.Max
	}

	recent, err := s.stories.RecentPublished(ctx, cat, s.limits.SearchScan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	matched := make([]models.Story, 0, len(recent))
	for _, st := range recent {
		haystack := strings.ToLower(st.Title + " " + st.Summary + " " + strings.Join(st.Content, " "))
		if strings.Contains(haystack, q) {
			matched = append(matched, st)
		}
	}

	offset := (page - 1) * limit
	if offset >= len(matched) {
		return []models.Story{}, nil
	}
	if end := offset + limit; end < len(matched) {
		return matched[offset:end], nil
	}

	return matched[offset:], nil
}

// listCategory валидирует категорию выборки: ""/"all" -> без фильтра.
func listCategory(v string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(v))
	if c == "" || c == "all" {
		return "", nil
	}

	if !models.IsCategory(c) {
		return "", fmt.Errorf("unknown category %q: %w", v, ErrInvalidArgument)
	}

	return c, nil
}

// normalizeStory приводит редакционный payload к канонической форме.
// Операция тотальна: отсутствующие поля получают дефолты, а не ошибку.
func normalizeStory(st models.Story) models.Story {
	st.Category = models.NormalizeCategory(st.Category)

	st.Title = strings.TrimSpace(st.Title)
	if st.Title == "" {
		st.Title = "Untitled"
	}

	st.Summary = strings.TrimSpace(st.Summary)
	if st.Summary == "" {
		st.Summary = "Open to read details."
	}

	st.Author = strings.TrimSpace(st.Author)
	if st.Author == "" {
		st.Author = "News Desk"
	}

	st.Region = strings.TrimSpace(st.Region)
	if st.Region == "" {
		st.Region = "World"
	}

	st.Tag = strings.TrimSpace(st.Tag)
	if st.Tag == "" {
		st.Tag = strings.ToUpper(st.Category)
	}

	st.ReadTime = strings.TrimSpace(st.ReadTime)
	if st.ReadTime == "" {
		st.ReadTime = "5 min read"
	}

	st.Date = strings.TrimSpace(st.Date)
	if st.Date == "" {
		st.Date = "-"
	}

	// Публикация — статус по умолчанию; черновик только явным образом.
	if st.Status != models.StatusDraft {
		st.Status = models.StatusPublished
	}
	if st.Status == models.StatusPublished && st.PublishedAtTs == 0 {
		st.PublishedAtTs = publishedTs(st.Date)
	}

	if st.Image != nil && strings.TrimSpace(st.Image.Src) == "" {
		st.Image = nil
	}
	if st.Image != nil && st.Image.Alt == "" {
		st.Image.Alt = st.Title
	}

	st.Content = compactStrings(st.Content)
	st.KeyPoints = compactStrings(st.KeyPoints)
	if st.Timeline == nil {
		st.Timeline = []models.TimelineEntry{}
	}

	return st
}

// publishedTs выводит таймстамп публикации из ISO-даты статьи;
// непарсящаяся дата даёт текущее время.
func publishedTs(date string) int64 {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.UTC().UnixMilli()
	}

	return models.NowMillis()
}

// compactStrings отбрасывает пустые элементы; результат всегда не-nil.
func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}

	return out
}
