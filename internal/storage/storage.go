// storage описывает операции над редакционными статьями.
package storage

import (
	"context"
	"errors"

	"github.com/globalwire/newspulse/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument — некорректные входные данные (битый id и т.п.).
	ErrInvalidArgument = errors.New("invalid argument")
)

// Storage — операции над документами редакционных статей.
type Storage interface {
	// CreateStory сохраняет новую статью и возвращает её с заполненным ID.
	// Таймстампы CreatedAtTs/UpdatedAtTs выставляет хранилище.
	CreateStory(ctx context.Context, story models.Story) (*models.Story, error)

	// UpdateStory целиком заменяет документ по id (кроме ID/CreatedAtTs),
	// обновляя UpdatedAtTs. Если записи нет — ErrNotFound.
	UpdateStory(ctx context.Context, id string, story models.Story) (*models.Story, error)

	// DeleteStory удаляет документ. Если записи нет — ErrNotFound.
	DeleteStory(ctx context.Context, id string) error

	// StoryByID возвращает статью по идентификатору.
	// Битый/неизвестный id — ErrNotFound.
	StoryByID(ctx context.Context, id string) (*models.Story, error)

	// ListPublished возвращает страницу опубликованных статей,
	// отсортированных по published_at_ts DESC. Category "" — без фильтра.
	ListPublished(ctx context.Context, opts models.StoryListOptions) ([]models.Story, error)

	// RecentPublished возвращает limit свежих опубликованных статей
	// (скан-база для поиска по подстроке).
	RecentPublished(ctx context.Context, category string, limit int) ([]models.Story, error)

	// Close закрывает соединения хранилища.
	Close(ctx context.Context) error
}
