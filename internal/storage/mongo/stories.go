package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/globalwire/newspulse/internal/models"
	"github.com/globalwire/newspulse/internal/storage"
)

// storyDoc — представление models.Story в коллекции.
// ObjectID наружу конвертируется в hex-строку.
type storyDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Category string             `bson:"category"`
	Region   string             `bson:"region"`
	Tag      string             `bson:"tag"`
	Title    string             `bson:"title"`
	Summary  string             `bson:"summary"`
	Author   string             `bson:"author"`
	Date     string             `bson:"date"`
	ReadTime string             `bson:"read_time"`
	Image    *models.Image      `bson:"image,omitempty"`
	URL      string             `bson:"url"`
	Content  []string           `bson:"content"`

	Status    string                 `bson:"status"`
	KeyPoints []string               `bson:"key_points"`
	Timeline  []models.TimelineEntry `bson:"timeline"`

	PublishedAtTs int64 `bson:"published_at_ts"`
	CreatedAtTs   int64 `bson:"created_at_ts"`
	UpdatedAtTs   int64 `bson:"updated_at_ts"`
}

func toDoc(s models.Story) storyDoc {
	return storyDoc{
		Category:      s.Category,
		Region:        s.Region,
		Tag:           s.Tag,
		Title:         s.Title,
		Summary:       s.Summary,
		Author:        s.Author,
		Date:          s.Date,
		ReadTime:      s.ReadTime,
		Image:         s.Image,
		URL:           s.URL,
		Content:       s.Content,
		Status:        s.Status,
		KeyPoints:     s.KeyPoints,
		Timeline:      s.Timeline,
		PublishedAtTs: s.PublishedAtTs,
		CreatedAtTs:   s.CreatedAtTs,
		UpdatedAtTs:   s.UpdatedAtTs,
	}
}

func fromDoc(d storyDoc) models.Story {
	return models.Story{
		ID:            d.ID.Hex(),
		Category:      d.Category,
		Region:        d.Region,
		Tag:           d.Tag,
		Title:         d.Title,
		Summary:       d.Summary,
		Author:        d.Author,
		Date:          d.Date,
		ReadTime:      d.ReadTime,
		Image:         d.Image,
		URL:           d.URL,
		Content:       d.Content,
		Status:        d.Status,
		KeyPoints:     d.KeyPoints,
		Timeline:      d.Timeline,
		PublishedAtTs: d.PublishedAtTs,
		CreatedAtTs:   d.CreatedAtTs,
		UpdatedAtTs:   d.UpdatedAtTs,
	}
}

// CreateStory сохраняет новую статью.
// CreatedAtTs/UpdatedAtTs выставляются здесь.
func (m *Mongo) CreateStory(ctx context.Context, story models.Story) (*models.Story, error) {
	const op = "storage/mongo/CreateStory"

	now := models.NowMillis()
	story.CreatedAtTs = now
	story.UpdatedAtTs = now

	res, err := m.stories.InsertOne(ctx, toDoc(story))
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		// Mongo всегда возвращает ObjectID.
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	story.ID = oid.Hex()
	return &story, nil
}

// UpdateStory целиком заменяет документ, сохраняя _id и created_at_ts.
// Если записи нет — storage.ErrNotFound.
func (m *Mongo) UpdateStory(ctx context.Context, id string, story models.Story) (*models.Story, error) {
	const op = "storage/mongo/UpdateStory"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var current storyDoc
	if err := m.stories.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&current); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: find: %w", op, err)
	}

	doc := toDoc(story)
	doc.ID = oid
	doc.CreatedAtTs = current.CreatedAtTs
	doc.UpdatedAtTs = models.NowMillis()

	if _, err := m.stories.ReplaceOne(ctx, bson.D{{Key: "_id", Value: oid}}, doc); err != nil {
		return nil, fmt.Errorf("%s: replace: %w", op, err)
	}

	out := fromDoc(doc)
	return &out, nil
}

// DeleteStory удаляет документ. Если записи нет — storage.ErrNotFound.
func (m *Mongo) DeleteStory(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteStory"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := m.stories.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("%s: delete: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// StoryByID возвращает статью по идентификатору.
// Некорректный формат id трактуется как «нет такой записи».
func (m *Mongo) StoryByID(ctx context.Context, id string) (*models.Story, error) {
	const op = "storage/mongo/StoryByID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc storyDoc
	if err := m.stories.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := fromDoc(doc)
	return &out, nil
}

// ListPublished возвращает страницу опубликованных статей
// (published_at_ts DESC, offset-пагинация).
func (m *Mongo) ListPublished(ctx context.Context, opts models.StoryListOptions) ([]models.Story, error) {
	const op = "storage/mongo/ListPublished"

	filter := bson.D{{Key: "status", Value: models.StatusPublished}}
	if c := strings.TrimSpace(opts.Category); c != "" && c != "all" {
		filter = append(filter, bson.E{Key: "category", Value: c})
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}

	limit := opts.Limit
	if limit < 1 {
		limit = 1
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "published_at_ts", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	return m.findStories(ctx, op, filter, findOpts)
}

// RecentPublished возвращает limit свежих опубликованных статей.
func (m *Mongo) RecentPublished(ctx context.Context, category string, limit int) ([]models.Story, error) {
	const op = "storage/mongo/RecentPublished"

	filter := bson.D{{Key: "status", Value: models.StatusPublished}}
	if c := strings.TrimSpace(category); c != "" && c != "all" {
		filter = append(filter, bson.E{Key: "category", Value: c})
	}

	if limit < 1 {
		limit = 1
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "published_at_ts", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	return m.findStories(ctx, op, filter, findOpts)
}

func (m *Mongo) findStories(ctx context.Context, op string, filter bson.D, findOpts *options.FindOptions) ([]models.Story, error) {
	cur, err := m.stories.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Story
	for cur.Next(ctx) {
		var doc storyDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		items = append(items, fromDoc(doc))
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return items, nil
}
