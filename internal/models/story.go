package models

import "time"

// Статусы редакционной статьи.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// TimelineEntry — пункт хронологии сюжета на детальной странице.
type TimelineEntry struct {
	Label  string `json:"t" bson:"t"`
	Detail string `json:"d" bson:"d"`
}

// Story — редакционная статья, персистентный документ.
// Повторяет каноническую форму Article плюс статус и серверные таймстампы.
type Story struct {
	ID       string   `json:"id" bson:"_id,omitempty"`
	Category string   `json:"category" bson:"category"`
	Region   string   `json:"region" bson:"region"`
	Tag      string   `json:"tag" bson:"tag"`
	Title    string   `json:"title" bson:"title"`
	Summary  string   `json:"summary" bson:"summary"`
	Author   string   `json:"author" bson:"author"`
	Date     string   `json:"date" bson:"date"`
	ReadTime string   `json:"readTime" bson:"read_time"`
	Image    *Image   `json:"image" bson:"image,omitempty"`
	URL      string   `json:"url" bson:"url"`
	Content  []string `json:"content" bson:"content"`

	Status    string          `json:"status" bson:"status"`
	KeyPoints []string        `json:"keyPoints" bson:"key_points"`
	Timeline  []TimelineEntry `json:"timeline" bson:"timeline"`

	// Таймстампы — миллисекунды Unix, как их отдаёт публичный API.
	PublishedAtTs int64 `json:"publishedAtTs" bson:"published_at_ts"`
	CreatedAtTs   int64 `json:"createdAtTs" bson:"created_at_ts"`
	UpdatedAtTs   int64 `json:"updatedAtTs" bson:"updated_at_ts"`
}

// StoryListOptions — параметры выборки редакционных статей.
type StoryListOptions struct {
	// Category == "" или "all" -> без фильтра по категории.
	Category string
	Page     int
	Limit    int
}

// NowMillis — текущее время в миллисекундах Unix (UTC).
func NowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}
