// models содержит доменные сущности newspulse.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import "strings"

// Категории ленты. Фиксированный набор — провайдеры маппятся на него.
const (
	CategoryTop      = "top"
	CategoryBreaking = "breaking"
	CategoryIntel    = "intel"
	CategoryIndustry = "industry"
	CategoryWorld    = "world"
	CategoryFeatured = "featured"
)

// Categories — допустимые категории в порядке отображения.
var Categories = []string{
	CategoryTop,
	CategoryBreaking,
	CategoryIntel,
	CategoryIndustry,
	CategoryWorld,
	CategoryFeatured,
}

// IsCategory сообщает, входит ли значение в фиксированный набор категорий.
func IsCategory(v string) bool {
	for _, c := range Categories {
		if c == v {
			return true
		}
	}

	return false
}

// NormalizeCategory приводит произвольный ввод к допустимой категории.
// Пустое значение и "all" трактуются как top; неизвестные значения — тоже top,
// чтобы операции ленты оставались тотальными.
func NormalizeCategory(v string) string {
	c := strings.ToLower(strings.TrimSpace(v))
	if c == "" || c == "all" {
		return CategoryTop
	}

	if IsCategory(c) {
		return c
	}

	return CategoryTop
}

// Image — обложка статьи. Src всегда непустой, если Image присутствует.
type Image struct {
	Src string `json:"src" bson:"src"`
	Alt string `json:"alt" bson:"alt"`
}

// Article — каноническая статья, в которую маппятся все провайдеры.
//
// Особенности:
//   - ID уникален в пределах одной выборки (категория+страница+позиция+штамп
//     из таймстампа источника) и не стабилен между перезапросами;
//   - Date — ISO-дата YYYY-MM-DD или "-" при отсутствии;
//   - Content не содержит пустых строк.
type Article struct {
	ID       string   `json:"id" bson:"id"`
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
}

// HasImage — есть ли у статьи пригодная обложка.
func (a Article) HasImage() bool {
	return a.Image != nil && a.Image.Src != ""
}
