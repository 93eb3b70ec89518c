package service

import (
	"sort"
	"strings"

	"github.com/globalwire/newspulse/internal/models"
	"github.com/globalwire/newspulse/internal/providers"
)

// dedupe убирает дубликаты статей, сохраняя первое вхождение и порядок.
// Ключ — нормализованный URL; при его отсутствии — пара "title|date".
func dedupe(arts []models.Article) []models.Article {
	seen := make(map[string]struct{}, len(arts))
	out := make([]models.Article, 0, len(arts))

	for _, a := range arts {
		key := providers.NormalizeText(a.URL)
		if key == "" {
			key = providers.NormalizeText(a.Title) + "|" + strings.TrimSpace(a.Date)
		}

		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, a)
	}

	return out
}

// sortByImage поднимает статьи с обложкой наверх, не меняя порядок внутри групп.
func sortByImage(arts []models.Article) []models.Article {
	sort.SliceStable(arts, func(i, j int) bool {
		return arts[i].HasImage() && !arts[j].HasImage()
	})

	return arts
}
