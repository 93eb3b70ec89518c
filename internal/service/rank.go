package service

import (
	"regexp"
	"sort"
	"strings"

	"github.com/globalwire/newspulse/internal/models"
	"github.com/globalwire/newspulse/internal/providers"
)

// Веса релевантности. Полное вхождение запроса ценится выше пословных попаданий.
const (
	scoreQueryInTitle   = 10
	scoreQueryInSummary = 6
	scoreTokenInTitle   = 4
	scoreTokenInSummary = 3
	scoreTokenInMeta    = 1
)

var reTokenSplit = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// tokenize разбивает запрос на значимые токены (длина >= 3).
// Если значимых токенов нет, весь запрос становится единственным токеном.
func tokenize(query string) []string {
	var tokens []string
	for _, t := range reTokenSplit.Split(strings.ToLower(query), -1) {
		if len(t) >= 3 {
			tokens = append(tokens, t)
		}
	}

	if len(tokens) == 0 {
		if q := strings.TrimSpace(strings.ToLower(query)); q != "" {
			tokens = []string{q}
		}
	}

	return tokens
}

// rank упорядочивает статьи по релевантности запросу и отсекает шум.
//
// Особенности:
//   - статья проходит фильтр, если набрала минимум токен-попаданий
//     (1 для однотокенного запроса, иначе половина токенов с округлением
//     вверх) либо содержит запрос целиком в заголовке или описании;
//   - если фильтр не прошла ни одна статья, выборка возвращается как есть:
//     пустой ответ на вырожденный запрос хуже неранжированного;
//   - сортировка по убыванию счёта стабильна, порядок равных сохраняется.
func rank(query string, arts []models.Article) []models.Article {
	q := strings.TrimSpace(strings.ToLower(query))
	tokens := tokenize(query)
	if q == "" || len(tokens) == 0 || len(arts) == 0 {
		return arts
	}

	minHits := 1
	if len(tokens) > 1 {
		minHits = (len(tokens) + 1) / 2
	}

	wordRe := make([]*regexp.Regexp, len(tokens))
	for i, t := range tokens {
		wordRe[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(t) + `\b`)
	}

	type scored struct {
		article models.Article
		score   int
	}

	ranked := make([]scored, 0, len(arts))
	for _, a := range arts {
		title := providers.NormalizeText(a.Title)
		summary := providers.NormalizeText(a.Summary)
		meta := providers.NormalizeText(strings.Join([]string{a.Region, a.Tag, a.Author}, " "))

		score := 0
		direct := false
		if strings.Contains(title, q) {
			score += scoreQueryInTitle
			direct = true
		}
		if strings.Contains(summary, q) {
			score += scoreQueryInSummary
			direct = true
		}

		hits := 0
		for _, re := range wordRe {
			matched := false
			if re.MatchString(title) {
				score += scoreTokenInTitle
				matched = true
			}
			if re.MatchString(summary) {
				score += scoreTokenInSummary
				matched = true
			}
			if re.MatchString(meta) {
				score += scoreTokenInMeta
				matched = true
			}
			if matched {
				hits++
			}
		}

		if hits >= minHits || direct {
			ranked = append(ranked, scored{article: a, score: score})
		}
	}

	if len(ranked) == 0 {
		return arts
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]models.Article, len(ranked))
	for i, r := range ranked {
		out[i] = r.article
	}

	return out
}
