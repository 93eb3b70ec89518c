// guardian — клиент резервного провайдера (Guardian Content API).
package guardian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/globalwire/newspulse/internal/models"
	"github.com/globalwire/newspulse/internal/providers"
	"github.com/globalwire/newspulse/pkg/log"
)

// ProviderName — ключ провайдера в кэше/метриках движка.
const ProviderName = "guardian"

// Поисковые подсказки, которыми наполняется категория.
// Пробуются по порядку до первого непустого результата.
var searchHintMap = map[string][]string{
	models.CategoryTop:      {"latest headlines", "global news"},
	models.CategoryBreaking: {"breaking", "urgent"},
	models.CategoryIntel:    {"technology ai cybersecurity"},
	models.CategoryIndustry: {"business market economy"},
	models.CategoryWorld:    {"international geopolitics diplomacy"},
	models.CategoryFeatured: {"analysis interview explainer"},
}

// Секции Content API на категорию; пустая секция — без фильтра.
var sectionMap = map[string]string{
	models.CategoryTop:      "",
	models.CategoryBreaking: "world",
	models.CategoryIntel:    "technology",
	models.CategoryIndustry: "business",
	models.CategoryWorld:    "world",
	models.CategoryFeatured: "",
}

// Client — HTTP-клиент Guardian Content API.
type Client struct {
	http           *http.Client
	baseURL        string
	key            string
	pageSize       int
	searchPageSize int
	limiter        *rate.Limiter
}

// Options — настройки клиента.
type Options struct {
	BaseURL        string
	APIKey         string
	PageSize       int
	SearchPageSize int
	Timeout        time.Duration
	RPS            float64
}

// New создаёт клиент Guardian.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://content.guardianapis.com"
	}

	if opts.APIKey == "" {
		opts.APIKey = "test"
	}

	if opts.PageSize <= 0 {
		opts.PageSize = 12
	}

	if opts.SearchPageSize <= 0 {
		opts.SearchPageSize = 25
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	var lim *rate.Limiter
	if opts.RPS > 0 {
		lim = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}

	return &Client{
		http:           &http.Client{Timeout: opts.Timeout},
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		key:            opts.APIKey,
		pageSize:       opts.PageSize,
		searchPageSize: opts.SearchPageSize,
		limiter:        lim,
	}
}

// Name возвращает стабильное имя провайдера.
func (c *Client) Name() string { return ProviderName }

// FetchCategory наполняет категорию перебором поисковых подсказок.
// Исчерпание подсказок — пустой срез; ErrAuthBlocked всплывает.
func (c *Client) FetchCategory(ctx context.Context, category string, page int) ([]models.Article, error) {
	const op = "providers/guardian/FetchCategory"

	hints := searchHintMap[category]
	if len(hints) == 0 {
		hints = []string{category}
	}

	lg := log.From(ctx)

	var lastErr error
	for _, hint := range hints {
		raw, err := c.doSearch(ctx, hint, category, page, c.pageSize)
		if err != nil {
			if errors.Is(err, providers.ErrAuthBlocked) {
				return nil, fmt.Errorf("%s: %w", op, err)
			}

			lg.Warn("guardian_hint_failed",
				slog.String("op", op),
				slog.String("hint", hint),
				slog.String("err", err.Error()),
			)
			lastErr = err
			continue
		}

		if len(raw) > 0 {
			return c.mapArticles(category, page, raw), nil
		}
	}

	if lastErr != nil {
		lg.Warn("guardian_hints_exhausted",
			slog.String("op", op),
			slog.String("category", category),
			slog.String("err", lastErr.Error()),
		)
	}

	return nil, nil
}

// Search выполняет свободнотекстовый поиск.
// Классифицированная ошибка всплывает к движку.
func (c *Client) Search(ctx context.Context, query, category string) ([]models.Article, error) {
	const op = "providers/guardian/Search"

	raw, err := c.doSearch(ctx, query, category, 1, c.searchPageSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c.mapArticles(category, 1, raw), nil
}

// searchResponse — частичная форма ответа Content API.
type searchResponse struct {
	Response struct {
		Results []rawItem `json:"results"`
	} `json:"response"`
}

// rawItem — типизированная частичная запись.
// Поля-кандидаты перечислены в порядке, в котором их пробует маппер
// (Content API и совместимые зеркала называют их по-разному).
type rawItem struct {
	Title              string `json:"title"`
	WebTitle           string `json:"webTitle"`
	URL                string `json:"url"`
	WebURL             string `json:"webUrl"`
	SectionName        string `json:"sectionName"`
	NewsSite           string `json:"news_site"`
	Summary            string `json:"summary"`
	Description        string `json:"description"`
	PublishedAtSnake   string `json:"published_at"`
	PublishedAt        string `json:"publishedAt"`
	WebPublicationDate string `json:"webPublicationDate"`
	ImageURLSnake      string `json:"image_url"`
	Image              string `json:"image"`
	URLToImage         string `json:"urlToImage"`
	Source             struct {
		Name string `json:"name"`
	} `json:"source"`
	Fields struct {
		Thumbnail string `json:"thumbnail"`
		TrailText string `json:"trailText"`
		Body      string `json:"body"`
		Byline    string `json:"byline"`
	} `json:"fields"`
}

// doSearch выполняет один запрос /search.
func (c *Client) doSearch(ctx context.Context, q, category string, page, pageSize int) ([]rawItem, error) {
	const op = "providers/guardian/doSearch"

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, providers.ErrTransport)
		}
	}

	params := url.Values{}
	params.Set("api-key", c.key)
	params.Set("page", strconv.Itoa(page))
	params.Set("page-size", strconv.Itoa(pageSize))
	params.Set("order-by", "newest")
	params.Set("show-fields", "thumbnail,trailText,body,byline")
	if s := sectionMap[category]; s != "" {
		params.Set("section", s)
	}
	if q != "" {
		params.Set("q", q)
	}

	reqURL := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: new_request: %w", op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: do: %w: %v", op, providers.ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := providers.ClassifyStatus(resp.StatusCode); err != nil {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w: %v", op, providers.ErrTransport, err)
	}

	return out.Response.Results, nil
}

// mapArticles переводит сырые записи в канонические статьи.
// Для каждого целевого поля берётся первый непустой кандидат.
func (c *Client) mapArticles(category string, page int, raw []rawItem) []models.Article {
	out := make([]models.Article, 0, len(raw))

	for idx, it := range raw {
		title := firstClean(it.Title, it.WebTitle)
		if title == "" {
			title = "Untitled"
		}

		publishedAt := firstClean(it.PublishedAtSnake, it.PublishedAt, it.WebPublicationDate)
		stamp := providers.DigitStamp(publishedAt)
		if stamp == "" {
			stamp = strconv.FormatInt(time.Now().UnixMilli(), 10) + strconv.Itoa(idx)
		}

		source := firstClean(it.NewsSite, it.Source.Name, it.SectionName)
		if source == "" {
			source = "News Desk"
		}

		summary := firstClean(it.Summary, it.Description, it.Fields.TrailText)
		if summary == "" {
			summary = "Open to read details."
		}

		var image *models.Image
		imgSrc := providers.NormalizeImageURL(firstClean(
			it.ImageURLSnake, it.Image, it.URLToImage, it.Fields.Thumbnail,
		))
		if imgSrc != "" {
			image = &models.Image{Src: imgSrc, Alt: title}
		}

		author := providers.Clean(it.Fields.Byline)
		if author == "" {
			author = source
		}

		content := filterNonEmpty(
			summary,
			providers.Clean(it.Description),
			providers.Clean(it.Fields.Body),
		)

		out = append(out, models.Article{
			ID:       fmt.Sprintf("%s-%d-%d-%s", category, page, idx, stamp),
			Category: category,
			Region:   source,
			Tag:      strings.ToUpper(category),
			Title:    title,
			Summary:  summary,
			Author:   author,
			Date:     providers.SafeDate(publishedAt),
			ReadTime: "5 min read",
			Image:    image,
			URL:      firstClean(it.URL, it.WebURL),
			Content:  content,
		})
	}

	return out
}

// firstClean — первый непустой кандидат после нормализации.
func firstClean(candidates ...string) string {
	for _, c := range candidates {
		if v := providers.Clean(c); v != "" {
			return v
		}
	}

	return ""
}

func filterNonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
