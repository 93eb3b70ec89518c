// gnews — клиент первичного провайдера (GNews API v4).
package gnews

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
const ProviderName = "gnews"

// Маппинг категорий ленты на категории GNews.
var categoryMap = map[string]string{
	models.CategoryTop:      "general",
	models.CategoryBreaking: "general",
	models.CategoryIntel:    "technology",
	models.CategoryIndustry: "business",
	models.CategoryWorld:    "world",
	models.CategoryFeatured: "general",
}

// Категории, которые наполняются поисковым запросом вместо top-headlines.
var queryMap = map[string]string{
	models.CategoryBreaking: "breaking OR urgent OR live OR alert OR attack OR crisis OR emergency",
	models.CategoryFeatured: "analysis OR explainer OR interview",
}

// Последний план: generic-поиск, если top-headlines ничего не дали.
var searchFallbackMap = map[string]string{
	models.CategoryTop:      "latest headlines world politics business technology",
	models.CategoryBreaking: "breaking urgent live update",
	models.CategoryIntel:    "technology ai cybersecurity defense intelligence",
	models.CategoryIndustry: "industry business market economy startup",
	models.CategoryWorld:    "world international diplomacy geopolitics",
	models.CategoryFeatured: "feature analysis interview explainer",
}

// Client — HTTP-клиент GNews.
//
// Особенности:
//   - владеет упорядоченным набором планов запроса на категорию
//     (полные параметры -> минимальные -> generic-поиск);
//   - rate-limiter ограничивает частоту обращений к апстриму.
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
	// RPS — клиентский лимит обращений; <=0 отключает лимитер.
	RPS float64
}

// New создаёт клиент GNews.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://gnews.io/api/v4"
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

// plan — один вариант запроса: эндпойнт и параметры.
type plan struct {
	endpoint string
	params   url.Values
}

// FetchCategory загружает страницу категории.
// Планы пробуются по порядку, возвращается первый непустой результат.
// Исчерпание планов — пустой срез без ошибки; ErrAuthBlocked всплывает.
func (c *Client) FetchCategory(ctx context.Context, category string, page int) ([]models.Article, error) {
	const op = "providers/gnews/FetchCategory"

	if c.key == "" {
		log.From(ctx).Warn("gnews_key_missing", slog.String("op", op))
		return nil, nil
	}

	lg := log.From(ctx)

	var lastErr error
	for i, p := range c.categoryPlans(category, page) {
		raw, err := c.doList(ctx, p)
		if err != nil {
			if errors.Is(err, providers.ErrAuthBlocked) {
				return nil, fmt.Errorf("%s: %w", op, err)
			}

			lg.Warn("gnews_plan_failed",
				slog.String("op", op),
				slog.Int("plan", i),
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
		lg.Warn("gnews_plans_exhausted",
			slog.String("op", op),
			slog.String("category", category),
			slog.String("err", lastErr.Error()),
		)
	}

	return nil, nil
}

// Search выполняет свободнотекстовый поиск.
// Не-auth отказ повторяется один раз с упрощёнными параметрами;
// после повтора классифицированная ошибка всплывает к движку.
func (c *Client) Search(ctx context.Context, query, category string) ([]models.Article, error) {
	const op = "providers/gnews/Search"

	if c.key == "" {
		log.From(ctx).Warn("gnews_key_missing", slog.String("op", op))
		return nil, nil
	}

	params := url.Values{}
	params.Set("apikey", c.key)
	params.Set("lang", "en")
	params.Set("max", strconv.Itoa(c.searchPageSize))
	params.Set("q", query)

	raw, err := c.doList(ctx, plan{endpoint: "/search", params: params})
	if err != nil {
		if errors.Is(err, providers.ErrAuthBlocked) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		log.From(ctx).Warn("gnews_search_retry",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		raw, err = c.doList(ctx, plan{endpoint: "/search", params: params})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return c.mapArticles(category, 1, raw), nil
}

// categoryPlans — упорядоченный набор планов для категории:
// богатый набор параметров, минимальный набор, generic-поиск.
func (c *Client) categoryPlans(category string, page int) []plan {
	base := url.Values{}
	base.Set("apikey", c.key)
	base.Set("lang", "en")
	base.Set("max", strconv.Itoa(c.pageSize))
	if page > 1 {
		base.Set("page", strconv.Itoa(page))
	}

	minimal := url.Values{}
	minimal.Set("apikey", c.key)
	minimal.Set("lang", "en")
	minimal.Set("max", strconv.Itoa(c.pageSize))

	mapped := categoryMap[category]
	if mapped == "" {
		mapped = "general"
	}

	if q, ok := queryMap[category]; ok {
		rich := cloneValues(base)
		rich.Set("q", q)

		min := cloneValues(minimal)
		min.Set("q", q)

		return []plan{
			{endpoint: "/search", params: rich},
			{endpoint: "/search", params: min},
		}
	}

	rich := cloneValues(base)
	rich.Set("category", mapped)

	min := cloneValues(minimal)
	min.Set("category", mapped)

	generic := cloneValues(base)
	if q := searchFallbackMap[category]; q != "" {
		generic.Set("q", q)
	} else {
		generic.Set("q", mapped)
	}

	return []plan{
		{endpoint: "/top-headlines", params: rich},
		{endpoint: "/top-headlines", params: min},
		{endpoint: "/search", params: generic},
	}
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		for _, val := range vals {
			out.Add(k, val)
		}
	}

	return out
}

// listResponse — частичная форма ответа GNews.
type listResponse struct {
	Articles []rawArticle `json:"articles"`
}

// rawArticle — типизированная частичная запись провайдера.
// Поля-кандидаты картинки перечислены в порядке приоритета маппера.
type rawArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	URLToImage  string `json:"urlToImage"`
	Thumbnail   string `json:"thumbnail"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// doList выполняет один план и декодирует список сырых записей.
func (c *Client) doList(ctx context.Context, p plan) ([]rawArticle, error) {
	const op = "providers/gnews/doList"

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, providers.ErrTransport)
		}
	}

	reqURL := c.baseURL + p.endpoint + "?" + p.params.Encode()
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

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w: %v", op, providers.ErrTransport, err)
	}

	return out.Articles, nil
}

// mapArticles переводит сырые записи в канонические статьи.
// Тотален: отсутствующие поля деградируют к дефолтам, никогда не падает.
func (c *Client) mapArticles(category string, page int, raw []rawArticle) []models.Article {
	out := make([]models.Article, 0, len(raw))

	for idx, a := range raw {
		title := providers.Clean(a.Title)
		if title == "" {
			title = "Untitled"
		}

		publishedAt := providers.Clean(a.PublishedAt)
		stamp := providers.DigitStamp(publishedAt)
		if stamp == "" {
			stamp = strconv.FormatInt(time.Now().UnixMilli(), 10) + strconv.Itoa(idx)
		}

		source := providers.Clean(a.Source.Name)
		if source == "" {
			source = "News Desk"
		}

		summary := providers.Clean(a.Description)
		if summary == "" {
			summary = "Open to read details."
		}

		var image *models.Image
		if src := pickImage(a); src != "" {
			image = &models.Image{Src: src, Alt: title}
		}

		content := filterNonEmpty(
			providers.Clean(a.Description),
			providers.Clean(a.Content),
		)

		out = append(out, models.Article{
			ID:       fmt.Sprintf("%s-%d-%d-%s", category, page, idx, stamp),
			Category: category,
			Region:   source,
			Tag:      strings.ToUpper(category),
			Title:    title,
			Summary:  summary,
			Author:   source,
			Date:     providers.SafeDate(publishedAt),
			ReadTime: "5 min read",
			Image:    image,
			URL:      providers.Clean(a.URL),
			Content:  content,
		})
	}

	return out
}

// pickImage — первый пригодный кандидат обложки, нормализованный к HTTPS.
func pickImage(a rawArticle) string {
	for _, cand := range []string{a.Image, a.URLToImage, a.Thumbnail} {
		if v := providers.NormalizeImageURL(cand); v != "" && strings.HasPrefix(v, "http") {
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
