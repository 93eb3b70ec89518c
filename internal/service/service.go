// service содержит движок агрегации новостей: кэш выборок,
// коалесинг конкурентных запросов и липкий failover между провайдерами.
package service

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/globalwire/newspulse/internal/config"
	"github.com/globalwire/newspulse/internal/metrics"
	"github.com/globalwire/newspulse/internal/models"
	"github.com/globalwire/newspulse/internal/providers"
	"github.com/globalwire/newspulse/internal/storage"
)

var (
	// ErrUnavailable — все провайдерские пути запроса завершились отказом.
	ErrUnavailable = errors.New("news providers unavailable")
	// ErrNotFound — редакционная статья не найдена.
	ErrNotFound = errors.New("story not found")
	// ErrInvalidArgument — некорректные входные данные операции.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Service — движок агрегации и редакционный слой.
//
// Особенности:
//   - кэш выборок живёт в памяти процесса; ключи включают имя провайдера,
//     поэтому после failover старые записи не перетираются;
//   - конкурентные промахи по одному ключу коалесируются через singleflight:
//     апстрим видит ровно один запрос;
//   - primaryBlocked — липкое состояние: взводится только auth-отказом
//     первичного провайдера и сбрасывается только ClearCache.
type Service struct {
	primary providers.Provider
	backup  providers.Provider
	stories storage.Storage
	metrics *metrics.Metrics
	limits  config.LimitsConfig

	flight singleflight.Group

	mu             sync.Mutex
	cache          map[string][]models.Article
	primaryBlocked bool
}

// New создаёт движок поверх пары провайдеров и хранилища статей.
func New(primary, backup providers.Provider, stories storage.Storage, m *metrics.Metrics, limits config.LimitsConfig) *Service {
	return &Service{
		primary: primary,
		backup:  backup,
		stories: stories,
		metrics: m,
		limits:  limits,
		cache:   make(map[string][]models.Article),
	}
}

// ClearCache сбрасывает кэш и состояние здоровья провайдеров.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = make(map[string][]models.Article)
	s.primaryBlocked = false
}

// ActiveProvider — имя провайдера, обслуживающего запросы сейчас.
func (s *Service) ActiveProvider() string {
	return s.activePair()[0].Name()
}

// CachedCategory возвращает закэшированную первую страницу категории,
// если она есть под любым из провайдерских ключей. Апстрим не трогает.
func (s *Service) CachedCategory(category string) ([]models.Article, bool) {
	category = models.NormalizeCategory(category)

	keys := []string{s.categoryKey(s.ActiveProvider(), category, 1)}
	for _, name := range []string{s.primary.Name(), s.backup.Name()} {
		if k := s.categoryKey(name, category, 1); k != keys[0] {
			keys = append(keys, k)
		}
	}

	for _, k := range keys {
		if arts, ok := s.cachedCopy(k); ok {
			return arts, true
		}
	}

	return nil, false
}

// activePair — [активный, резервный] провайдер с учётом липкого состояния.
// После failover резервного слота нет: заблокированный первичный провайдер
// не вызывается вовсе, пока состояние не сбросит ClearCache.
func (s *Service) activePair() [2]providers.Provider {
	s.mu.Lock()
	blocked := s.primaryBlocked
	s.mu.Unlock()

	if blocked {
		return [2]providers.Provider{s.backup, nil}
	}

	return [2]providers.Provider{s.primary, s.backup}
}

// markPrimaryBlocked взводит липкий failover. Повторные вызовы не считаются.
func (s *Service) markPrimaryBlocked() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.primaryBlocked {
		return
	}

	s.primaryBlocked = true
	s.metrics.Failovers.Inc()
}

func (s *Service) categoryKey(provider, category string, page int) string {
	return fmt.Sprintf("%s:%s:p%d", provider, category, page)
}

func (s *Service) searchKey(provider, category, query string) string {
	return fmt.Sprintf("%s:search:%s:%s", provider, category, query)
}

// cachedCopy возвращает копию записи кэша, чтобы хендлеры не делили срез.
func (s *Service) cachedCopy(key string) ([]models.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	arts, ok := s.cache[key]
	if !ok {
		return nil, false
	}

	out := make([]models.Article, len(arts))
	copy(out, arts)

	return out, true
}

// storeResult кладёт непустой результат в кэш; пустой — вытесняет ключ,
// чтобы следующий запрос снова ушёл к апстриму.
func (s *Service) storeResult(key string, arts []models.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(arts) == 0 {
		if _, ok := s.cache[key]; ok {
			delete(s.cache, key)
			s.metrics.CacheEvents.WithLabelValues("evict").Inc()
		}
		return
	}

	stored := make([]models.Article, len(arts))
	copy(stored, arts)
	s.cache[key] = stored
}

// observeProvider — единая точка учёта исходов обращений к провайдерам.
func (s *Service) observeProvider(provider, op string, count int, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, providers.ErrAuthBlocked):
		outcome = "auth_blocked"
	case errors.Is(err, providers.ErrRateLimited):
		outcome = "rate_limited"
	case err != nil:
		outcome = "transport"
	case count == 0:
		outcome = "empty"
	}

	s.metrics.ProviderRequests.WithLabelValues(provider, op, outcome).Inc()
}
