package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/globalwire/newspulse/internal/models"
	"github.com/globalwire/newspulse/internal/providers"
	"github.com/globalwire/newspulse/pkg/log"
)

// FetchCategory возвращает страницу категории: из кэша либо от провайдеров.
//
// Особенности:
//   - force пропускает чтение кэша, но результат кэшируется как обычно;
//   - конкурентные промахи по одному ключу схлопываются в один запрос;
//   - auth-отказ первичного провайдера липко переводит движок на резервный,
//     остальные отказы и пустые выборки добираются резервным в том же вызове;
//     после failover заблокированный первичный не вызывается вовсе;
//   - пустой итог не кэшируется (и вытесняет устаревшую запись), чтобы
//     следующий запрос снова попытал апстрим.
func (s *Service) FetchCategory(ctx context.Context, category string, page int, force bool) ([]models.Article, error) {
	const op = "service/fetch/FetchCategory"

	category = models.NormalizeCategory(category)
	if page < 1 {
		page = 1
	}

	key := s.categoryKey(s.ActiveProvider(), category, page)

	if !force {
		if arts, ok := s.cachedCopy(key); ok {
			s.metrics.CacheEvents.WithLabelValues("hit").Inc()
			return arts, nil
		}
	}
	s.metrics.CacheEvents.WithLabelValues("miss").Inc()

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		return s.loadCategory(ctx, key, category, page)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	arts := v.([]models.Article)
	out := make([]models.Article, len(arts))
	copy(out, arts)

	return out, nil
}

// loadCategory — промах кэша: активный провайдер, затем резервный.
func (s *Service) loadCategory(ctx context.Context, key, category string, page int) ([]models.Article, error) {
	const op = "service/fetch/loadCategory"

	lg := log.From(ctx)
	pair := s.activePair()
	active, backup := pair[0], pair[1]

	arts, err := active.FetchCategory(ctx, category, page)
	s.observeProvider(active.Name(), "category", len(arts), err)
	if err != nil {
		if errors.Is(err, providers.ErrAuthBlocked) && active.Name() == s.primary.Name() {
			s.markPrimaryBlocked()
			lg.Warn("primary_auth_blocked_failover",
				slog.String("op", op),
				slog.String("provider", active.Name()),
			)
		} else {
			lg.Warn("provider_category_failed",
				slog.String("op", op),
				slog.String("provider", active.Name()),
				slog.String("err", err.Error()),
			)
		}
		arts = nil
	}

	if len(arts) == 0 && backup != nil {
		barts, berr := backup.FetchCategory(ctx, category, page)
		s.observeProvider(backup.Name(), "category", len(barts), berr)
		if berr != nil {
			lg.Warn("backup_category_failed",
				slog.String("op", op),
				slog.String("provider", backup.Name()),
				slog.String("err", berr.Error()),
			)
			barts = nil
		}
		arts = barts
	}

	arts = sortByImage(dedupe(arts))
	s.storeResult(key, arts)

	if arts == nil {
		arts = []models.Article{}
	}

	return arts, nil
}
