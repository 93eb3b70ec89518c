package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/globalwire/newspulse/internal/models"
	"github.com/globalwire/newspulse/internal/providers"
	"github.com/globalwire/newspulse/pkg/log"
)

// Search выполняет свободнотекстовый поиск по провайдерам.
//
// Особенности:
//   - пустой запрос даёт пустую выдачу без обращения к апстриму;
//   - при отказе активного провайдера выборку добирает резервный;
//     если отказали оба пути — ErrUnavailable;
//   - выдача дедуплицируется и ранжируется по релевантности запросу;
//   - пустой итог не кэшируется.
func (s *Service) Search(ctx context.Context, query, category string) ([]models.Article, error) {
	const op = "service/search/Search"

	q := strings.ToLower(strings.TrimSpace(query))
	category = models.NormalizeCategory(category)

	if q == "" {
		s.metrics.SearchRequests.WithLabelValues("empty").Inc()
		return []models.Article{}, nil
	}

	key := s.searchKey(s.ActiveProvider(), category, q)

	if arts, ok := s.cachedCopy(key); ok {
		s.metrics.CacheEvents.WithLabelValues("hit").Inc()
		return arts, nil
	}
	s.metrics.CacheEvents.WithLabelValues("miss").Inc()

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		return s.loadSearch(ctx, key, q, category)
	})
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			s.metrics.SearchRequests.WithLabelValues("unavailable").Inc()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	arts := v.([]models.Article)
	if len(arts) == 0 {
		s.metrics.SearchRequests.WithLabelValues("empty").Inc()
	} else {
		s.metrics.SearchRequests.WithLabelValues("ok").Inc()
	}

	out := make([]models.Article, len(arts))
	copy(out, arts)

	return out, nil
}

// loadSearch — промах кэша поиска: активный провайдер, затем резервный.
func (s *Service) loadSearch(ctx context.Context, key, query, category string) ([]models.Article, error) {
	const op = "service/search/loadSearch"

	lg := log.From(ctx)
	pair := s.activePair()
	active, backup := pair[0], pair[1]

	arts, err := active.Search(ctx, query, category)
	s.observeProvider(active.Name(), "search", len(arts), err)
	if err != nil {
		if errors.Is(err, providers.ErrAuthBlocked) && active.Name() == s.primary.Name() {
			s.markPrimaryBlocked()
			lg.Warn("primary_auth_blocked_failover",
				slog.String("op", op),
				slog.String("provider", active.Name()),
			)
		} else {
			lg.Warn("provider_search_failed",
				slog.String("op", op),
				slog.String("provider", active.Name()),
				slog.String("err", err.Error()),
			)
		}
		arts = nil
	}

	// Резервный путь: и при отказе активного, и при пустой выборке.
	// После failover резервного слота нет: заблокированный первичный
	// провайдер не вызывается.
	if len(arts) == 0 {
		if backup == nil {
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
			}
		} else {
			barts, berr := backup.Search(ctx, query, category)
			s.observeProvider(backup.Name(), "search", len(barts), berr)
			switch {
			case berr != nil && err != nil:
				return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
			case berr != nil:
				lg.Warn("backup_search_failed",
					slog.String("op", op),
					slog.String("provider", backup.Name()),
					slog.String("err", berr.Error()),
				)
			default:
				arts = barts
			}
		}
	}

	arts = rank(query, sortByImage(dedupe(arts)))
	s.storeResult(key, arts)

	if arts == nil {
		arts = []models.Article{}
	}

	return arts, nil
}
