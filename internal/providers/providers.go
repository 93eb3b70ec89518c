// providers описывает контракт клиента внешнего новостного провайдера
// и классификацию его отказов.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/globalwire/newspulse/internal/models"
)

var (
	// ErrAuthBlocked — ключ отклонён либо тариф запрещает эндпойнт (401/403).
	// Единственный отказ, меняющий состояние провайдера в движке.
	ErrAuthBlocked = errors.New("provider auth blocked")
	// ErrRateLimited — исчерпана квота (429). Транзиентный, состояние не меняет.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrTransport — сеть/таймаут/битый ответ. Транзиентный, состояние не меняет.
	ErrTransport = errors.New("provider transport error")
)

// Provider — клиент одного апстрим-провайдера.
//
// Контракт:
//   - FetchCategory перебирает собственный упорядоченный набор планов запроса
//     и возвращает первый непустой результат; если планы исчерпаны —
//     пустой срез без ошибки, кроме случая ErrAuthBlocked (он всплывает,
//     потому что меняет состояние здоровья провайдера);
//   - Search возвращает классифицированную ошибку при полном отказе, чтобы
//     движок мог отличить «нет данных» от «провайдер недоступен»;
//   - оба метода возвращают уже канонические models.Article.
type Provider interface {
	// Name — стабильное имя провайдера (ключ кэша и метрик).
	Name() string
	// FetchCategory загружает страницу категории.
	FetchCategory(ctx context.Context, category string, page int) ([]models.Article, error)
	// Search выполняет свободнотекстовый поиск в рамках категории.
	Search(ctx context.Context, query, category string) ([]models.Article, error)
}

// ClassifyStatus переводит HTTP-статус в классифицированную ошибку.
// Статусы 2xx дают nil.
func ClassifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("status=%d: %w", status, ErrAuthBlocked)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("status=%d: %w", status, ErrRateLimited)
	default:
		return fmt.Errorf("status=%d: %w", status, ErrTransport)
	}
}
