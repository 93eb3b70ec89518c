package middleware

import (
	"context"
	"net/http"

	"github.com/globalwire/newspulse/internal/auth"
	apierrors "github.com/globalwire/newspulse/internal/errors"
)

type ctxKeyAdmin struct{}

// RequireAdmin проверяет bearer-токен из Authorization и пускает дальше
// только админов. Claims кладутся в контекст для хендлеров.
//
// Маппинг отказов: нет токена/битый токен -> 401, нет права admin -> 403.
func RequireAdmin(v *auth.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.VerifyAdmin(r.Header.Get("Authorization"))
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdmin{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminClaims возвращает claims админа из контекста, если запрос прошёл
// через RequireAdmin.
func AdminClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ctxKeyAdmin{}).(*auth.Claims)
	return claims, ok
}
