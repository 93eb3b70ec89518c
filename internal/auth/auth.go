// auth — верификация админских bearer-токенов (JWT HS256).
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken — заголовок Authorization отсутствует или не bearer.
	ErrNoToken = errors.New("missing bearer token")
	// ErrInvalidToken — подпись/срок/issuer токена не прошли проверку.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotAdmin — токен валиден, но админского права нет.
	ErrNotAdmin = errors.New("not an admin")
)

// Claims — ожидаемая форма полезной нагрузки админского токена.
type Claims struct {
	Admin bool   `json:"admin"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier проверяет подпись и права токена.
//
// Особенности:
//   - допускается только HS256 — заголовок alg атакующего не выбирает метод;
//   - небольшой leeway сглаживает рассинхронизацию часов;
//   - issuer и audience проверяются, только если заданы в конфигурации.
type Verifier struct {
	secret   []byte
	issuer   string
	audience []string
	leeway   time.Duration
}

// Option настраивает Verifier.
type Option func(*Verifier)

// WithIssuer включает проверку iss.
func WithIssuer(iss string) Option {
	return func(v *Verifier) { v.issuer = iss }
}

// WithAudience включает проверку aud (достаточно одного совпадения).
func WithAudience(aud []string) Option {
	return func(v *Verifier) { v.audience = aud }
}

// NewVerifier создаёт верификатор с секретом HS256.
func NewVerifier(secret string, opts ...Option) *Verifier {
	v := &Verifier{
		secret: []byte(secret),
		leeway: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(v)
	}

	return v
}

// VerifyAdmin разбирает bearer-токен из значения заголовка Authorization
// и требует валидную подпись плюс claim admin=true.
func (v *Verifier) VerifyAdmin(authHeader string) (*Claims, error) {
	const op = "auth/VerifyAdmin"

	raw, err := bearerToken(authHeader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}
	for _, aud := range v.audience {
		parserOpts = append(parserOpts, jwt.WithAudience(aud))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if !claims.Admin {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAdmin)
	}

	return claims, nil
}

// bearerToken извлекает токен из "Bearer <token>" без учёта регистра схемы.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrNoToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrNoToken
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrNoToken
	}

	return token, nil
}
