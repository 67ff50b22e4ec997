// Package auth проверяет bearer-токены (JWT, HS256) и превращает их в domain.Principal.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/procesos/product-directory/internal/cfg"
	"github.com/procesos/product-directory/internal/domain"
	"github.com/procesos/product-directory/pkg/e"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

var errInvalidSubject = errors.New("token subject is not a user id")

// tokenClaims - claims, которые подписываются в токене.
type tokenClaims struct {
	jwt.RegisteredClaims
	Authorities []string `json:"authorities,omitempty"`
}

// TokenAuthenticator проверяет и выпускает токены общим секретом.
type TokenAuthenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenAuthenticator(cfg *cfg.JWTCfg) *TokenAuthenticator {
	return &TokenAuthenticator{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (a *TokenAuthenticator) WithClock(now func() time.Time) *TokenAuthenticator {
	a.now = now
	return a
}

// ExtractToken достает токен из заголовка Authorization со схемой "Bearer ".
func ExtractToken(header http.Header) (string, bool) {
	raw := header.Get(authorizationHeader)
	if !strings.HasPrefix(raw, bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
	if token == "" {
		return "", false
	}

	return token, true
}

// Validate возвращает true, только если подпись верна и срок действия не истек.
func (a *TokenAuthenticator) Validate(token string) bool {
	_, err := a.parse(token)
	return err == nil
}

// DeriveIdentity строит Principal из токена. Вызывать только после успешного Validate.
// Subject, не являющийся положительным числовым ID, дает ошибку.
func (a *TokenAuthenticator) DeriveIdentity(token string) (domain.Principal, error) {
	const op = "TokenAuthenticator.DeriveIdentity"

	claims, err := a.parse(token)
	if err != nil {
		return domain.Principal{}, e.Wrap(op, err)
	}

	userID, err := subjectToUserID(claims.Subject)
	if err != nil {
		return domain.Principal{}, e.Wrap(op, err)
	}

	return domain.NewPrincipal(userID, claims.Authorities), nil
}

// AuthenticateRequest устанавливает личность в контекст, если токен присутствует и валиден.
// В остальных случаях контекст возвращается без изменений.
func (a *TokenAuthenticator) AuthenticateRequest(ctx context.Context, header http.Header) context.Context {
	token, ok := ExtractToken(header)
	if !ok || !a.Validate(token) {
		return ctx
	}

	principal, err := a.DeriveIdentity(token)
	if err != nil {
		return ctx
	}

	return ContextWithPrincipal(ctx, principal)
}

// Issue подписывает новый токен для пользователя.
func (a *TokenAuthenticator) Issue(userID int64, authorities []string) (string, error) {
	const op = "TokenAuthenticator.Issue"

	now := a.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		Authorities: authorities,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return signed, nil
}

func (a *TokenAuthenticator) parse(token string) (*tokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return &claims, nil
}

func subjectToUserID(subject string) (int64, error) {
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidSubject
	}
	return id, nil
}
