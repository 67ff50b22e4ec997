package auth

import (
	"context"

	"github.com/procesos/product-directory/internal/domain"
)

type principalKey struct{}

// ContextWithPrincipal кладет личность вызывающего в контекст запроса.
func ContextWithPrincipal(ctx context.Context, principal domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext возвращает личность вызывающего, если она была установлена.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(domain.Principal)
	if !ok || !principal.IsAuthenticated() {
		return domain.Principal{}, false
	}
	return principal, true
}
