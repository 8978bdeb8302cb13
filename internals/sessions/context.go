package sessions

import (
	"context"
	"net/http"

	"Resource-Library/internals/models"
)

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying who.
func WithIdentity(ctx context.Context, who *models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, who)
}

// IdentityFrom returns the signed-in identity, or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *models.Identity {
	who, _ := ctx.Value(ctxKey{}).(*models.Identity)
	return who
}

// Middleware resolves the session cookie and stores the identity in the
// request context. Lookup failures are logged and the request continues
// anonymously.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Load(r)
		if err != nil {
			m.log.WithError(err).Error("session lookup failed")
		}
		if sess != nil {
			r = r.WithContext(WithIdentity(r.Context(), sess.Identity()))
		}
		next.ServeHTTP(w, r)
	})
}
