package auth

import (
	"context"
	"net/http"

	"github.com/redmonkez12/healthmate-api/internal/logging"
	"github.com/redmonkez12/healthmate-api/internal/user"
)

type userCtxKey struct{}

// Middleware attaches the session user, if any, to requests
type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// WithIdentity resolves the session cookie without ever rejecting the
// request: anonymous and invalid sessions pass through unchanged. A resolved
// user is stored in the context and added to the request logger.
func (m *Middleware) WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		me, err := m.service.Identify(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		logger := logging.FromContext(r.Context()).WithFields(map[string]any{"user_id": me.ID})
		ctx := context.WithValue(r.Context(), userCtxKey{}, me)
		ctx = logging.WithLogger(ctx, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the user stored by WithIdentity.
func UserFromContext(ctx context.Context) (*user.PublicUser, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*user.PublicUser)
	return u, ok
}
