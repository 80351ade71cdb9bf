package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	domsession "example.com/storefront/internal/domain/session"
)

type ctxSessionKey struct{}

var (
	errUnauthenticated = errors.New("unauthenticated")
	errNoSession       = errors.New("no session")
)

// sessionMiddleware loads the visitor's session for the whole request and saves
// it afterwards. The session stays locked until the handler returns, so two
// requests from the same visitor never interleave.
func (a *API) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, renew := a.sessionID(r)
		if id == "" {
			id = uuid.NewString()
			renew = true
		}
		// the store slides the session TTL on every save; the cookie has to keep up
		if renew {
			if err := a.setSessionCookie(w, id); err != nil {
				a.logger.Error("sign session cookie", slog.Any("error", err))
				respondError(w, http.StatusInternalServerError, errors.New("internal error"))
				return
			}
		}

		sess, err := a.sessions.Open(r.Context(), id)
		switch {
		case errors.Is(err, domsession.ErrSessionBusy):
			respondUnavailable(w, true)
			return
		case err != nil:
			a.logger.Warn("open session", slog.String("session_id", id), slog.Any("error", err))
			respondUnavailable(w, true)
			return
		}
		defer a.sessions.Release(id)

		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))

		// the response is already out; a failed save loses this request's cart changes
		if err := a.sessions.Save(context.WithoutCancel(r.Context()), sess); err != nil {
			a.logger.Error("save session", slog.String("session_id", id), slog.Any("error", err))
		}
	})
}

// sessionID returns the id in the visitor's cookie and whether the cookie is
// due to be re-signed.
func (a *API) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(a.cookie.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, renew, err := a.tokenSvc.ParseForRenewal(c.Value)
	if err != nil {
		return "", false
	}
	return id, renew
}

func (a *API) setSessionCookie(w http.ResponseWriter, id string) error {
	token, err := a.tokenSvc.Sign(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   a.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func getSession(ctx context.Context) *domsession.Context {
	if sess, ok := ctx.Value(ctxSessionKey{}).(*domsession.Context); ok {
		return sess
	}
	return nil
}

// adminMiddleware guards admin routes with HTTP basic auth.
func (a *API) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || a.admin == nil || !a.admin.Verify(user, pass) {
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}
