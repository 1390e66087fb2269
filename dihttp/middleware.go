package dihttp

import (
	"net/http"

	"github.com/jrivets/log4g"

	"github.com/sectrean/daggerok"
	"github.com/sectrean/daggerok/dicontext"
	"github.com/sectrean/daggerok/internal/errors"
)

var log = log4g.GetLogger("daggerok.dihttp")

// ContextMiddleware stores the [daggerok.Context] on the context of every request.
//
// Requests that arrive before the Context is [daggerok.Ready] are passed to the not
// ready handler instead of the next handler.
//
// Available options:
//   - [WithNotReadyHandler] sets the handler for requests arriving while the Context is not ready.
func ContextMiddleware(c *daggerok.Context, opts ...MiddlewareOption) (func(http.Handler) http.Handler, error) {
	if c == nil {
		return nil, errors.New("dihttp.ContextMiddleware: context is nil")
	}

	mw := &contextMiddleware{
		c:               c,
		notReadyHandler: defaultNotReadyHandler,
	}

	var errs errors.MultiError
	for _, opt := range opts {
		errs = errs.Append(opt.applyMiddleware(mw))
	}
	if err := errs.Wrap("dihttp.ContextMiddleware"); err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mw.serveHTTP(w, r, next)
		})
	}, nil
}

// NotReadyHandler writes the response for a request that arrived while the
// [daggerok.Context] was in the given state.
//
// The default handler logs the state and writes a 503 Service Unavailable response.
type NotReadyHandler = func(w http.ResponseWriter, r *http.Request, state daggerok.State)

func defaultNotReadyHandler(w http.ResponseWriter, r *http.Request, state daggerok.State) {
	log.Warn("Rejecting request ", r.URL.Path, ": daggerok context is ", state)
	http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
}

type contextMiddleware struct {
	c               *daggerok.Context
	notReadyHandler NotReadyHandler
}

func (m *contextMiddleware) serveHTTP(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if state := m.c.State(); state != daggerok.Ready {
		m.notReadyHandler(w, r, state)
		return
	}

	ctx := dicontext.WithContext(r.Context(), m.c)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// MiddlewareOption configures the middleware when calling [ContextMiddleware].
type MiddlewareOption interface {
	applyMiddleware(*contextMiddleware) error
}

type middlewareOption func(*contextMiddleware) error

func (o middlewareOption) applyMiddleware(m *contextMiddleware) error {
	return o(m)
}

// WithNotReadyHandler sets the handler for requests arriving while the Context is not ready.
func WithNotReadyHandler(h NotReadyHandler) MiddlewareOption {
	return middlewareOption(func(m *contextMiddleware) error {
		if h == nil {
			return errors.New("WithNotReadyHandler: h is nil")
		}
		m.notReadyHandler = h
		return nil
	})
}
