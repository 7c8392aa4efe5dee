package auth

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-router"
)

// StoreIDCookie holds the id of the user whose bearer token is cached
const StoreIDCookie = "visacheck_store_id"

// CookieWriter is the part of router.Context used to emit cookies
type CookieWriter interface {
	Cookie(cookie *router.Cookie)
}

// CookieReader is the part of router.Context used to read cookies
type CookieReader interface {
	Cookies(key string, defaultValue ...string) string
}

// CookieJar holds cookies queued during a request until they are flushed
// onto the response.
type CookieJar struct {
	mu       sync.Mutex
	queued   []*router.Cookie
	secure   bool
	sameSite string
	now      func() time.Time
}

type CookieJarOption func(*CookieJar)

// WithInsecureCookies drops the Secure flag, for plain HTTP development setups
func WithInsecureCookies() CookieJarOption {
	return func(j *CookieJar) {
		j.secure = false
	}
}

func WithSameSite(mode string) CookieJarOption {
	return func(j *CookieJar) {
		j.sameSite = mode
	}
}

func NewCookieJar(opts ...CookieJarOption) *CookieJar {
	j := &CookieJar{
		secure:   true,
		sameSite: "Lax",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Queue adds a cookie that expires after ttl
func (j *CookieJar) Queue(name, value string, ttl time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.queued = append(j.queued, &router.Cookie{
		Name:     name,
		Value:    value,
		Expires:  j.now().Add(ttl),
		HTTPOnly: true,
		Secure:   j.secure,
		SameSite: j.sameSite,
	})
}

// Forget queues an already expired cookie so the client drops it
func (j *CookieJar) Forget(name string) {
	j.Queue(name, "", -time.Hour*(24*365))
}

// Queued returns the cookies waiting to be flushed
func (j *CookieJar) Queued() []*router.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]*router.Cookie, len(j.queued))
	copy(out, j.queued)
	return out
}

// Flush writes every queued cookie and empties the queue
func (j *CookieJar) Flush(w CookieWriter) {
	j.mu.Lock()
	queued := j.queued
	j.queued = nil
	j.mu.Unlock()

	for _, cookie := range queued {
		w.Cookie(cookie)
	}
}

var cookieJarCtxKey = &contextKey{"cookie_jar"}

// WithCookieJar stores jar in the context
func WithCookieJar(ctx context.Context, jar *CookieJar) context.Context {
	return context.WithValue(ctx, cookieJarCtxKey, jar)
}

// CookieJarFromContext returns the jar installed by QueuedCookies
func CookieJarFromContext(ctx context.Context) (*CookieJar, bool) {
	jar, ok := ctx.Value(cookieJarCtxKey).(*CookieJar)
	return jar, ok && jar != nil
}

// ContextCookieQueue queues cookies into the jar carried by the request
// context. Requests without a jar drop the cookie with a warning.
type ContextCookieQueue struct {
	Logger Logger
}

var _ CookieQueue = ContextCookieQueue{}

func (q ContextCookieQueue) Queue(ctx context.Context, name, value string, ttl time.Duration) {
	jar, ok := CookieJarFromContext(ctx)
	if !ok {
		logger := q.Logger
		if logger == nil {
			logger = defLogger{}
		}
		logger.Warn("no cookie jar in context, dropping cookie", "name", name)
		return
	}
	jar.Queue(name, value, ttl)
}

// QueuedCookies installs a fresh CookieJar on every request and writes its
// cookies once the handler returns.
func QueuedCookies(opts ...CookieJarOption) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			jar := NewCookieJar(opts...)
			c.SetContext(WithCookieJar(c.Context(), jar))

			err := next(c)
			jar.Flush(c)

			return err
		}
	}
}
