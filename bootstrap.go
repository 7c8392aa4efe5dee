package auth

import (
	"context"
	"net/http"

	"github.com/goliatone/go-router"
	"github.com/visacheck/go-auth/sdk"
)

// NewClient validates cfg and builds the process wide API client
func NewClient(cfg Config, httpClient *http.Client) (*sdk.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return sdk.New(cfg.SDKConfig(httpClient))
}

// StoredClient returns a client carrying the bearer token cached for the
// user named by the store id cookie. Without the cookie, or without a cached
// token, base is returned as is.
func StoredClient(ctx context.Context, c CookieReader, base *sdk.Client, cache TokenCache) (*sdk.Client, error) {
	id := c.Cookies(StoreIDCookie)
	if id == "" || cache == nil {
		return base, nil
	}

	token, err := cache.Get(ctx, TokenCacheKey(id))
	if err != nil {
		return base, err
	}
	if token == "" {
		return base, nil
	}

	return base.WithToken(token), nil
}

// ClientMiddleware puts the request scoped client from StoredClient in the
// request context, owned by the user named in the store id cookie. Provider
// lookups for that user reuse it instead of reading the cache again. Cache
// failures degrade to the base client.
func ClientMiddleware(base *sdk.Client, cache TokenCache, logger Logger) router.MiddlewareFunc {
	if logger == nil {
		logger = defLogger{}
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			ctx := c.Context()
			client, err := StoredClient(ctx, c, base, cache)
			if err != nil {
				logger.Warn("unable to restore api token", "error", err)
			}
			owner := ""
			if client != base {
				owner = c.Cookies(StoreIDCookie)
			}
			c.SetContext(WithOwnedClient(ctx, owner, client))
			return next(c)
		}
	}
}
