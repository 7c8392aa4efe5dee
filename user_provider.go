package auth

import (
	"context"
	"maps"
	"net/http"
	"strings"

	"github.com/goliatone/go-print"
	"github.com/visacheck/go-auth/sdk"
)

// LoginFunc exchanges an email and password for an API bearer token. A
// rejected exchange comes back as a failure response, err is for transport
// problems only.
type LoginFunc func(ctx context.Context, client *sdk.Client, email, password string) (token string, failure *sdk.Response, err error)

// Provider resolves users against the Visacheck API and caches the bearer
// token issued at login so later requests can act on behalf of the user.
//
// The shared API client is never mutated; every call derives its own token
// scoped copy, so concurrent requests cannot leak tokens into each other.
type Provider struct {
	client  *sdk.Client
	cache   TokenCache
	cookies CookieQueue
	hasher  Hasher
	login   LoginFunc
	logger  Logger
}

var _ UserProvider = (*Provider)(nil)

// NewProvider will create a new Provider
func NewProvider(client *sdk.Client, cache TokenCache, cookies CookieQueue, hasher Hasher) *Provider {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	if cookies == nil {
		cookies = ContextCookieQueue{}
	}

	return &Provider{
		client:  client,
		cache:   cache,
		cookies: cookies,
		hasher:  hasher,
		login:   sdk.LoginViaPassword,
		logger:  defLogger{},
	}
}

func (p *Provider) WithLogger(l Logger) *Provider {
	if l == nil {
		l = nopLogger{}
	}
	p.logger = l
	return p
}

// WithLogin replaces the login exchange, sdk.LoginViaPassword by default
func (p *Provider) WithLogin(fn LoginFunc) *Provider {
	if fn != nil {
		p.login = fn
	}
	return p
}

// Client returns the shared API client
func (p *Provider) Client() *sdk.Client {
	return p.client
}

// RetrieveByID loads a user by primary key. Any API failure is reported as
// a nil user.
func (p *Provider) RetrieveByID(ctx context.Context, identifier string) (Authenticatable, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, nil
	}

	client := p.authorize(ctx, identifier)
	resp, err := client.CreateUserResource(identifier).
		Relationships("company").
		Send(ctx, http.MethodGet)

	if user := p.userFromResponse(client, resp, err, "retrieve_by_id", identifier); user != nil {
		return user, nil
	}
	return nil, nil
}

// RetrieveByToken loads a user by "remember me" token. identifier only picks
// the cached bearer token; the lookup itself matches on the token column.
func (p *Provider) RetrieveByToken(ctx context.Context, identifier, token string) (Authenticatable, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	client := p.authorize(ctx, identifier)
	resp, err := client.CreateUserResource(token).
		Relationships("company").
		AddQueryArgument("using_column", RememberTokenAttribute).
		Send(ctx, http.MethodGet)

	if user := p.userFromResponse(client, resp, err, "retrieve_by_token", identifier); user != nil {
		return user, nil
	}
	return nil, nil
}

// UpdateRememberToken stores a new "remember me" token on the profile.
// Unlike the lookups, failures are returned to the caller.
func (p *Provider) UpdateRememberToken(ctx context.Context, user Authenticatable, token string) error {
	client := p.authorize(ctx, user.AuthIdentifier())

	resp, err := client.CreateProfileService().
		AddBodyParam(RememberTokenAttribute, token).
		Send(ctx, http.MethodPut)
	if err != nil {
		p.logger.Error("remember token update failed", "user_id", user.AuthIdentifier(), "error", err)
		return err
	}

	if !resp.IsSuccessful() {
		p.logger.Error("remember token update rejected",
			"user_id", user.AuthIdentifier(),
			"status", resp.StatusCode,
			"details", print.MaybePrettyJSON(resp.Body()),
		)
		return newAs(ErrRememberTokenUpdate, map[string]any{
			"user_id": user.AuthIdentifier(),
			"status":  resp.StatusCode,
			"reason":  resp.ErrorMessage(),
		})
	}

	if u, ok := user.(*User); ok {
		attrs := u.ToMap()
		attrs[RememberTokenAttribute] = token
		u.SetAttributes(attrs)
	}

	return nil
}

// RetrieveByCredentials logs in against the API. On success the bearer token
// is cached for TokenLifetime under the user id and the id is queued in the
// store id cookie with the same lifetime.
func (p *Provider) RetrieveByCredentials(ctx context.Context, credentials Credentials) (Authenticatable, error) {
	credentials = credentials.Normalize()
	if err := credentials.Validate(); err != nil {
		p.logger.Debug("credentials rejected before login", "error", err)
		return nil, nil
	}

	token, failure, err := p.login(ctx, p.client, credentials.Email, credentials.Password)
	if err != nil {
		p.logger.Error("login exchange failed", "error", err)
		return nil, err
	}
	if failure != nil || token == "" {
		p.logger.Info("login rejected by api", "reason", failure.ErrorMessage())
		return nil, nil
	}

	client := p.client.WithToken(token)
	resp, err := client.CreateProfileService().
		AddQueryArgument("include", "company").
		Send(ctx, http.MethodGet)

	user := p.userFromResponse(client, resp, err, "retrieve_by_credentials", "")
	if user == nil {
		return nil, nil
	}

	id := user.AuthIdentifier()
	p.cookies.Queue(ctx, StoreIDCookie, id, TokenLifetime)

	if p.cache != nil {
		if err := p.cache.Put(ctx, TokenCacheKey(id), token, TokenLifetime); err != nil {
			p.logger.Error("unable to cache bearer token", "user_id", id, "error", err)
			return nil, err
		}
	}

	return user, nil
}

// ValidateCredentials checks the plaintext password against the user's hash
func (p *Provider) ValidateCredentials(user Authenticatable, credentials Credentials) bool {
	if user == nil {
		return false
	}
	return p.hasher.Check(credentials.Password, user.AuthPassword())
}

// authorize returns a client carrying the bearer token of userID, taken from
// the request scoped client when it belongs to userID and from the cache
// otherwise. Falls back to the shared client. Cache failures are not fatal.
func (p *Provider) authorize(ctx context.Context, userID string) *sdk.Client {
	if userID == "" {
		return p.client
	}
	if client, ok := ClientForUser(ctx, userID); ok {
		return client
	}
	if p.cache == nil {
		return p.client
	}

	token, err := p.cache.Get(ctx, TokenCacheKey(userID))
	if err != nil {
		p.logger.Warn("token cache lookup failed", "user_id", userID, "error", err)
		return p.client
	}

	if token == "" {
		return p.client
	}

	return p.client.WithToken(token)
}

func (p *Provider) userFromResponse(client *sdk.Client, resp *sdk.Response, err error, op, identifier string) *User {
	if err != nil {
		p.logger.Error("user lookup failed", "operation", op, "identifier", identifier, "error", err)
		return nil
	}

	if !resp.IsSuccessful() {
		p.logger.Debug("user lookup missed",
			"operation", op,
			"identifier", identifier,
			"status", resp.StatusCode,
			"details", print.MaybePrettyJSON(resp.Body()),
		)
		return nil
	}

	user := NewUser(maps.Clone(resp.Data()), client)
	if user.AuthIdentifier() == "" {
		p.logger.Warn("api returned a user without id", "operation", op, "identifier", identifier)
		return nil
	}

	return user
}
