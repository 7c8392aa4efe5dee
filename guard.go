package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

const (
	SessionCookie  = "visacheck_session"
	RememberCookie = "remember_visacheck"
)

// RememberLifetime is how long a "remember me" cookie lasts
const RememberLifetime = 5 * 365 * 24 * time.Hour

// SessionContext is the part of router.Context the guard works with
type SessionContext interface {
	CookieReader
	CookieWriter
	Context() context.Context
	SetContext(ctx context.Context)
}

// Guard keeps track of the authenticated user across requests using a
// signed session cookie and an optional "remember me" cookie.
type Guard struct {
	provider    UserProvider
	tokens      *SessionTokens
	logger      Logger
	secure      bool
	sameSite    string
	rememberTTL time.Duration
	now         func() time.Time

	ErrorHandler func(c router.Context, err error) error
}

type GuardOption func(*Guard)

// WithInsecureSessionCookies drops the Secure flag on guard cookies
func WithInsecureSessionCookies() GuardOption {
	return func(g *Guard) {
		g.secure = false
	}
}

func WithRememberLifetime(ttl time.Duration) GuardOption {
	return func(g *Guard) {
		if ttl > 0 {
			g.rememberTTL = ttl
		}
	}
}

func WithGuardLogger(l Logger) GuardOption {
	return func(g *Guard) {
		if l == nil {
			l = nopLogger{}
		}
		g.logger = l
	}
}

func NewGuard(provider UserProvider, tokens *SessionTokens, opts ...GuardOption) *Guard {
	g := &Guard{
		provider:    provider,
		tokens:      tokens,
		logger:      defLogger{},
		secure:      true,
		sameSite:    "Lax",
		rememberTTL: RememberLifetime,
		now:         time.Now,
	}
	g.ErrorHandler = g.defaultErrHandler

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Attempt logs the user in with credentials. On success the session cookie
// is written and, when remember is set, a fresh "remember me" token is
// stored through the provider and written to its cookie.
func (g *Guard) Attempt(c SessionContext, credentials Credentials, remember bool) (Authenticatable, error) {
	ctx := c.Context()

	user, err := g.provider.RetrieveByCredentials(ctx, credentials)
	if err != nil {
		g.logger.Error("login attempt failed", "error", err)
		return nil, err
	}

	if user == nil || !g.provider.ValidateCredentials(user, credentials) {
		g.logger.Info("login attempt rejected", "email", credentials.Normalize().Email)
		return nil, newAs(ErrInvalidCredentials, nil)
	}

	if err := g.Login(c, user, remember); err != nil {
		return nil, err
	}

	return user, nil
}

// Login starts a session for an already resolved user
func (g *Guard) Login(c SessionContext, user Authenticatable, remember bool) error {
	token, err := g.tokens.Issue(user.AuthIdentifier())
	if err != nil {
		return err
	}

	if remember {
		if err := g.cycleRememberToken(c.Context(), user, c); err != nil {
			return err
		}
	}

	g.setCookie(c, SessionCookie, token, g.tokens.TTL())
	c.SetContext(WithUser(c.Context(), user))

	return nil
}

// User returns the authenticated user of the request. The session cookie is
// tried first, then the "remember me" cookie. A user recovered from the
// latter gets a new session cookie.
func (g *Guard) User(c SessionContext) (Authenticatable, error) {
	return g.resolve(c, true)
}

// resolve authenticates the request. startSession controls whether a user
// recovered from the "remember me" cookie gets a new session cookie.
func (g *Guard) resolve(c SessionContext, startSession bool) (Authenticatable, error) {
	ctx := c.Context()
	if user, ok := UserFromContext(ctx); ok {
		return user, nil
	}

	if raw := c.Cookies(SessionCookie); raw != "" {
		id, err := g.tokens.Parse(raw)
		if err != nil {
			g.logger.Debug("session cookie rejected", "error", err)
		} else {
			user, err := g.provider.RetrieveByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if user != nil {
				c.SetContext(WithUser(ctx, user))
				return user, nil
			}
		}
	}

	id, token, ok := splitRememberCookie(c.Cookies(RememberCookie))
	if !ok {
		return nil, newAs(ErrUnauthenticated, nil)
	}

	user, err := g.provider.RetrieveByToken(ctx, id, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		g.logger.Debug("remember cookie did not match a user", "user_id", id)
		return nil, newAs(ErrUnauthenticated, nil)
	}

	// the token lookup does not scope by id, the cookie must name its owner
	if user.AuthIdentifier() != id {
		g.logger.Warn("remember cookie names another user",
			"cookie_user_id", id,
			"user_id", user.AuthIdentifier(),
		)
		return nil, newAs(ErrUnauthenticated, map[string]any{"reason": "remember cookie owner mismatch"})
	}

	if !startSession {
		c.SetContext(WithUser(ctx, user))
		return user, nil
	}

	if err := g.Login(c, user, false); err != nil {
		return nil, err
	}

	return user, nil
}

// Check reports whether the request is authenticated
func (g *Guard) Check(c SessionContext) bool {
	user, err := g.User(c)
	return err == nil && user != nil
}

// Logout ends the session. When the request is authenticated and carries a
// "remember me" cookie, the stored token is rotated so any copy of the old
// cookie stops working. Unauthenticated requests only get their cookies
// cleared.
func (g *Guard) Logout(c SessionContext) error {
	ctx := c.Context()

	var err error
	if c.Cookies(RememberCookie) != "" {
		user, authErr := g.resolve(c, false)
		switch {
		case authErr == nil:
			err = g.rotateRememberToken(c.Context(), user)
		case !IsTextCode(authErr, TextCodeUnauthenticated):
			g.logger.Warn("unable to authenticate logout", "error", authErr)
			err = authErr
		}
	}

	g.forgetCookie(c, SessionCookie)
	g.forgetCookie(c, RememberCookie)
	g.forgetCookie(c, StoreIDCookie)
	c.SetContext(WithUser(ctx, nil))

	return err
}

func (g *Guard) rotateRememberToken(ctx context.Context, user Authenticatable) error {
	token, err := randomToken()
	if err != nil {
		return err
	}
	if err := g.provider.UpdateRememberToken(ctx, user, token); err != nil {
		g.logger.Warn("unable to rotate remember token on logout", "user_id", user.AuthIdentifier(), "error", err)
		return err
	}
	return nil
}

// Protected rejects requests without an authenticated user. The user is
// available downstream through UserFromContext.
func (g *Guard) Protected() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if _, err := g.User(c); err != nil {
				return g.ErrorHandler(c, err)
			}
			return next(c)
		}
	}
}

func (g *Guard) cycleRememberToken(ctx context.Context, user Authenticatable, c CookieWriter) error {
	token, err := randomToken()
	if err != nil {
		return err
	}

	if err := g.provider.UpdateRememberToken(ctx, user, token); err != nil {
		return err
	}

	g.setCookie(c, RememberCookie, user.AuthIdentifier()+"|"+token, g.rememberTTL)
	return nil
}

func (g *Guard) setCookie(c CookieWriter, name, value string, ttl time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    value,
		Expires:  g.now().Add(ttl),
		HTTPOnly: true,
		Secure:   g.secure,
		SameSite: g.sameSite,
	})
}

func (g *Guard) forgetCookie(c CookieWriter, name string) {
	g.setCookie(c, name, "", -time.Hour*(24*365))
}

func (g *Guard) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	g.logger.Info("guard rejected request",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return c.JSON(status, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

func splitRememberCookie(raw string) (id, token string, ok bool) {
	id, token, found := strings.Cut(raw, "|")
	if !found || id == "" || token == "" {
		return "", "", false
	}
	return id, token, true
}

// randomToken returns a 60 character URL safe token
func randomToken() (string, error) {
	b := make([]byte, 45)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate remember token")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
