package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultSessionLifetime is how long a session token stays valid
const DefaultSessionLifetime = TokenLifetime

// SessionTokens signs and verifies the session cookie value. The token is an
// HS256 JWT whose subject is the user identifier.
type SessionTokens struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	now        func() time.Time
	logger     Logger
}

// NewSessionTokens creates a token service. A non positive ttl falls back to
// DefaultSessionLifetime.
func NewSessionTokens(signingKey []byte, ttl time.Duration, issuer string) (*SessionTokens, error) {
	if len(signingKey) == 0 {
		return nil, newAs(ErrInvalidConfig, map[string]any{"field": "signing_key"})
	}
	if ttl <= 0 {
		ttl = DefaultSessionLifetime
	}

	return &SessionTokens{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		now:        time.Now,
		logger:     defLogger{},
	}, nil
}

func (s *SessionTokens) WithLogger(l Logger) *SessionTokens {
	if l == nil {
		l = nopLogger{}
	}
	s.logger = l
	return s
}

// TTL returns the lifetime of issued tokens
func (s *SessionTokens) TTL() time.Duration {
	return s.ttl
}

// Issue signs a session token for userID
func (s *SessionTokens) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("session subject must not be empty", errors.CategoryBadInput)
	}

	now := s.now()
	claims := &jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

// Parse validates a session token and returns its subject
func (s *SessionTokens) Parse(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			s.logger.Error("session token uses unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", wrapAs(err, ErrTokenExpired)
		}
		return "", wrapAs(err, ErrTokenMalformed)
	}

	if !token.Valid || claims.Subject == "" {
		return "", newAs(ErrTokenMalformed, map[string]any{"reason": "missing subject"})
	}

	return claims.Subject, nil
}
