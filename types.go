package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticatable is the subject an auth guard keeps track of
type Authenticatable interface {
	AuthIdentifier() string
	AuthPassword() string
	RememberTokenName() string
}

// UserProvider resolves users for an auth guard
type UserProvider interface {
	RetrieveByID(ctx context.Context, identifier string) (Authenticatable, error)
	RetrieveByToken(ctx context.Context, identifier, token string) (Authenticatable, error)
	UpdateRememberToken(ctx context.Context, user Authenticatable, token string) error
	RetrieveByCredentials(ctx context.Context, credentials Credentials) (Authenticatable, error)
	ValidateCredentials(user Authenticatable, credentials Credentials) bool
}

// TokenCache stores API bearer tokens by key.
// Get returns an empty string when the key is not present.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

// CookieQueue collects cookies to be attached to the outgoing response
type CookieQueue interface {
	Queue(ctx context.Context, name, value string, ttl time.Duration)
}

// Hasher verifies a plaintext password against a stored hash
type Hasher interface {
	Check(plain, hash string) bool
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) { printLine("ERR", msg, args) }
func (d defLogger) Warn(msg string, args ...any)  { printLine("WRN", msg, args) }
func (d defLogger) Info(msg string, args ...any)  { printLine("INF", msg, args) }
func (d defLogger) Debug(msg string, args ...any) { printLine("DBG", msg, args) }

// printLine writes msg followed by args rendered as key=value pairs.
func printLine(level, msg string, args []any) {
	var b strings.Builder
	b.WriteString("[" + level + "] VISACHECK " + msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	fmt.Println(b.String())
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
