package auth

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeSerialization      = "USER_SERIALIZATION"
	TextCodeCompanyUnavailable = "COMPANY_UNAVAILABLE"
	TextCodeRememberToken      = "REMEMBER_TOKEN_UPDATE"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeUnauthenticated    = "UNAUTHENTICATED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeInvalidConfig      = "INVALID_CONFIG"
	TextCodeTokenCache         = "TOKEN_CACHE"
)

// ErrSerialization is returned when a user record cannot be encoded to JSON
var ErrSerialization = errors.New("unable to serialize user", errors.CategoryInternal).
	WithTextCode(TextCodeSerialization).
	WithCode(errors.CodeInternal)

// ErrCompanyUnavailable is returned when the company relation could not be
// fetched from the API
var ErrCompanyUnavailable = errors.New("company information unavailable", errors.CategoryNotFound).
	WithTextCode(TextCodeCompanyUnavailable).
	WithCode(errors.CodeNotFound)

// ErrRememberTokenUpdate is returned when the API refuses a remember token update
var ErrRememberTokenUpdate = errors.New("unable to update remember token", errors.CategoryOperation).
	WithTextCode(TextCodeRememberToken).
	WithCode(errors.CodeInternal)

// ErrInvalidCredentials is returned by the guard when a login attempt fails.
// It never tells apart an unknown account from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthenticated is returned when a request carries no usable session
var ErrUnauthenticated = errors.New("unauthenticated", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed session token could not be parsed
var ErrTokenMalformed = errors.New("session token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired session token is past its expiration
var ErrTokenExpired = errors.New("session token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidConfig is returned when the API configuration fails validation
var ErrInvalidConfig = errors.New("invalid visacheck configuration", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidConfig).
	WithCode(errors.CodeBadRequest)

// IsTextCode reports whether err is a rich error carrying the given text code
func IsTextCode(err error, code string) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

func wrapAs(err error, sentinel *errors.Error) *errors.Error {
	return errors.Wrap(err, sentinel.Category, sentinel.Message).
		WithTextCode(sentinel.TextCode).
		WithCode(sentinel.Code)
}

// newAs returns a fresh error shaped like sentinel, so metadata never leaks
// into the shared sentinel value
func newAs(sentinel *errors.Error, metadata map[string]any) *errors.Error {
	return errors.New(sentinel.Message, sentinel.Category).
		WithTextCode(sentinel.TextCode).
		WithCode(sentinel.Code).
		WithMetadata(metadata)
}
