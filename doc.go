// Package auth authenticates users against the Visacheck API instead of a
// local user table.
//
// Credential resolution:
//   - Provider implements UserProvider. Lookups by id or "remember me" token
//     and the password login all go through the API. Failed lookups are
//     reported as a nil user, never as an error.
//   - A successful login caches the issued bearer token in a TokenCache
//     (RedisTokenCache in production) for TokenLifetime, keyed by the user id,
//     and queues the visacheck_store_id cookie so later requests can find it.
//   - Lookups for a user whose token is cached run with that token. The shared
//     sdk.Client is never mutated; a token scoped copy is derived per call.
//
// User records:
//   - User keeps the identifier and password hash typed and every other
//     attribute as received. The company relation is loaded on demand.
//
// Sessions:
//   - Guard drives the provider from HTTP handlers. It keeps the user id in a
//     signed session cookie and supports "remember me" tokens persisted
//     through UpdateRememberToken.
//   - QueuedCookies and ClientMiddleware are router middlewares that flush
//     queued cookies and restore the token scoped client per request. The
//     provider reuses that client for lookups of its owner.
package auth
