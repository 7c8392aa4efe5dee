package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	auth "github.com/visacheck/go-auth"
	"github.com/visacheck/go-auth/sdk"
)

// MockTokenCache implements auth.TokenCache
type MockTokenCache struct {
	mock.Mock
}

func (m *MockTokenCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockTokenCache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// MockCookieQueue implements auth.CookieQueue
type MockCookieQueue struct {
	mock.Mock
}

func (m *MockCookieQueue) Queue(ctx context.Context, name, value string, ttl time.Duration) {
	m.Called(ctx, name, value, ttl)
}

// MockHasher implements auth.Hasher
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Check(plain, hash string) bool {
	args := m.Called(plain, hash)
	return args.Bool(0)
}

// MockUserProvider implements auth.UserProvider
type MockUserProvider struct {
	mock.Mock
}

func (m *MockUserProvider) RetrieveByID(ctx context.Context, identifier string) (auth.Authenticatable, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(auth.Authenticatable)
	return user, args.Error(1)
}

func (m *MockUserProvider) RetrieveByToken(ctx context.Context, identifier, token string) (auth.Authenticatable, error) {
	args := m.Called(ctx, identifier, token)
	user, _ := args.Get(0).(auth.Authenticatable)
	return user, args.Error(1)
}

func (m *MockUserProvider) UpdateRememberToken(ctx context.Context, user auth.Authenticatable, token string) error {
	args := m.Called(ctx, user, token)
	return args.Error(0)
}

func (m *MockUserProvider) RetrieveByCredentials(ctx context.Context, credentials auth.Credentials) (auth.Authenticatable, error) {
	args := m.Called(ctx, credentials)
	user, _ := args.Get(0).(auth.Authenticatable)
	return user, args.Error(1)
}

func (m *MockUserProvider) ValidateCredentials(user auth.Authenticatable, credentials auth.Credentials) bool {
	args := m.Called(user, credentials)
	return args.Bool(0)
}

// recordedRequest is what the fake API saw
type recordedRequest struct {
	Method        string
	Path          string
	Query         map[string]string
	Authorization string
	Body          map[string]any
}

// fakeAPI is a scripted Visacheck API
type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakeAPI(t *testing.T) (*fakeAPI, *sdk.Client) {
	t.Helper()

	api := &fakeAPI{routes: map[string]func(http.ResponseWriter, *http.Request){}}
	server := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(server.Close)

	client, err := sdk.New(sdk.Config{
		Environment:  sdk.EnvStaging,
		ClientID:     "1",
		ClientSecret: "secret",
		BaseURL:      server.URL,
		HTTPClient:   server.Client(),
	})
	require.NoError(t, err)

	return api, client
}

func (f *fakeAPI) handle(method, path string, status int, body any) {
	f.routes[method+" "+path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         map[string]string{},
		Authorization: r.Header.Get("Authorization"),
	}
	for k := range r.URL.Query() {
		rec.Query[k] = r.URL.Query().Get(k)
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	handler, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"title":"Not Found"}]}`))
		return
	}
	handler(w, r)
}

func (f *fakeAPI) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

type routerContext = router.Context

// cookieRecorder implements the cookie and context parts of router.Context.
// Anything else panics on the nil embedded value.
type cookieRecorder struct {
	routerContext

	ctx     context.Context
	written []*router.Cookie
	request map[string]string

	status  int
	payload any
}

func newCookieRecorder(request map[string]string) *cookieRecorder {
	if request == nil {
		request = map[string]string{}
	}
	return &cookieRecorder{ctx: context.Background(), request: request}
}

func (c *cookieRecorder) Context() context.Context { return c.ctx }

func (c *cookieRecorder) SetContext(ctx context.Context) { c.ctx = ctx }

func (c *cookieRecorder) Cookie(cookie *router.Cookie) {
	c.written = append(c.written, cookie)
}

func (c *cookieRecorder) Cookies(key string, defaultValue ...string) string {
	if v, ok := c.request[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *cookieRecorder) JSON(code int, val any) error {
	c.status = code
	c.payload = val
	return nil
}

func (c *cookieRecorder) find(name string) *router.Cookie {
	for i := len(c.written) - 1; i >= 0; i-- {
		if c.written[i].Name == name {
			return c.written[i]
		}
	}
	return nil
}
