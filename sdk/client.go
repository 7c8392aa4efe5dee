package sdk

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const (
	EnvStaging    = "staging"
	EnvProduction = "production"
)

var defaultBaseURLs = map[string]string{
	EnvStaging:    "https://api.staging.visacheck.com/",
	EnvProduction: "https://api.visacheck.com/",
}

// Config holds the client credentials and transport options.
type Config struct {
	Environment  string
	ClientID     string
	ClientSecret string
	// Token is the bearer token used when none is supplied per call.
	Token string
	// BaseURL overrides the environment default.
	BaseURL string

	HTTPClient *http.Client
}

// Client talks to the Visacheck API. A Client is never mutated after New,
// use WithToken to get a copy that authorizes requests with another token.
type Client struct {
	config     Config
	baseURL    *url.URL
	httpClient *http.Client
	token      string
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.Environment == "" {
		cfg.Environment = EnvStaging
	}

	raw := cfg.BaseURL
	if raw == "" {
		def, ok := defaultBaseURLs[cfg.Environment]
		if !ok {
			return nil, errors.New("unknown visacheck environment", errors.CategoryBadInput).
				WithTextCode("UNKNOWN_ENVIRONMENT").
				WithMetadata(map[string]any{"environment": cfg.Environment})
		}
		raw = def
	}

	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	base, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid visacheck base url")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		config:     cfg,
		baseURL:    base,
		httpClient: client,
		token:      cfg.Token,
	}, nil
}

// WithToken returns a copy of the client that sends token as the bearer
// credential. The receiver is left untouched.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token returns the bearer token the client authorizes with, if any.
func (c *Client) Token() string {
	return c.token
}

func (c *Client) Environment() string {
	return c.config.Environment
}

func (c *Client) ClientID() string {
	return c.config.ClientID
}

func (c *Client) ClientSecret() string {
	return c.config.ClientSecret
}

// CreateUserResource targets a single user. The id is usually the primary
// key but the API can be told to match on another column through the
// using_column query argument.
func (c *Client) CreateUserResource(id string) *Request {
	return newRequest(c, "users/"+url.PathEscape(id))
}

// CreateProfileService targets the profile of the authorized user.
func (c *Client) CreateProfileService() *Request {
	return newRequest(c, "me")
}

// CreatePasswordLoginService targets the OAuth token endpoint.
func (c *Client) CreatePasswordLoginService() *Request {
	return newRequest(c, "oauth/token")
}

func (c *Client) endpoint(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	return c.baseURL.ResolveReference(ref), nil
}
