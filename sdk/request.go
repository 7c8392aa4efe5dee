package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-errors"
)

// Request is a single call being prepared against a resource or service.
// Requests are cheap and not meant to be reused across goroutines.
type Request struct {
	client        *Client
	path          string
	query         url.Values
	body          map[string]any
	relationships []string
}

func newRequest(c *Client, path string) *Request {
	return &Request{
		client: c,
		path:   path,
		query:  url.Values{},
		body:   map[string]any{},
	}
}

// Relationships asks the API to embed the named relations in the response.
func (r *Request) Relationships(names ...string) *Request {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			r.relationships = append(r.relationships, name)
		}
	}
	return r
}

func (r *Request) AddQueryArgument(key, value string) *Request {
	r.query.Set(key, value)
	return r
}

func (r *Request) AddBodyParam(key string, value any) *Request {
	r.body[key] = value
	return r
}

// Query returns the query arguments the request will be sent with.
func (r *Request) Query() url.Values {
	q := url.Values{}
	for k, v := range r.query {
		q[k] = append([]string(nil), v...)
	}
	if len(r.relationships) > 0 {
		q.Set("include", strings.Join(r.relationships, ","))
	}
	return q
}

// Send issues the request with the given HTTP method. The error return is
// reserved for transport failures; an API level rejection comes back as a
// Response whose IsSuccessful is false.
func (r *Request) Send(ctx context.Context, method string) (*Response, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	endpoint, err := r.client.endpoint(r.path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid visacheck resource path")
	}
	endpoint.RawQuery = r.Query().Encode()

	var payload io.Reader
	if method != http.MethodGet && method != http.MethodHead && len(r.body) > 0 {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to encode request body")
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to build visacheck request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := r.client.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err, method, r.path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err, method, r.path)
	}

	return newResponse(resp.StatusCode, body)
}

func transportError(err error, method, path string) error {
	return errors.Wrap(err, errors.CategoryOperation, "visacheck request failed").
		WithTextCode(TextCodeTransport).
		WithMetadata(map[string]any{"method": method, "path": path})
}
