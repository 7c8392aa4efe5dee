package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
)

// Response is a decoded API reply.
type Response struct {
	StatusCode int

	raw  []byte
	body map[string]any
}

func newResponse(status int, raw []byte) (*Response, error) {
	resp := &Response{StatusCode: status, raw: raw}

	if len(bytes.TrimSpace(raw)) == 0 {
		return resp, nil
	}

	body, err := DecodeObject(raw)
	if err != nil {
		if resp.IsSuccessful() {
			return nil, errors.Wrap(err, errors.CategoryOperation, "invalid visacheck response body").
				WithTextCode(TextCodeInvalidResponse).
				WithMetadata(map[string]any{"status": status})
		}
		return resp, nil
	}
	resp.body = body

	return resp, nil
}

// NewResponse builds a response out of a status code and a JSON payload.
// It is mostly useful for fakes.
func NewResponse(status int, body map[string]any) *Response {
	raw, _ := json.Marshal(body)
	return &Response{StatusCode: status, raw: raw, body: body}
}

func (r *Response) IsSuccessful() bool {
	return r != nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Body returns the whole decoded payload.
func (r *Response) Body() map[string]any {
	if r == nil || r.body == nil {
		return map[string]any{}
	}
	return r.body
}

// Data returns the "data" member of the payload when it is an object,
// otherwise the whole payload.
func (r *Response) Data() map[string]any {
	body := r.Body()
	if data, ok := body["data"].(map[string]any); ok {
		return data
	}
	return body
}

func (r *Response) Raw() []byte {
	if r == nil {
		return nil
	}
	return r.raw
}

// ErrorMessage extracts a human readable reason from an error payload.
func (r *Response) ErrorMessage() string {
	if r == nil {
		return "no response"
	}
	body := r.Body()

	if list, ok := body["errors"].([]any); ok {
		for _, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			for _, key := range []string{"detail", "title"} {
				if msg, ok := entry[key].(string); ok && msg != "" {
					return msg
				}
			}
		}
	}

	for _, key := range []string{"message", "error_description", "error"} {
		if msg, ok := body[key].(string); ok && msg != "" {
			return msg
		}
	}

	if msg := strings.TrimSpace(string(r.Raw())); msg != "" {
		return msg
	}

	return fmt.Sprintf("visacheck request failed with status %d", r.StatusCode)
}

// DecodeObject decodes a JSON object keeping numbers as json.Number so they
// re-encode exactly as received.
func DecodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
