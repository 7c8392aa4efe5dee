package sdk

import (
	"context"
	"net/http"
)

// LoginViaPassword exchanges an email and password for a bearer token using
// the OAuth password grant.
//
// On success the token is returned. When the API rejects the exchange, or
// answers without an access_token, the rejecting response is returned as
// failure and token is empty. err is only set for transport failures.
func LoginViaPassword(ctx context.Context, client *Client, email, password string) (token string, failure *Response, err error) {
	resp, err := client.CreatePasswordLoginService().
		AddBodyParam("grant_type", "password").
		AddBodyParam("client_id", client.ClientID()).
		AddBodyParam("client_secret", client.ClientSecret()).
		AddBodyParam("username", email).
		AddBodyParam("password", password).
		AddBodyParam("scope", "*").
		Send(ctx, http.MethodPost)
	if err != nil {
		return "", nil, err
	}

	if !resp.IsSuccessful() {
		return "", resp, nil
	}

	accessToken, _ := resp.Body()["access_token"].(string)
	if accessToken == "" {
		return "", resp, nil
	}

	return accessToken, nil, nil
}
