package auth

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/visacheck/go-auth/sdk"
)

const (
	EnvVarEnvironment  = "VISACHECK_API_ENV"
	EnvVarClientID     = "VISACHECK_API_ID"
	EnvVarClientSecret = "VISACHECK_API_SECRET"
	EnvVarBaseURL      = "VISACHECK_API_URL"
)

// Config holds the credentials used to talk to the Visacheck API
type Config struct {
	Env          string `koanf:"env" json:"env"`
	ClientID     string `koanf:"client_id" json:"client_id"`
	ClientSecret string `koanf:"client_secret" json:"client_secret"`
	BaseURL      string `koanf:"base_url" json:"base_url,omitempty"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Env:      sdk.EnvStaging,
		ClientID: "0",
	}
}

// LoadConfigFrom reads the configuration through lookup, falling back to
// DefaultConfig for unset variables.
func LoadConfigFrom(lookup func(string) (string, bool)) Config {
	cfg := DefaultConfig()

	if v, ok := lookup(EnvVarEnvironment); ok && v != "" {
		cfg.Env = v
	}
	if v, ok := lookup(EnvVarClientID); ok && v != "" {
		cfg.ClientID = v
	}
	if v, ok := lookup(EnvVarClientSecret); ok {
		cfg.ClientSecret = v
	}
	if v, ok := lookup(EnvVarBaseURL); ok {
		cfg.BaseURL = v
	}

	return cfg
}

func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Env, validation.Required, validation.In(sdk.EnvStaging, sdk.EnvProduction)),
		validation.Field(&c.ClientID, validation.Required),
		validation.Field(&c.BaseURL, is.URL),
	)
	if err != nil {
		return wrapAs(err, ErrInvalidConfig)
	}
	return nil
}

// SDKConfig maps the configuration onto the API client settings
func (c Config) SDKConfig(httpClient *http.Client) sdk.Config {
	return sdk.Config{
		Environment:  c.Env,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		BaseURL:      c.BaseURL,
		HTTPClient:   httpClient,
	}
}
