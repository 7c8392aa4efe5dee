package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	auth "github.com/visacheck/go-auth"
	"github.com/visacheck/go-auth/sdk"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadConfigFrom(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := auth.LoadConfigFrom(lookupFrom(nil))

		assert.Equal(t, sdk.EnvStaging, cfg.Env)
		assert.Equal(t, "0", cfg.ClientID)
		assert.Empty(t, cfg.ClientSecret)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Environment", func(t *testing.T) {
		cfg := auth.LoadConfigFrom(lookupFrom(map[string]string{
			auth.EnvVarEnvironment:  sdk.EnvProduction,
			auth.EnvVarClientID:     "7",
			auth.EnvVarClientSecret: "shh",
			auth.EnvVarBaseURL:      "https://api.example.com/v2/",
		}))

		assert.Equal(t, auth.Config{
			Env:          sdk.EnvProduction,
			ClientID:     "7",
			ClientSecret: "shh",
			BaseURL:      "https://api.example.com/v2/",
		}, cfg)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Empty values keep defaults", func(t *testing.T) {
		cfg := auth.LoadConfigFrom(lookupFrom(map[string]string{
			auth.EnvVarEnvironment: "",
			auth.EnvVarClientID:    "",
		}))

		assert.Equal(t, sdk.EnvStaging, cfg.Env)
		assert.Equal(t, "0", cfg.ClientID)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  auth.Config
	}{
		{"Unknown environment", auth.Config{Env: "qa", ClientID: "1"}},
		{"Missing client id", auth.Config{Env: sdk.EnvStaging}},
		{"Bad base url", auth.Config{Env: sdk.EnvStaging, ClientID: "1", BaseURL: "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.True(t, auth.IsTextCode(err, auth.TextCodeInvalidConfig))
		})
	}
}

func TestNewClient(t *testing.T) {
	client, err := auth.NewClient(auth.Config{Env: sdk.EnvProduction, ClientID: "9", ClientSecret: "s"}, nil)
	require.NoError(t, err)

	assert.Equal(t, sdk.EnvProduction, client.Environment())
	assert.Equal(t, "9", client.ClientID())
	assert.Empty(t, client.Token())

	_, err = auth.NewClient(auth.Config{Env: "qa", ClientID: "9"}, nil)
	assert.True(t, auth.IsTextCode(err, auth.TextCodeInvalidConfig))
}

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name    string
		creds   auth.Credentials
		wantErr bool
	}{
		{"Valid", auth.Credentials{Email: "jane@example.com", Password: "secret"}, false},
		{"Padded email", auth.Credentials{Email: "  jane@example.com ", Password: "secret"}, false},
		{"Missing email", auth.Credentials{Password: "secret"}, true},
		{"Bad email", auth.Credentials{Email: "jane", Password: "secret"}, true},
		{"Missing password", auth.Credentials{Email: "jane@example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Normalize().Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
