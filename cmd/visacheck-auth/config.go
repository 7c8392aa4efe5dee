package main

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	auth "github.com/visacheck/go-auth"
)

// AppConfig is loaded by go-config from the defaults below overlaid with
// config/app.json
type AppConfig struct {
	Visacheck auth.Config `koanf:"visacheck" json:"visacheck"`
	Redis     Redis       `koanf:"redis" json:"redis"`
	HTTP      HTTP        `koanf:"http" json:"http"`
	Session   Session     `koanf:"session" json:"session"`
}

type Redis struct {
	Addr     string `koanf:"addr" json:"addr"`
	Password string `koanf:"password" json:"password"`
}

type HTTP struct {
	Addr string `koanf:"addr" json:"addr"`
}

type Session struct {
	Key string `koanf:"key" json:"key"`
}

func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Visacheck: auth.DefaultConfig(),
		Redis:     Redis{Addr: "localhost:6379"},
		HTTP:      HTTP{Addr: ":8572"},
	}
}

func (a AppConfig) Validate() error {
	if err := a.Visacheck.Validate(); err != nil {
		return err
	}

	err := validation.ValidateStruct(&a,
		validation.Field(&a.Redis),
		validation.Field(&a.HTTP),
		validation.Field(&a.Session),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid application config").
			WithTextCode(auth.TextCodeInvalidConfig)
	}
	return nil
}

func (r Redis) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Addr, validation.Required))
}

func (h HTTP) Validate() error {
	return validation.ValidateStruct(&h, validation.Field(&h.Addr, validation.Required))
}

func (s Session) Validate() error {
	return validation.ValidateStruct(&s, validation.Field(&s.Key, validation.Required))
}

// Redacted is the loaded configuration with secrets masked, for logging
func (a AppConfig) Redacted() map[string]any {
	return map[string]any{
		"visacheck": map[string]any{
			"env":       a.Visacheck.Env,
			"client_id": a.Visacheck.ClientID,
			"base_url":  a.Visacheck.BaseURL,
		},
		"redis": map[string]any{"addr": a.Redis.Addr},
		"http":  map[string]any{"addr": a.HTTP.Addr},
	}
}
