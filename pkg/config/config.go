package config

import (
	"time"
)

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"4"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[converter]"`
}

// RatesAPI configures the remote historical rates service.
type RatesAPI struct {
	URL         string        `envconfig:"URL" default:""`
	APIKey      string        `envconfig:"API_KEY"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

// Store selects and configures the key/value backend holding the history.
type Store struct {
	Driver    string `envconfig:"DRIVER" default:"file"`
	Path      string `envconfig:"FILE_PATH" default:".currency-converter.json"`
	RedisURL  string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"converter:"`
	Dialect   string `envconfig:"SQL_DIALECT" default:"sqlite"`
	DSN       string `envconfig:"SQL_DSN" default:"currency-converter.db"`
}

type App struct {
	Env           string    `envconfig:"APP_ENV" default:"development"`
	RatesProvider string    `envconfig:"RATES_PROVIDER" default:"http"`
	FixturePath   string    `envconfig:"RATES_FIXTURE_PATH"`
	Log           *Log      `envconfig:"LOG"`
	RatesAPI      *RatesAPI `envconfig:"RATES_API"`
	Store         *Store    `envconfig:"STORE"`
}
