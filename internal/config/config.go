package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Weather providers.
const (
	ProviderStation     = "station"
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"
)

type WeatherConfig struct {
	Provider string `yaml:"provider" validate:"oneof=station openweather openmeteo"`

	// BaseURL is where the weather station serves current-weather.json.
	BaseURL string `yaml:"base_url" validate:"required_if=Provider station"`

	OpenWeatherAPIKey string `yaml:"openweather_api_key" validate:"required_if=Provider openweather"`
	City              string `yaml:"city" validate:"required_if=Provider openweather"`
	Country           string `yaml:"country"`

	Latitude  float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `yaml:"longitude" validate:"gte=-180,lte=180"`

	// PollInterval is the pause after each poll cycle before the next fetch.
	PollInterval time.Duration `yaml:"poll_interval" validate:"gt=0"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" validate:"gt=0"`
}

type QuotesConfig struct {
	File     string        `yaml:"file"`
	Interval time.Duration `yaml:"interval" validate:"gt=0"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"` // empty keeps the profile in memory
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

type AppConfig struct {
	Port     string `yaml:"port" validate:"required,numeric"`
	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn error"`

	// Timezone names the zone readable times are shown in; empty means local.
	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-" validate:"-"`

	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"gt=0"`

	Weather WeatherConfig `yaml:"weather"`
	Quotes  QuotesConfig  `yaml:"quotes"`
	Redis   RedisConfig   `yaml:"redis"`
}

var validate = validator.New()

func defaults() *AppConfig {
	return &AppConfig{
		Port:        "8080",
		LogLevel:    "info",
		HTTPTimeout: 10 * time.Second,
		Weather: WeatherConfig{
			Provider:     ProviderStation,
			PollInterval: 5 * time.Second,
			FetchTimeout: 10 * time.Second,
		},
		Quotes: QuotesConfig{
			Interval: time.Minute,
		},
	}
}

// Load reads configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then the environment (and a .env file).
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ZerologLevel maps LogLevel to a zerolog level, defaulting to info.
func (c *AppConfig) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Timezone, "TIMEZONE")

	setString(&cfg.Weather.Provider, "WEATHER_PROVIDER")
	setString(&cfg.Weather.BaseURL, "WEATHER_BASE_URL")
	setString(&cfg.Weather.OpenWeatherAPIKey, "OPENWEATHER_API_KEY")
	setString(&cfg.Weather.City, "WEATHER_LOCATION_CITY")
	setString(&cfg.Weather.Country, "WEATHER_LOCATION_COUNTRY")

	setString(&cfg.Quotes.File, "QUOTES_FILE")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	for key, dst := range map[string]*time.Duration{
		"HTTP_TIMEOUT":   &cfg.HTTPTimeout,
		"POLL_INTERVAL":  &cfg.Weather.PollInterval,
		"FETCH_TIMEOUT":  &cfg.Weather.FetchTimeout,
		"QUOTE_INTERVAL": &cfg.Quotes.Interval,
	} {
		if err := setDuration(dst, key); err != nil {
			return err
		}
	}

	for key, dst := range map[string]*float64{
		"WEATHER_LATITUDE":  &cfg.Weather.Latitude,
		"WEATHER_LONGITUDE": &cfg.Weather.Longitude,
	} {
		if err := setFloat(dst, key); err != nil {
			return err
		}
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}

	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return loc, nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = f
	return nil
}
