// Package config provides configuration loading and validation for the bot.
// Values come from defaults, an optional config.yaml, and BOT_* environment
// variables, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines all application configuration parameters.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Currency  CurrencyConfig  `mapstructure:"currency"`
	Places    PlacesConfig    `mapstructure:"places"`
	Geocode   GeocodeConfig   `mapstructure:"geocode"`
	Location  LocationConfig  `mapstructure:"location"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and the admin recipient of the
// morning digest.
type TelegramConfig struct {
	Token       string `mapstructure:"token"         validate:"required"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"required,gt=0"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// WeatherConfig configures the OpenWeatherMap client.
type WeatherConfig struct {
	APIKey      string        `mapstructure:"api_key"      validate:"required"`
	BaseURL     string        `mapstructure:"base_url"     validate:"required,url"`
	DefaultCity string        `mapstructure:"default_city" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout"      validate:"min=1s,max=1m"`
}

// CurrencyConfig configures the CBR daily-rates client.
type CurrencyConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"min=1s,max=1m"`
}

// PlacesConfig configures the Overpass nearby-places client.
type PlacesConfig struct {
	BaseURL      string        `mapstructure:"base_url"      validate:"required,url"`
	RadiusMeters int           `mapstructure:"radius_meters" validate:"min=100,max=10000"`
	Timeout      time.Duration `mapstructure:"timeout"       validate:"min=1s,max=1m"`
}

// GeocodeConfig configures the Nominatim geocoding client. Nominatim's usage
// policy requires an identifying User-Agent.
type GeocodeConfig struct {
	BaseURL   string        `mapstructure:"base_url"   validate:"required,url"`
	UserAgent string        `mapstructure:"user_agent" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout"    validate:"min=1s,max=1m"`
}

// LocationConfig holds the default location used when a user has not
// configured one, and the timezone all schedules run in.
type LocationConfig struct {
	Country  string `mapstructure:"country"  validate:"required"`
	Region   string `mapstructure:"region"   validate:"required"`
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig configures a single scheduled task.
type TaskConfig struct {
	Schedule string `mapstructure:"schedule"`
	Enabled  bool   `mapstructure:"enabled"`
}

// Load reads configuration from defaults, config.yaml, and the environment,
// then validates it. Missing credentials are a startup error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine, defaults plus env must suffice.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	// Credentials default to empty so their environment variables bind;
	// validation rejects them when they stay empty.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)
	v.SetDefault("weather.api_key", "")

	v.SetDefault("database.path", "bot_database.db")

	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("weather.default_city", "Volzhskiy")
	v.SetDefault("weather.timeout", 10*time.Second)

	v.SetDefault("currency.base_url", "https://www.cbr.ru/scripts/XML_daily.asp")
	v.SetDefault("currency.timeout", 10*time.Second)

	v.SetDefault("places.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("places.radius_meters", 2000)
	v.SetDefault("places.timeout", 15*time.Second)

	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "assistbot")
	v.SetDefault("geocode.timeout", 10*time.Second)

	v.SetDefault("location.country", "Russia")
	v.SetDefault("location.region", "Volgograd Oblast")
	v.SetDefault("location.timezone", "Europe/Moscow")

	v.SetDefault("scheduler.tasks", map[string]map[string]any{
		"task_scan":      {"schedule": "*/5 * * * *", "enabled": true},
		"morning_digest": {"schedule": "0 8 * * *", "enabled": true},
		"birthday_scan":  {"schedule": "0 9 * * *", "enabled": true},
		"digest_cleanup": {"schedule": "59 23 * * *", "enabled": true},
	})
}
