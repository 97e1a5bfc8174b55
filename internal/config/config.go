package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is everything the app reads from the environment. All knobs
// have working defaults; the defaults point at the public exam API.
type Config struct {
	Port          string
	APIHost       string
	APIPrefix     string
	DefaultAPIKey string
	StateDSN      string
	PageSize      int
	LogFile       string
}

// Load reads LAVKA_* environment variables over built-in defaults.
func Load() Config {
	v := viper.New()
	v.SetEnvPrefix("lavka")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("api_host", "https://edu.std-900.ist.mospolytech.ru")
	v.SetDefault("api_prefix", "/exam-2024-1/api")
	v.SetDefault("default_api_key", "07ad9b1b-9a18-4e25-8eeb-5c6b5f3cb362")
	v.SetDefault("state_dsn", "lavka.db") // sqlite file next to the binary
	v.SetDefault("page_size", 12)
	v.SetDefault("log_file", "")

	return Config{
		Port:          v.GetString("port"),
		APIHost:       v.GetString("api_host"),
		APIPrefix:     v.GetString("api_prefix"),
		DefaultAPIKey: v.GetString("default_api_key"),
		StateDSN:      v.GetString("state_dsn"),
		PageSize:      v.GetInt("page_size"),
		LogFile:       v.GetString("log_file"),
	}
}
