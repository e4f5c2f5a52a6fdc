package config

import (
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port         int
	NatsURL      string
	NatsToken    string
	DatabaseURL  string
	LogLevel     string
	APIToken     string
	PatternsFile string
	ServiceName  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PARLEY_PORT", 8760)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PARLEY_SERVICE_NAME", "parley")

	return Config{
		Port:         envInt(v, "PARLEY_PORT", 8760),
		NatsURL:      envStr(v, "NATS_URL", ""),
		NatsToken:    envStr(v, "NATS_TOKEN", ""),
		DatabaseURL:  envStr(v, "DATABASE_URL", ""),
		LogLevel:     envStr(v, "LOG_LEVEL", "info"),
		APIToken:     envStr(v, "PARLEY_API_TOKEN", ""),
		PatternsFile: envStr(v, "PARLEY_PATTERNS_FILE", ""),
		ServiceName:  envStr(v, "PARLEY_SERVICE_NAME", "parley"),
	}
}

func envStr(v *viper.Viper, key, fallback string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return fallback
}

func envInt(v *viper.Viper, key string, fallback int) int {
	if s := v.GetString(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}
