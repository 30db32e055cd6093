package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort               int    `mapstructure:"APP_PORT"`
	DatabasePath          string `mapstructure:"DATABASE_PATH"`
	OllamaURL             string `mapstructure:"OLLAMA_URL"`
	ChatModel             string `mapstructure:"CHAT_MODEL"`
	DesignModel           string `mapstructure:"DESIGN_MODEL"`
	CodeModel             string `mapstructure:"CODE_MODEL"`
	ThemeEvery            int    `mapstructure:"THEME_EVERY"`
	ThemeWindow           int    `mapstructure:"THEME_WINDOW"`
	ChatWindow            int    `mapstructure:"CHAT_WINDOW"`
	RequestTimeoutSeconds int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "/data/moodchat.db")
	viper.SetDefault("OLLAMA_URL", "http://ollama:11434")
	viper.SetDefault("CHAT_MODEL", "gpt-oss:120b-cloud")
	viper.SetDefault("DESIGN_MODEL", "glm-4.6:cloud")
	viper.SetDefault("CODE_MODEL", "glm-4.6:cloud")
	// A theme is derived after every THEME_EVERY-th user message.
	// THEME_EVERY=1 regenerates on every turn.
	viper.SetDefault("THEME_EVERY", 2)
	viper.SetDefault("THEME_WINDOW", 6)
	viper.SetDefault("CHAT_WINDOW", 20)
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 120)
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
