package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	OpenAI   OpenAI
	AI       AI
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type OpenAI struct {
	APIKey  string
	BaseURL string
}

// AI holds the process-wide generation defaults. Per-request overrides are
// clamped by service.SettingsService before they reach the completion API.
type AI struct {
	DefaultModel       string
	DefaultTemperature float64
	DefaultMaxTokens   int
	RequestTimeoutSec  int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("AI_DEFAULT_MODEL", "gpt-4")
	viper.SetDefault("AI_DEFAULT_TEMPERATURE", 0.7)
	viper.SetDefault("AI_DEFAULT_MAX_TOKENS", 4096)
	viper.SetDefault("AI_REQUEST_TIMEOUT_SEC", 120)

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.OpenAI.APIKey = viper.GetString("OPENAI_API_KEY")
	config.OpenAI.BaseURL = viper.GetString("OPENAI_BASE_URL")

	config.AI.DefaultModel = viper.GetString("AI_DEFAULT_MODEL")
	config.AI.DefaultTemperature = viper.GetFloat64("AI_DEFAULT_TEMPERATURE")
	config.AI.DefaultMaxTokens = viper.GetInt("AI_DEFAULT_MAX_TOKENS")
	config.AI.RequestTimeoutSec = viper.GetInt("AI_REQUEST_TIMEOUT_SEC")

	log.Info().Str("port", config.Server.Port).Str("db_host", config.Database.Host).Msg("Config loaded")
	return &config, nil
}
