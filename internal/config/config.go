package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Tontine  TontineConfig
	NATS     NATSConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// TontineConfig holds tontine policy configuration
type TontineConfig struct {
	// MinRosterSize is the minimum number of enrolled participants
	// required to activate a tontine. Zero disables the check.
	MinRosterSize int
	// InviteBaseURL is the public base URL embedded in shareable
	// invitation links.
	InviteBaseURL string
	// CodeLength is the invitation code length.
	CodeLength int
	// CodeRetries bounds regeneration attempts on code collision.
	CodeRetries int
}

// NATSConfig holds the optional change-notification broker configuration
type NATSConfig struct {
	URL string
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "tontine")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("Tontine.MinRosterSize", 0)
	viper.SetDefault("Tontine.InviteBaseURL", "http://localhost:3000")
	viper.SetDefault("Tontine.CodeLength", 6)
	viper.SetDefault("Tontine.CodeRetries", 5)
	viper.SetDefault("NATS.URL", "")
	viper.SetDefault("LogLevel", "info")
}
