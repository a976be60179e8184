package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/sitewise/contractvault/internal/db"
)

// Server holds HTTP server settings.
type Server struct {
	Addr           string
	AllowedOrigins []string
	LogMode        string
}

// Config is the full service configuration.
type Config struct {
	Database db.Config
	Server   Server
}

// Load reads config.yaml from configPath, with CV_-prefixed environment
// overrides (CV_DATABASE_HOST, CV_SERVER_ADDR, ...). Missing file means
// defaults plus environment.
func Load(configPath string) (Config, error) {
	cfg := Config{
		Database: db.DefaultConfig(),
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			LogMode:        "development",
		},
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("CV")
	// Nested keys map to flat env names: database.host -> CV_DATABASE_HOST.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("server.allowed_origins")
	v.BindEnv("server.log_mode")

	// Config file not found is fine; defaults and env vars apply.
	_ = v.ReadInConfig()

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("server.log_mode") {
		cfg.Server.LogMode = v.GetString("server.log_mode")
	}

	return cfg, nil
}
