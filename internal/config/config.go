package config

import (
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is built once at startup and injected into the components that
// need it. Nothing reads the environment mid-request.
type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	} `mapstructure:"server"`

	Mongo struct {
		URI      string `mapstructure:"uri"`
		Database string `mapstructure:"database"`
	} `mapstructure:"mongo"`

	JWT struct {
		Secret string `mapstructure:"secret"`
	} `mapstructure:"jwt"`

	Mail struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
	} `mapstructure:"mail"`

	Push struct {
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"push"`
}

// Load reads configs/config.yaml if present, overlays environment
// variables (MAIL_USER, MONGO_URI, ...) and applies defaults. Missing mail
// credentials are not validated here; sends simply fail and are logged.
func Load() *Config {
	// .env is optional outside local development
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "technotrends")
	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("push.endpoint", "https://exp.host/--/api/v2/push/send")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.WithError(err).Debug("no config file loaded, using env and defaults")
	}

	// Legacy env names used by deployments
	bindAliases(v, map[string]string{
		"mongo.uri":     "MONGO_URI",
		"jwt.secret":    "JWT_SECRET",
		"mail.user":     "EMAIL_USER",
		"mail.password": "EMAIL_PASSWORD",
		"server.port":   "PORT",
	})

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.WithError(err).Fatal("failed to unmarshal config")
	}
	return &cfg
}

func bindAliases(v *viper.Viper, aliases map[string]string) {
	for key, env := range aliases {
		if err := v.BindEnv(key, env); err != nil {
			log.WithError(err).WithField("key", key).Warn("failed to bind env var")
		}
	}
}
