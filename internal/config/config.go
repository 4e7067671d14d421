package config

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string   `mapstructure:"PORT"`
	DatabaseDriver                string   `mapstructure:"DATABASE_DRIVER"`
	DatabasePath                  string   `mapstructure:"DATABASE_PATH"`
	DatabaseDSN                   string   `mapstructure:"DATABASE_DSN"`
	DiscordClientID               string   `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret           string   `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL            string   `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordBotToken               string   `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string   `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	JWTSecret                     string   `mapstructure:"JWT_SECRET"`
	FrontendURL                   string   `mapstructure:"FRONTEND_URL"`
	EnableCORS                    bool     `mapstructure:"ENABLE_CORS"`
	CORSOrigins                   []string `mapstructure:"CORS_ORIGINS"`
	SuperuserDiscordIDs           []string `mapstructure:"SUPERUSER_DISCORD_IDS"`
	StorageBackend                string   `mapstructure:"STORAGE_BACKEND"`
	MediaRoot                     string   `mapstructure:"MEDIA_ROOT"`
	MediaURL                      string   `mapstructure:"MEDIA_URL"`
	S3Bucket                      string   `mapstructure:"S3_BUCKET"`
	S3PublicURL                   string   `mapstructure:"S3_PUBLIC_URL"`
	StrictBookings                bool     `mapstructure:"STRICT_BOOKINGS"`
	LogLevel                      string   `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_PATH", "convention.db")
	viper.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:4000/admin")
	viper.SetDefault("CORS_ORIGINS", []string{"*"})
	viper.SetDefault("SUPERUSER_DISCORD_IDS", []string{})
	viper.SetDefault("STORAGE_BACKEND", "local")
	viper.SetDefault("MEDIA_ROOT", "media")
	viper.SetDefault("MEDIA_URL", "/media/")
	viper.SetDefault("STRICT_BOOKINGS", false)
	viper.SetDefault("LOG_LEVEL", "info")

	viper.BindEnv("DATABASE_DSN")
	viper.BindEnv("DISCORD_CLIENT_ID")
	viper.BindEnv("DISCORD_CLIENT_SECRET")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("FRONTEND_URL")
	viper.BindEnv("ENABLE_CORS")
	viper.BindEnv("CORS_ORIGINS")
	viper.BindEnv("SUPERUSER_DISCORD_IDS")
	viper.BindEnv("S3_BUCKET")
	viper.BindEnv("S3_PUBLIC_URL")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logrus.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}

// IsSuperuser reports whether the Discord account is configured as a superuser.
func (c *Config) IsSuperuser(discordID string) bool {
	for _, id := range c.SuperuserDiscordIDs {
		if id == discordID {
			return true
		}
	}
	return false
}
