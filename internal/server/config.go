package server

import (
	"os"

	"github.com/spf13/viper"

	"github.com/coderozzy/daily-habits-final/internal/constants"
)

// Config holds the sync server settings, read from a habits-server.yaml
// file or HABITS_-prefixed environment variables.
type Config struct {
	Addr     string
	Database string
}

func LoadConfig() (Config, error) {
	viper.SetDefault("addr", constants.DefaultServerAddr)
	viper.SetDefault("database", constants.DefaultConfigPath)
	viper.SetConfigName("habits-server") // .yaml is implicit
	viper.SetEnvPrefix("HABITS")
	viper.AutomaticEnv()

	if override := os.Getenv("HABITS_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath("./")
	viper.AddConfigPath("$HOME/.config/daily-habits")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	return Config{
		Addr:     viper.GetString("addr"),
		Database: viper.GetString("database"),
	}, nil
}
