package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Client  ClientConfig  `mapstructure:"client"`
	Monitor MonitorConfig `mapstructure:"monitor"`
}

type BackendConfig struct {
	URL     string `mapstructure:"url"`
	AnonKey string `mapstructure:"anon_key"`
}

type ClientConfig struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	DataDir        string        `mapstructure:"data_dir"`
	ShareBaseURL   string        `mapstructure:"share_base_url"`
	ContentBaseURL string        `mapstructure:"content_base_url"`
}

type MonitorConfig struct {
	Address string `mapstructure:"address"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("sapogames")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("client.poll_interval", 2*time.Second)
	viper.SetDefault("client.data_dir", ".")
	viper.SetDefault("client.share_base_url", "https://sapogames.app/games")
	viper.SetDefault("client.content_base_url", "https://sapogames.app/game-content")

	// The backend URL and anon key may come from the environment alone;
	// a missing config file is not an error.
	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
