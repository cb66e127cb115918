// Package config loads settings from defaults, an optional brothfish.yaml
// and BROTHFISH_* environment variables.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Engine struct {
	Path     string        `mapstructure:"path"`
	Elo      int           `mapstructure:"elo"`
	Attempts uint          `mapstructure:"attempts"`
	Delay    time.Duration `mapstructure:"delay"`
}

type Search struct {
	Depth          int `mapstructure:"depth"`
	NodesPerSecond int `mapstructure:"nodes_per_second"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

type Server struct {
	Port int `mapstructure:"port"`
}

type SelfPlay struct {
	Games    int `mapstructure:"games"`
	Threads  int `mapstructure:"threads"`
	MaxPlies int `mapstructure:"max_plies"`
}

type GameLog struct {
	Path string `mapstructure:"path"`
}

type Config struct {
	Engine   Engine   `mapstructure:"engine"`
	Search   Search   `mapstructure:"search"`
	Log      Log      `mapstructure:"log"`
	Server   Server   `mapstructure:"server"`
	SelfPlay SelfPlay `mapstructure:"selfplay"`
	GameLog  GameLog  `mapstructure:"gamelog"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.path", "stockfish")
	v.SetDefault("engine.elo", 0)
	v.SetDefault("engine.attempts", 3)
	v.SetDefault("engine.delay", 200*time.Millisecond)
	v.SetDefault("search.depth", 3)
	v.SetDefault("search.nodes_per_second", 1000)
	v.SetDefault("log.level", "info")
	v.SetDefault("server.port", 8002)
	v.SetDefault("selfplay.games", 10)
	v.SetDefault("selfplay.threads", 4)
	v.SetDefault("selfplay.max_plies", 200)
	v.SetDefault("gamelog.path", "data/games.db")
}

// New returns a viper instance with defaults and environment bindings. When
// file is empty, brothfish.yaml is searched for in the working directory and
// $HOME/.brothfish.
func New(file string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("brothfish")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.brothfish")
	}

	v.SetEnvPrefix("brothfish")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file, if any, and decodes everything into a Config.
// A missing file is not an error unless it was named explicitly.
func Load(file string) (Config, error) {
	return Decode(New(file))
}

func Decode(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
