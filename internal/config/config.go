package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis   `yaml:"redis"`
	Archive    Archive `yaml:"archive"`
	Rules      Rules   `yaml:"rules"`
	Session    Session `yaml:"session"`
}

type Redis struct {
	Host    string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	GameTTL time.Duration `yaml:"game-ttl" env:"REDIS_GAME_TTL" env-default:"24h"`
}

type Archive struct {
	Path string `yaml:"path" env:"ARCHIVE_PATH" env-default:"data/archive.db"`
}

type Rules struct {
	VictoryPoints int    `yaml:"victory-points" env:"RULES_VICTORY_POINTS" env-default:"10"`
	BonusPoints   int    `yaml:"bonus-points" env:"RULES_BONUS_POINTS" env-default:"1"`
	BoardLayout   string `yaml:"board-layout" env:"RULES_BOARD_LAYOUT" env-default:"standard"`
	Seed          int64  `yaml:"seed" env:"RULES_SEED" env-default:"0"`
}

type Session struct {
	MaxPlayers        int           `yaml:"max-players" env:"SESSION_MAX_PLAYERS" env-default:"4"`
	TurnTimeout       time.Duration `yaml:"turn-timeout" env:"SESSION_TURN_TIMEOUT" env-default:"0s"`
	ReadTimeout       time.Duration `yaml:"read-timeout" env:"SESSION_READ_TIMEOUT" env-default:"5m"`
	MessagesPerSecond float64       `yaml:"messages-per-second" env:"SESSION_MESSAGES_PER_SECOND" env-default:"10"`
	Burst             int           `yaml:"burst" env:"SESSION_BURST" env-default:"20"`
}

// MustLoad - load all configurations in config.yml file. A .env next to it, if present, is
// applied first so its variables override the file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(fmt.Errorf("unable to load .env file: %w", err))
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
