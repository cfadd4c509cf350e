package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	FrontendConsole = "console"
	FrontendServer  = "server"
)

type Config struct {
	LogLevel   string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Frontend   string        `yaml:"frontend" env:"FRONTEND" env-default:"console"`
	Mode       string        `yaml:"mode" env:"GAME_MODE" env-default:"human-vs-computer"`
	HumanMark  string        `yaml:"human-mark" env:"HUMAN_MARK" env-default:"X"`
	MoveDelay  time.Duration `yaml:"move-delay" env-default:"500ms"`
	HTTPPort   string        `yaml:"http-port" env-default:"9090"`
	SocketPort string        `yaml:"socket-port" env-default:"9091"`
	SessionTTL time.Duration `yaml:"session-ttl" env-default:"1h"`
	Redis      Redis         `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
