package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type RoomsConfig struct {
	IDAttempts int `mapstructure:"id_attempts"`
	InboxSize  int `mapstructure:"inbox_size"`
	// EmptyTTL deletes a created room nobody has joined.
	EmptyTTL time.Duration `mapstructure:"empty_ttl"`
}

type BreakoutConfig struct {
	MinRooms int `mapstructure:"min_rooms"`
	MaxRooms int `mapstructure:"max_rooms"`
}

type ChatConfig struct {
	RateLimit      int           `mapstructure:"rate_limit"`
	RateInterval   time.Duration `mapstructure:"rate_interval"`
	ProfanityWords []string      `mapstructure:"profanity_words"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type AuditConfig struct {
	Buffer    int    `mapstructure:"buffer"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisKey  string `mapstructure:"redis_key"`
}

type PasswordConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	StaticPath   string        `mapstructure:"static_path"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	Secret       string        `mapstructure:"secret"`
	LogLevel     string        `mapstructure:"log_level"`
	SlowConsumer string        `mapstructure:"slow_consumer"`

	Rooms      RoomsConfig    `mapstructure:"rooms"`
	Breakout   BreakoutConfig `mapstructure:"breakout"`
	Chat       ChatConfig     `mapstructure:"chat"`
	ICEServers []ICEServer    `mapstructure:"ice_servers"`
	Audit      AuditConfig    `mapstructure:"audit"`
	Password   PasswordConfig `mapstructure:"password"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("log_level", "info")
	v.SetDefault("slow_consumer", "kick")
	v.SetDefault("rooms.id_attempts", 5)
	v.SetDefault("rooms.inbox_size", 64)
	v.SetDefault("rooms.empty_ttl", "10m")
	v.SetDefault("breakout.min_rooms", 2)
	v.SetDefault("breakout.max_rooms", 20)
	v.SetDefault("chat.rate_limit", 10)
	v.SetDefault("chat.rate_interval", "5s")
	v.SetDefault("audit.buffer", 1024)
	v.SetDefault("audit.redis_key", "meet:audit")
	v.SetDefault("password.bcrypt_cost", 10)
}

// Load reads config/config.<CONFIG_ENV>.yaml on top of the defaults.
// MEET_* environment variables override both.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("MEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Secret == "" && cfg.Mode == "release" {
		return nil, fmt.Errorf("secret must be set in release mode")
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}
