package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Codegen  CodegenConfig  `mapstructure:"codegen"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug or release
}

// StorageConfig selects the persistence primitive behind the entity store.
// Backend is one of memory, redis, mysql. A non-empty AESKey encrypts every
// stored blob at rest; it must be 16, 24 or 32 bytes.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	KeyPrefix string `mapstructure:"key_prefix"`
	AESKey    string `mapstructure:"aes_key"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// JWTConfig gates the API. An empty Secret disables authentication entirely,
// which is the expected mode for local development.
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	AccessKey   string `mapstructure:"access_key"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type CodegenConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	OrgID   string `mapstructure:"org_id"`

	MaxPollers int `mapstructure:"max_pollers"`

	PlanInitialDelay int `mapstructure:"plan_initial_delay"` // seconds
	PlanInterval     int `mapstructure:"plan_interval"`      // seconds
	PlanMaxAttempts  int `mapstructure:"plan_max_attempts"`

	ImplInitialDelay int `mapstructure:"impl_initial_delay"` // seconds
	ImplInterval     int `mapstructure:"impl_interval"`      // seconds
	ImplMaxAttempts  int `mapstructure:"impl_max_attempts"`
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("storage.backend", "memory")
	viper.SetDefault("storage.key_prefix", "planmaster")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.user", "root")
	viper.SetDefault("database.name", "planmaster")

	viper.SetDefault("jwt.expire_hours", 72)

	viper.SetDefault("codegen.max_pollers", 4)
	viper.SetDefault("codegen.plan_initial_delay", 5)
	viper.SetDefault("codegen.plan_interval", 10)
	viper.SetDefault("codegen.plan_max_attempts", 30)
	viper.SetDefault("codegen.impl_initial_delay", 5)
	viper.SetDefault("codegen.impl_interval", 10)
	viper.SetDefault("codegen.impl_max_attempts", 60)
}

// Load reads configuration from the given file (optional) and from PM_*
// environment variables, e.g. PM_CODEGEN_TOKEN overrides codegen.token.
func Load(path string) (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("PM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
