package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type (
	AppCfg struct {
		Name string `mapstructure:"name"`
		Env  string `mapstructure:"env"`
	}
	ServerCfg struct {
		Port         int           `mapstructure:"port"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
		IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	}
	PostgresCfg struct {
		URL          string `mapstructure:"url"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
	}
	RedisCfg struct {
		Addr string        `mapstructure:"addr"`
		DB   int           `mapstructure:"db"`
		TTL  time.Duration `mapstructure:"ttl"`
	}
	WebhookCfg struct {
		Secret       string `mapstructure:"secret"`
		MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
	}
	Config struct {
		App      AppCfg      `mapstructure:"app"`
		Server   ServerCfg   `mapstructure:"server"`
		Postgres PostgresCfg `mapstructure:"postgres"`
		Redis    RedisCfg    `mapstructure:"redis"`
		Webhook  WebhookCfg  `mapstructure:"webhook"`
	}
)

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if p := os.Getenv("APP_CONFIG_PATH"); p != "" {
		v.SetConfigFile(p)
	}

	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("app.name", "webhook-inbox")
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "5s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "24h")
	v.SetDefault("webhook.max_body_bytes", 1<<20)

	// The signing secret has no default on purpose: readiness stays
	// false until it is configured.
	_ = v.BindEnv("webhook.secret", "APP_WEBHOOK_SECRET", "WEBHOOK_SECRET")
	_ = v.BindEnv("postgres.url", "APP_POSTGRES_URL", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		// continue with env/defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
