package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var config = viper.New()

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	Server     struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type           string `mapstructure:"TYPE"`
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Commission struct {
		// HoldPeriod is how long a captured commission stays PENDING
		// before the release engine may move it to spendable balance.
		HoldPeriod time.Duration `mapstructure:"HOLD_PERIOD"`
		// Rate is the affiliate share of a captured payment.
		Rate float64 `mapstructure:"RATE"`
		// ReleaseHour/ReleaseMinute schedule the daily release run.
		// The schedule must not overlap itself: the engine assumes a
		// single runner and takes no lock.
		ReleaseHour   int `mapstructure:"RELEASE_HOUR"`
		ReleaseMinute int `mapstructure:"RELEASE_MINUTE"`
	} `mapstructure:"COMMISSION"`
	// InternalToken gates internal trigger endpoints such as
	// POST /v1/commissions/release.
	InternalToken string `mapstructure:"INTERNAL_TOKEN"`
}

const (
	DefaultCommissionHold = 30 * 24 * time.Hour
	DefaultCommissionRate = 0.30
)

var Module = fx.Module("config", fx.Provide(LoadConfig))

func LoadConfig() *Config {
	config.SetConfigName("config")
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	if err := config.ReadInConfig(); err != nil {
		zap.L().Error("failed to read config file", zap.Error(err))
		os.Exit(1)
	}

	var cfg Config
	if err := config.Unmarshal(&cfg); err != nil {
		zap.L().Error("failed to unmarshal config", zap.Error(err))
		os.Exit(1)
	}

	if cfg.Commission.HoldPeriod == 0 {
		cfg.Commission.HoldPeriod = DefaultCommissionHold
	}
	if cfg.Commission.Rate == 0 {
		cfg.Commission.Rate = DefaultCommissionRate
	}

	return &cfg
}
