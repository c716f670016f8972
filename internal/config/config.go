package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Broker  BrokerConfig  `mapstructure:"broker"`
	Trading TradingConfig `mapstructure:"trading"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Cron    CronConfig    `mapstructure:"cron"`
	Audit   AuditConfig   `mapstructure:"audit"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type FeedConfig struct {
	USURL   string        `mapstructure:"us_url"`
	HKURL   string        `mapstructure:"hk_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// URLFor picks the feed endpoint for a trading market.
func (c FeedConfig) URLFor(market string) string {
	if strings.EqualFold(strings.TrimSpace(market), "HK") {
		return c.HKURL
	}
	return c.USURL
}

type BrokerConfig struct {
	Host           string         `mapstructure:"host"`
	Port           int            `mapstructure:"port"`
	Timeout        time.Duration  `mapstructure:"timeout"`
	UnlockPassword string         `mapstructure:"unlock_password"`
	Accounts       AccountsConfig `mapstructure:"accounts"`
}

// AccountsConfig is the static environment x market account table the
// gateway keys every query and order by.
type AccountsConfig struct {
	USSimulate uint64 `mapstructure:"us_simulate"`
	USReal     uint64 `mapstructure:"us_real"`
	HKSimulate uint64 `mapstructure:"hk_simulate"`
	HKReal     uint64 `mapstructure:"hk_real"`
}

type TradingConfig struct {
	Market          string        `mapstructure:"market"`
	Environment     string        `mapstructure:"environment"`
	Timezone        string        `mapstructure:"timezone"`
	AdjustThreshold float64       `mapstructure:"adjust_threshold"`
	BaselineFloor   float64       `mapstructure:"baseline_floor"`
	CashReserve     float64       `mapstructure:"cash_reserve"`
	ErrorBackoff    time.Duration `mapstructure:"error_backoff"`
	OffSessionPause time.Duration `mapstructure:"off_session_pause"`
	MinPollDelay    time.Duration `mapstructure:"min_poll_delay"`
	MaxPollDelay    time.Duration `mapstructure:"max_poll_delay"`
}

type MonitorConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Interval       time.Duration `mapstructure:"interval"`
	RatioThreshold float64       `mapstructure:"ratio_threshold"`
}

type CronConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	PortfolioSnapshot string `mapstructure:"portfolio_snapshot"`
	Cleanup           string `mapstructure:"cleanup"`
	RetentionDays     int    `mapstructure:"retention_days"`
}

type AuditConfig struct {
	Path string `mapstructure:"path"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("feed.timeout", "15s")
	v.SetDefault("broker.host", "127.0.0.1")
	v.SetDefault("broker.port", 11111)
	v.SetDefault("broker.timeout", "10s")
	v.SetDefault("trading.market", "US")
	v.SetDefault("trading.environment", "simulate")
	v.SetDefault("trading.timezone", "Asia/Shanghai")
	// Notional drift inside the threshold is left alone so independently
	// polled feed and holdings snapshots cannot flap orders.
	v.SetDefault("trading.adjust_threshold", 300)
	v.SetDefault("trading.baseline_floor", 10000)
	v.SetDefault("trading.cash_reserve", 990000)
	v.SetDefault("trading.error_backoff", "60s")
	v.SetDefault("trading.off_session_pause", "30m")
	v.SetDefault("trading.min_poll_delay", "30s")
	v.SetDefault("trading.max_poll_delay", "60s")
	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.interval", "45s")
	v.SetDefault("monitor.ratio_threshold", 3)
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.portfolio_snapshot", "@every 1h")
	v.SetDefault("cron.cleanup", "@every 6h")
	v.SetDefault("cron.retention_days", 14)
	v.SetDefault("audit.path", "logInfo.txt")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
