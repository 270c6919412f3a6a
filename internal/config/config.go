package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort string

	DBDriver   string // mysql | sqlite
	SQLitePath string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	LogLevel  string
	LogFormat string

	AuditTimeout time.Duration

	// Property code policy: <CodePrefix>-<ward>-<tag>-<seq padded to CodeWidth>
	CodePrefix string
	CodeWidth  int
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("SQLITE_PATH", "civic.db")
	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "civic")
	v.SetDefault("MYSQL_USER", "civic")
	v.SetDefault("MYSQL_PASS", "civic")
	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("AUDIT_TIMEOUT_MS", 3000)
	v.SetDefault("CODE_PREFIX", "PRP")
	v.SetDefault("CODE_WIDTH", 4)
}

// Load reads configuration from the environment, optionally overlaid by a
// config.yaml in the working directory.
func Load() *Config {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // file is optional

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort:      v.GetString("APP_PORT"),
		DBDriver:     strings.ToLower(v.GetString("DB_DRIVER")),
		SQLitePath:   v.GetString("SQLITE_PATH"),
		MySQLHost:    v.GetString("MYSQL_HOST"),
		MySQLPort:    v.GetString("MYSQL_PORT"),
		MySQLDB:      v.GetString("MYSQL_DB"),
		MySQLUser:    v.GetString("MYSQL_USER"),
		MySQLPass:    v.GetString("MYSQL_PASS"),
		RedisAddr:    v.GetString("REDIS_ADDR"),
		RedisDB:      v.GetInt("REDIS_DB"),
		IdempTTLSecs: v.GetInt("IDEMPOTENCY_TTL_SECONDS"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		LogFormat:    v.GetString("LOG_FORMAT"),
		AuditTimeout: time.Duration(v.GetInt("AUDIT_TIMEOUT_MS")) * time.Millisecond,
		CodePrefix:   v.GetString("CODE_PREFIX"),
		CodeWidth:    v.GetInt("CODE_WIDTH"),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.CodePrefix == "" || strings.Contains(c.CodePrefix, "-") {
		return fmt.Errorf("invalid CODE_PREFIX %q", c.CodePrefix)
	}
	if c.CodeWidth < 1 || c.CodeWidth > 12 {
		return fmt.Errorf("CODE_WIDTH must be between 1 and 12, got %d", c.CodeWidth)
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
