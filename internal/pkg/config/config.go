package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var GlobalConfig *Config

// EnvPrefix is the prefix of environment overrides, e.g. AI2SQL_DATABASE_PASSWORD
const EnvPrefix = "AI2SQL"

// Config is the global configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Crypto       CryptoConfig       `mapstructure:"crypto"`
	Log          LogConfig          `mapstructure:"log"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Notification NotificationConfig `mapstructure:"notification"`
}

type ServerConfig struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=mysql postgres sqlite"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database" validate:"required"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // seconds
	LogLevel        string `mapstructure:"log_level"`         // silent/error/warn/info
}

type AuthConfig struct {
	JWT             JWTConfig       `mapstructure:"jwt"`
	LDAP            LDAPConfig      `mapstructure:"ldap"`
	Local           LocalConfig     `mapstructure:"local"`
	SuperuserEmails []string        `mapstructure:"superuser_emails"`
	Bootstrap       BootstrapConfig `mapstructure:"bootstrap"`
}

type JWTConfig struct {
	Secret             string `mapstructure:"secret" validate:"required"`
	AccessTokenExpire  int    `mapstructure:"access_token_expire" validate:"gt=0"`  // seconds
	RefreshTokenExpire int    `mapstructure:"refresh_token_expire" validate:"gt=0"` // seconds
}

type LDAPConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	Host         string         `mapstructure:"host"`
	Port         int            `mapstructure:"port"`
	UseSSL       bool           `mapstructure:"use_ssl"`
	BindDN       string         `mapstructure:"bind_dn"`
	BindPassword string         `mapstructure:"bind_password"`
	BaseDN       string         `mapstructure:"base_dn"`
	UserFilter   string         `mapstructure:"user_filter"`
	Attributes   LDAPAttributes `mapstructure:"attributes"`
}

type LDAPAttributes struct {
	Email       string `mapstructure:"email"`
	DisplayName string `mapstructure:"display_name"`
}

type LocalConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	AllowRegistration bool `mapstructure:"allow_registration"`
}

// BootstrapConfig creates or promotes a superuser on startup when Email is set
type BootstrapConfig struct {
	Email    string `mapstructure:"email"`
	Name     string `mapstructure:"name"`
	Password string `mapstructure:"password"`
}

type CryptoConfig struct {
	AESKey string `mapstructure:"aes_key" validate:"len=32"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// LLMConfig selects the SQL generator
type LLMConfig struct {
	Provider       string `mapstructure:"provider" validate:"oneof=static gemini"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	HistorySize    int    `mapstructure:"history_size" validate:"min=0,max=100"`
	Timeout        int    `mapstructure:"timeout" validate:"gt=0"` // seconds
}

type SchedulerConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	ConnectionCheckCron string `mapstructure:"connection_check_cron"`
	ConnectionTimeout   int    `mapstructure:"connection_timeout" validate:"gt=0"` // seconds
}

type NotificationConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Provider    string `mapstructure:"provider"`
	LarkWebhook string `mapstructure:"lark_webhook"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "ai2sql")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "ai2sql")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.log_level", "silent")

	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.access_token_expire", 7200)
	v.SetDefault("auth.jwt.refresh_token_expire", 604800)
	v.SetDefault("auth.local.enabled", true)
	v.SetDefault("auth.local.allow_registration", true)
	v.SetDefault("auth.ldap.port", 389)
	v.SetDefault("auth.ldap.user_filter", "(mail=%s)")
	v.SetDefault("auth.ldap.attributes.email", "mail")
	v.SetDefault("auth.ldap.attributes.display_name", "cn")
	v.SetDefault("auth.bootstrap.email", "")
	v.SetDefault("auth.bootstrap.name", "")
	v.SetDefault("auth.bootstrap.password", "")
	v.SetDefault("auth.superuser_emails", []string{})

	v.SetDefault("crypto.aes_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("llm.provider", "static")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-1.5-flash")
	v.SetDefault("llm.embedding_model", "text-embedding-004")
	v.SetDefault("llm.history_size", 10)
	v.SetDefault("llm.timeout", 60)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.connection_check_cron", "0 */30 * * * *")
	v.SetDefault("scheduler.connection_timeout", 5)

	v.SetDefault("notification.provider", "lark")
	v.SetDefault("notification.lark_webhook", "")
}

// Load reads the configuration file, applies AI2SQL_* environment overrides and validates the result
func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	GlobalConfig = config

	return config, nil
}

// GetDSN builds the driver specific DSN
func (c *DatabaseConfig) GetDSN() string {
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
	case "sqlite":
		return c.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.Username,
			c.Password,
			c.Host,
			c.Port,
			c.Database,
		)
	}
}

// Addr returns the listen address of the HTTP server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
