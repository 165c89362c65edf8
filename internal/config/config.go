package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/khanghh/docportal/internal/common"
	"github.com/khanghh/docportal/params"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	DefaultListenAddr        = ":3000"
	DefaultDocumentRoot      = "./documents"
	DefaultCookieMaxAge      = 24 * time.Hour
	DefaultSessionBackend    = "redis"
	DefaultMailBackend       = "smtp"
	DefaultBcryptCost        = 10
	DefaultVerificationBytes = 48
)

type MySQLConfig struct {
	Dsn             string        `mapstructure:"dsn"`
	Replicas        []string      `mapstructure:"replicas"`
	TablePrefix     string        `mapstructure:"tablePrefix"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

type SessionConfig struct {
	Backend        string        `mapstructure:"backend"`
	SessionMaxAge  time.Duration `mapstructure:"sessionMaxAge"`
	CookieName     string        `mapstructure:"cookieName"`
	CookieHttpOnly bool          `mapstructure:"cookieHttpOnly"`
	CookieSecure   bool          `mapstructure:"cookieSecure"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	TLS      bool   `mapstructure:"tls"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	CAFile   string `mapstructure:"caFile"`
}

type MailConfig struct {
	Backend string        `mapstructure:"backend"`
	Timeout time.Duration `mapstructure:"timeout"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	PoolSize    int    `mapstructure:"poolSize"`
	ClusterMode bool   `mapstructure:"clusterMode"`
}

type VerificationConfig struct {
	Secret         string        `mapstructure:"secret"`
	Expiration     time.Duration `mapstructure:"expiration"`
	ResendCooldown time.Duration `mapstructure:"resendCooldown"`
}

type SignupConfig struct {
	EmailDomain       string   `mapstructure:"emailDomain"`
	AdminEmails       []string `mapstructure:"-"`
	PasswordMinLength int      `mapstructure:"passwordMinLength"`
	BcryptCost        int      `mapstructure:"bcryptCost"`
}

type DocumentsConfig struct {
	Root string `mapstructure:"root"`
}

type Config struct {
	Debug           bool               `mapstructure:"debug"`
	SiteName        string             `mapstructure:"siteName"`
	BaseURL         string             `mapstructure:"baseURL"`
	ListenAddr      string             `mapstructure:"listenAddr"`
	HealthCheckAddr string             `mapstructure:"healthCheckAddr"`
	TemplateDir     string             `mapstructure:"templateDir"`
	AllowOrigins    []string           `mapstructure:"allowOrigins"`
	Redis           RedisConfig        `mapstructure:"redis"`
	Session         SessionConfig      `mapstructure:"session"`
	Mail            MailConfig         `mapstructure:"mail"`
	MySQL           MySQLConfig        `mapstructure:"mysql"`
	Verification    VerificationConfig `mapstructure:"verification"`
	Signup          SignupConfig       `mapstructure:"signup"`
	Documents       DocumentsConfig    `mapstructure:"documents"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.HealthCheckAddr == "" {
		c.HealthCheckAddr = params.HealthCheckServerAddr
	}
	if c.BaseURL == "" {
		return errors.New("baseURL is required")
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.MySQL.Dsn == "" {
		return errors.New("mysql.dsn is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if c.Documents.Root == "" {
		c.Documents.Root = DefaultDocumentRoot
	}

	if c.Session.Backend == "" {
		c.Session.Backend = DefaultSessionBackend
	}
	switch c.Session.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported session backend %q", c.Session.Backend)
	}
	if c.Session.SessionMaxAge == 0 {
		c.Session.SessionMaxAge = DefaultCookieMaxAge
	}

	if c.Mail.Backend == "" {
		c.Mail.Backend = DefaultMailBackend
	}
	switch c.Mail.Backend {
	case "smtp":
		if c.Mail.SMTP.Host == "" {
			return errors.New("mail.smtp.host is required")
		}
	case "log":
	default:
		return fmt.Errorf("unsupported mail backend %q", c.Mail.Backend)
	}
	if c.Mail.Timeout <= 0 {
		c.Mail.Timeout = params.MailSendTimeout
	}

	if c.Verification.Expiration <= 0 {
		c.Verification.Expiration = params.VerificationTokenExpiration
	}
	if c.Verification.ResendCooldown <= 0 {
		c.Verification.ResendCooldown = params.ResendVerificationCooldown
	}
	if c.Verification.Secret == "" {
		if !c.Debug {
			return errors.New("verification.secret is required")
		}
		secret, err := common.GenerateSecret(DefaultVerificationBytes)
		if err != nil {
			return err
		}
		slog.Warn("No verification secret configured, using an ephemeral one")
		c.Verification.Secret = secret
	}

	c.Signup.EmailDomain = strings.ToLower(strings.TrimSpace(c.Signup.EmailDomain))
	if c.Signup.EmailDomain == "" {
		return errors.New("signup.emailDomain is required")
	}
	if c.Signup.PasswordMinLength < params.PasswordMinLength {
		c.Signup.PasswordMinLength = params.PasswordMinLength
	}
	if c.Signup.BcryptCost == 0 {
		c.Signup.BcryptCost = DefaultBcryptCost
	}
	return nil
}

// emailList accepts a YAML list or a comma separated string.
func emailList(val interface{}) []string {
	var items []string
	if s, ok := val.(string); ok {
		items = strings.Split(s, ",")
	} else {
		items = cast.ToStringSlice(val)
	}
	emails := make([]string, 0, len(items))
	for _, item := range items {
		if email := strings.ToLower(strings.TrimSpace(item)); email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}

func LoadConfig(filename string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	config.Signup.AdminEmails = emailList(v.Get("signup.adminEmails"))

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
