package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the main configuration for the application.
type Config struct {
	Server    Server         `mapstructure:"server"`
	Database  Database       `mapstructure:"database"`
	Redis     Redis          `mapstructure:"redis"`
	Scheduler Scheduler      `mapstructure:"scheduler"`
	Email     Email          `mapstructure:"email"`
	Twilio    Twilio         `mapstructure:"twilio"`
	WhatsApp  WhatsApp       `mapstructure:"whatsapp"`
	Telegram  Telegram       `mapstructure:"telegram"`
	Push      Push           `mapstructure:"push"`
	Retry     retry.Strategy `mapstructure:"retry"`
	APISecret string         `mapstructure:"api_secret"`

	// DevSeed populates the in-memory store with a demo user at startup.
	DevSeed bool `mapstructure:"dev_seed"`

	// SendTimeout bounds a single channel delivery attempt.
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort string `mapstructure:"http_port"` // HTTP port to listen on
}

// Database holds database master and slave configuration. An empty
// master host selects the in-memory store for local development.
type Database struct {
	Master DatabaseNode   `mapstructure:"master"`
	Slaves []DatabaseNode `mapstructure:"slaves"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DatabaseNode holds connection parameters for a single database node.
type DatabaseNode struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
	Name    string `mapstructure:"name"`
	SSLMode string `mapstructure:"ssl_mode"`
}

// Redis holds Redis connection parameters. An empty address disables the
// distributed sweep lock; the dispatcher then guards sweeps in-process.
type Redis struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// Scheduler holds the recurring sweep configuration.
type Scheduler struct {
	Spec       string        `mapstructure:"spec"`      // cron expression
	Timezone   string        `mapstructure:"timezone"`  // IANA zone for the cron spec
	TestMode   bool          `mapstructure:"test_mode"` // fast interval for manual testing
	AutoStart  bool          `mapstructure:"auto_start"`
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

// Email holds SMTP configuration for sending emails.
type Email struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Twilio holds the credentials shared by the SMS channel and the
// WhatsApp fallback gateway.
type Twilio struct {
	AccountSID   string `mapstructure:"account_sid"`
	AuthToken    string `mapstructure:"auth_token"`
	FromNumber   string `mapstructure:"from_number"`
	WhatsAppFrom string `mapstructure:"whatsapp_from"`
}

// WhatsApp holds Meta Cloud API credentials for the preferred WhatsApp
// provider.
type WhatsApp struct {
	AccessToken   string `mapstructure:"access_token"`
	PhoneNumberID string `mapstructure:"phone_number_id"`
}

// Telegram holds configuration for the Telegram bot.
type Telegram struct {
	Token string `mapstructure:"token"`
}

// Push holds the VAPID key pair for web push.
type Push struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key"`
	Subscriber      string `mapstructure:"subscriber"` // mailto contact for push services
	TTL             int    `mapstructure:"ttl"`
}

// DSN returns the PostgreSQL DSN string for connecting to this database node.
func (n DatabaseNode) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		n.User, n.Pass, n.Host, n.Port, n.Name, n.SSLMode,
	)
}

// mustBindEnv binds critical environment variables to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv() {
	bindings := map[string]string{
		"database.master.host": "DB_HOST",
		"database.master.port": "DB_PORT",
		"database.master.user": "DB_USER",
		"database.master.pass": "DB_PASSWORD",
		"database.master.name": "DB_NAME",

		"redis.address":  "REDIS_ADDRESS",
		"redis.password": "REDIS_PASSWORD",
		"redis.database": "REDIS_DATABASE",

		"email.smtp_host": "SMTP_HOST",
		"email.smtp_port": "SMTP_PORT",
		"email.username":  "SMTP_USER",
		"email.password":  "SMTP_PASS",
		"email.from":      "SMTP_FROM",

		"twilio.account_sid":   "TWILIO_ACCOUNT_SID",
		"twilio.auth_token":    "TWILIO_AUTH_TOKEN",
		"twilio.from_number":   "TWILIO_FROM_NUMBER",
		"twilio.whatsapp_from": "TWILIO_WHATSAPP_FROM",

		"whatsapp.access_token":    "WHATSAPP_ACCESS_TOKEN",
		"whatsapp.phone_number_id": "WHATSAPP_PHONE_NUMBER_ID",

		"telegram.token": "TELEGRAM_TOKEN",

		"push.vapid_public_key":  "VAPID_PUBLIC_KEY",
		"push.vapid_private_key": "VAPID_PRIVATE_KEY",
		"push.subscriber":        "VAPID_SUBSCRIBER",

		"scheduler.spec":       "SCHEDULER_SPEC",
		"scheduler.timezone":   "SCHEDULER_TIMEZONE",
		"scheduler.test_mode":  "SCHEDULER_TEST_MODE",
		"scheduler.auto_start": "SCHEDULER_AUTO_START",

		"api_secret": "API_SECRET",
		"dev_seed":   "DEV_SEED",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

// Must loads and validates the configuration from file and environment variables.
//
// It panics if configuration cannot be read or unmarshalled.
func Must() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to read config")
	}

	mustBindEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		zlog.Logger.Panic().Err(err).Msgf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
