package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/feesync/feesync/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Mongo      MongoConfig      `validate:"required"`
	Zoho       ZohoConfig       `validate:"required"`
	Sync       SyncConfig       `validate:"required"`
	SendGrid   SendGridConfig   `mapstructure:"sendgrid"`
	Twilio     TwilioConfig
	Reminder   ReminderConfig `validate:"required"`
	Auth       AuthConfig     `validate:"required"`
	Cache      CacheConfig
	Sentry     SentryConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type MongoConfig struct {
	URI            string        `validate:"required"`
	Database       string        `validate:"required"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// StartupRetry bounds how long the server keeps pinging Mongo at boot
	StartupRetry time.Duration `mapstructure:"startup_retry"`
}

type ZohoConfig struct {
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	OrganizationID string        `mapstructure:"organization_id"`
	RedirectURI    string        `mapstructure:"redirect_uri"`
	APIBase        string        `mapstructure:"api_base" validate:"required,url"`
	AccountsURL    string        `mapstructure:"accounts_url" validate:"required,url"`
	Scope          string        `mapstructure:"scope"`
	RefreshLead    time.Duration `mapstructure:"refresh_lead"`
	PageSize       int           `mapstructure:"page_size" validate:"min=0,max=200"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RetryMax       int           `mapstructure:"retry_max" validate:"min=0"`
}

type SyncConfig struct {
	Strategy      types.SyncStrategy `validate:"required,oneof=replace upsert"`
	Interval      time.Duration
	PaymentMonths int `mapstructure:"payment_months" validate:"min=1,max=36"`
}

type SendGridConfig struct {
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

type TwilioConfig struct {
	AccountSID     string `mapstructure:"account_sid"`
	AuthToken      string `mapstructure:"auth_token"`
	WhatsAppNumber string `mapstructure:"whatsapp_number"`
	PhoneNumber    string `mapstructure:"phone_number"`
}

type ReminderConfig struct {
	DefaultCountryCode string        `mapstructure:"default_country_code"`
	WhatsAppInterval   time.Duration `mapstructure:"whatsapp_interval"`
	EmailConcurrency   int           `mapstructure:"email_concurrency" validate:"min=1"`
	InstituteName      string        `mapstructure:"institute_name"`
	PortalURL          string        `mapstructure:"portal_url"`
}

type AuthConfig struct {
	Secret        string        `validate:"required"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	OTPTTL        time.Duration `mapstructure:"otp_ttl"`
	ResetTokenTTL time.Duration `mapstructure:"reset_token_ttl"`
	FrontendURL   string        `mapstructure:"frontend_url"`
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// legacyEnv maps config keys to the unprefixed environment variables the
// deployment already sets.
var legacyEnv = map[string]string{
	"mongo.uri":              "MONGODB_URI",
	"zoho.client_id":         "ZOHO_CLIENT_ID",
	"zoho.client_secret":     "ZOHO_CLIENT_SECRET",
	"zoho.organization_id":   "ZOHO_ORGANIZATION_ID",
	"zoho.redirect_uri":      "ZOHO_REDIRECT_URI",
	"zoho.api_base":          "ZOHO_API_BASE",
	"sendgrid.api_key":       "SENDGRID_API_KEY",
	"sendgrid.from_email":    "SENDGRID_FROM_EMAIL",
	"twilio.account_sid":     "TWILIO_ACCOUNT_SID",
	"twilio.auth_token":      "TWILIO_AUTH_TOKEN",
	"twilio.whatsapp_number": "TWILIO_WHATSAPP_NUMBER",
	"twilio.phone_number":    "TWILIO_PHONE_NUMBER",
	"auth.secret":            "JWT_SECRET",
}

func NewConfig() (*Configuration, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/feesync")

	setDefaults(v)

	v.SetEnvPrefix("FEESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		prefixed := "FEESYNC_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
		fmt.Printf("No config file found, using defaults and environment\n")
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	defaults := GetDefaultConfig()
	v.SetDefault("deployment.mode", defaults.Deployment.Mode)
	v.SetDefault("server.address", defaults.Server.Address)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("mongo.database", defaults.Mongo.Database)
	v.SetDefault("mongo.connect_timeout", defaults.Mongo.ConnectTimeout)
	v.SetDefault("mongo.startup_retry", defaults.Mongo.StartupRetry)
	v.SetDefault("zoho.api_base", defaults.Zoho.APIBase)
	v.SetDefault("zoho.accounts_url", defaults.Zoho.AccountsURL)
	v.SetDefault("zoho.scope", defaults.Zoho.Scope)
	v.SetDefault("zoho.refresh_lead", defaults.Zoho.RefreshLead)
	v.SetDefault("zoho.page_size", defaults.Zoho.PageSize)
	v.SetDefault("zoho.timeout", defaults.Zoho.Timeout)
	v.SetDefault("zoho.retry_max", defaults.Zoho.RetryMax)
	v.SetDefault("sync.strategy", defaults.Sync.Strategy)
	v.SetDefault("sync.interval", defaults.Sync.Interval)
	v.SetDefault("sync.payment_months", defaults.Sync.PaymentMonths)
	v.SetDefault("sendgrid.from_name", defaults.SendGrid.FromName)
	v.SetDefault("reminder.default_country_code", defaults.Reminder.DefaultCountryCode)
	v.SetDefault("reminder.whatsapp_interval", defaults.Reminder.WhatsAppInterval)
	v.SetDefault("reminder.email_concurrency", defaults.Reminder.EmailConcurrency)
	v.SetDefault("reminder.institute_name", defaults.Reminder.InstituteName)
	v.SetDefault("auth.token_ttl", defaults.Auth.TokenTTL)
	v.SetDefault("auth.otp_ttl", defaults.Auth.OTPTTL)
	v.SetDefault("auth.reset_token_ttl", defaults.Auth.ResetTokenTTL)
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("sentry.enabled", defaults.Sentry.Enabled)
	v.SetDefault("sentry.sample_rate", defaults.Sentry.SampleRate)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and tests. Secrets and connection strings are left empty.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Mongo: MongoConfig{
			Database:       "feesync",
			ConnectTimeout: 10 * time.Second,
			StartupRetry:   30 * time.Second,
		},
		Zoho: ZohoConfig{
			APIBase:     "https://www.zohoapis.in/invoice/v3",
			AccountsURL: "https://accounts.zoho.in",
			Scope:       "ZohoInvoice.fullaccess.all",
			RefreshLead: 5 * time.Minute,
			PageSize:    200,
			Timeout:     30 * time.Second,
			RetryMax:    0,
		},
		Sync: SyncConfig{
			Strategy:      types.SyncStrategyUpsert,
			PaymentMonths: types.SyncPaymentMonths,
		},
		SendGrid: SendGridConfig{FromName: "Fees Office"},
		Reminder: ReminderConfig{
			DefaultCountryCode: "+91",
			WhatsAppInterval:   time.Second,
			EmailConcurrency:   5,
			InstituteName:      "the institute",
		},
		Auth: AuthConfig{
			TokenTTL:      7 * 24 * time.Hour,
			OTPTTL:        10 * time.Minute,
			ResetTokenTTL: time.Hour,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     5 * time.Minute,
		},
		Sentry: SentryConfig{
			Enabled:    false,
			SampleRate: 1.0,
		},
	}
}
