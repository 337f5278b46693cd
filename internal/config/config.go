package config

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/spf13/viper"
)

type Config struct {
	AppName           string
	AppPort           string `mapstructure:"APP_PORT"`
	AppUrl            string `mapstructure:"APP_URL"`
	DBUrl             string `mapstructure:"DB_URL"`
	RSAPublicKey      *rsa.PublicKey
	StripeSecretKey   string `mapstructure:"STRIPE_SECRET_KEY"`
	SendGridAPIKey    string `mapstructure:"SENDGRID_API_KEY"`
	SendGridFromEmail string `mapstructure:"SENDGRID_FROM_EMAIL"`
	TwilioAccountSID  string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromPhone   string `mapstructure:"TWILIO_FROM_PHONE"`
	CloudinaryURL     string `mapstructure:"CLOUDINARY_URL"`
	RabbitMQURL       string `mapstructure:"RABBITMQ_URL"`
	LDSDKKey          string `mapstructure:"LD_SDK_KEY"`

	LDFlag_SendgridSandboxMode      bool
	LDFlag_CORSHighSecurity         bool
	LDFlag_ExpireNoticesCronEnabled bool
	LDFlag_RequireCompleteChecklist bool
}

const LDConnectionTimeout = 5 * time.Second

// AppName is normally set with -ldflags.
var AppName = "tenancy-service"

var envKeys = []string{
	"APP_PORT", "APP_URL", "DB_URL", "RSA_PUBLIC_KEY_BASE64",
	"STRIPE_SECRET_KEY", "SENDGRID_API_KEY", "SENDGRID_FROM_EMAIL",
	"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_FROM_PHONE",
	"CLOUDINARY_URL", "RABBITMQ_URL", "LD_SDK_KEY",
}

// LoadConfig reads an optional .env file from dir, then the environment.
// Feature flags come from LaunchDarkly when LD_SDK_KEY is set and fall back
// to their defaults otherwise.
func LoadConfig(dir string) (*Config, error) {
	envFile := filepath.Join(dir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_URL", "http://localhost:8080")
	viper.SetDefault("SENDGRID_FROM_EMAIL", "no-reply@rentflowhq.com")
	for _, k := range envKeys {
		_ = viper.BindEnv(k)
	}

	cfg := &Config{AppName: AppName}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.DBUrl == "" {
		return nil, errors.New("DB_URL env var is missing")
	}

	if pubB64 := viper.GetString("RSA_PUBLIC_KEY_BASE64"); pubB64 != "" {
		pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
		if err != nil {
			return nil, fmt.Errorf("RSA_PUBLIC_KEY_BASE64 is not valid base64: %w", err)
		}
		pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
		if err != nil {
			return nil, fmt.Errorf("parse RSA public key: %w", err)
		}
		cfg.RSAPublicKey = pubKey
	}

	cfg.LDFlag_SendgridSandboxMode = false
	cfg.LDFlag_CORSHighSecurity = false
	cfg.LDFlag_ExpireNoticesCronEnabled = true
	cfg.LDFlag_RequireCompleteChecklist = true

	if cfg.LDSDKKey == "" {
		utils.Logger.Info("LD_SDK_KEY not set, using default feature flags")
		return cfg, nil
	}
	if err := loadFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFlags(cfg *Config) error {
	ldClient, err := ld.MakeClient(cfg.LDSDKKey, LDConnectionTimeout)
	if err != nil {
		return fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	defer ldClient.Close()

	ctx := ldcontext.NewWithKind("service", cfg.AppName)

	flags := []struct {
		key string
		dst *bool
	}{
		{"sendgrid_sandbox_mode", &cfg.LDFlag_SendgridSandboxMode},
		{"cors_high_security", &cfg.LDFlag_CORSHighSecurity},
		{"expire_notices_cron_enabled", &cfg.LDFlag_ExpireNoticesCronEnabled},
		{"require_complete_checklist", &cfg.LDFlag_RequireCompleteChecklist},
	}
	for _, f := range flags {
		v, err := ldClient.BoolVariation(f.key, ctx, *f.dst)
		if err != nil {
			return fmt.Errorf("retrieve %s flag: %w", f.key, err)
		}
		*f.dst = v
		utils.Logger.Debugf("%s flag: %t", f.key, v)
	}
	return nil
}
