package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/linesmerrill/victim-dao-api/logging"
	"github.com/linesmerrill/victim-dao-api/models"
)

// Config holds the project config values
type Config struct {
	URL                 string
	DatabaseName        string
	BaseURL             string
	Port                string
	Env                 string
	JWTSecret           string
	DefaultVotesAllowed int
	CORSAllowedOrigins  []string
	RequestTimeout      time.Duration
	Mail                MailConfig
	StripeSecretKey     string
	Cloudinary          CloudinaryConfig
	HeadAdminEmail      string
	HeadAdminPassword   string
}

// MailConfig selects and configures the outgoing mail provider
type MailConfig struct {
	Provider       string
	SendGridAPIKey string
	ResendAPIKey   string
	FromEmail      string
	FromName       string
}

// CloudinaryConfig holds the upload credentials
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// New sets up all config related services
func New() *Config {
	// a missing .env is fine, the environment is used as is
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	conf := &Config{
		URL:                 v.GetString("DB_URI"),
		DatabaseName:        v.GetString("DB_NAME"),
		BaseURL:             v.GetString("BASE_URL"),
		Port:                v.GetString("PORT"),
		Env:                 v.GetString("ENV"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		DefaultVotesAllowed: v.GetInt("DEFAULT_VOTES_ALLOWED"),
		CORSAllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RequestTimeout:      time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		Mail: MailConfig{
			Provider:       strings.ToLower(v.GetString("MAIL_PROVIDER")),
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
			ResendAPIKey:   v.GetString("RESEND_API_KEY"),
			FromEmail:      v.GetString("MAIL_FROM_EMAIL"),
			FromName:       v.GetString("MAIL_FROM_NAME"),
		},
		StripeSecretKey: v.GetString("STRIPE_SECRET_KEY"),
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    v.GetString("CLOUDINARY_API_KEY"),
			APISecret: v.GetString("CLOUDINARY_API_SECRET"),
		},
		HeadAdminEmail:    v.GetString("ADMIN_HEAD_EMAIL"),
		HeadAdminPassword: v.GetString("ADMIN_HEAD_PASSWORD"),
	}

	//setup zap logger and replace default logger
	logger, err := setLogger(conf.Env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return conf
}

// Validate reports settings the service cannot start without
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.URL == "" {
		return errors.New("DB_URI must be set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "production")
	v.SetDefault("DB_NAME", "victimdao")
	v.SetDefault("DEFAULT_VOTES_ALLOWED", 5)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("MAIL_PROVIDER", "log")
	v.SetDefault("MAIL_FROM_EMAIL", "no-reply@victimdao.org")
	v.SetDefault("MAIL_FROM_NAME", "Victim DAO")
}

func setLogger(env string) (*zap.Logger, error) {
	return logging.New(env)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().Errorw(message, "status", httpStatusCode, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{
		Response: fmt.Sprintf("%s, %v", message, err),
	})
	w.Write(b)
}
