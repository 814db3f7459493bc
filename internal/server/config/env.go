package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading an
// optional .env file first. A missing .env file is not an error.
//
// Recognized variables:
//
//	ADDRESS              HTTP bind address
//	DATABASE_DSN         PostgreSQL DSN
//	SECRET_KEY           JWT HMAC secret
//	BCRYPT_WORK_FACTOR   bcrypt cost, integer
//	SMS_ACCOUNT_SID      SMS provider account SID
//	SMS_AUTH_TOKEN       SMS provider auth token
//	SMS_FROM_NUMBER      sender phone number (E.164)
//	SMS_SEND_TIMEOUT     per-attempt send timeout, Go duration
//	OUTBOX_POLL_INTERVAL dispatcher poll interval, Go duration
//	OUTBOX_MAX_ATTEMPTS  delivery attempts before giving up, integer
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("BCRYPT_WORK_FACTOR"); ok {
		if cost, err := strconv.Atoi(v); err == nil {
			config.BcryptCost = cost
		}
	}
	if v, ok := os.LookupEnv("SMS_ACCOUNT_SID"); ok {
		config.SMSAccountSID = v
	}
	if v, ok := os.LookupEnv("SMS_AUTH_TOKEN"); ok {
		config.SMSAuthToken = v
	}
	if v, ok := os.LookupEnv("SMS_FROM_NUMBER"); ok {
		config.SMSFromNumber = v
	}
	if v, ok := os.LookupEnv("SMS_SEND_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.SMSSendTimeout = d
		}
	}
	if v, ok := os.LookupEnv("OUTBOX_POLL_INTERVAL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.OutboxPollInterval = d
		}
	}
	if v, ok := os.LookupEnv("OUTBOX_MAX_ATTEMPTS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.OutboxMaxAttempts = n
		}
	}
}
