package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/messagely/internal/flagx"
	"github.com/dmitrijs2005/messagely/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "10s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr       string         `json:"endpoint_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	BcryptCost         int            `json:"bcrypt_cost"`
	SMSAccountSID      string         `json:"sms_account_sid"`
	SMSAuthToken       string         `json:"sms_auth_token"`
	SMSFromNumber      string         `json:"sms_from_number"`
	SMSSendTimeout     timex.Duration `json:"sms_send_timeout"`
	OutboxPollInterval timex.Duration `json:"outbox_poll_interval"`
	OutboxMaxAttempts  int            `json:"outbox_max_attempts"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics. Zero values in the file leave
// the corresponding Config fields untouched.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.SMSAccountSID != "" {
		config.SMSAccountSID = c.SMSAccountSID
	}
	if c.SMSAuthToken != "" {
		config.SMSAuthToken = c.SMSAuthToken
	}
	if c.SMSFromNumber != "" {
		config.SMSFromNumber = c.SMSFromNumber
	}
	if c.SMSSendTimeout.Duration != 0 {
		config.SMSSendTimeout = c.SMSSendTimeout.Duration
	}
	if c.OutboxPollInterval.Duration != 0 {
		config.OutboxPollInterval = c.OutboxPollInterval.Duration
	}
	if c.OutboxMaxAttempts != 0 {
		config.OutboxMaxAttempts = c.OutboxMaxAttempts
	}
}
