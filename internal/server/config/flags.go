package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/messagely/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-w int      bcrypt work factor
//	-f string   SMS sender phone number (E.164)
//	-t int      SMS send timeout, seconds
//	-i int      outbox poll interval, seconds
//	-m int      outbox max delivery attempts
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in seconds and then converted
//     to time.Duration values.
//   - SMS provider credentials are deliberately not accepted as flags; they
//     come from the environment or the JSON file.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-w", "-f", "-t", "-i", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.BcryptCost, "w", config.BcryptCost, "bcrypt work factor")
	fs.StringVar(&config.SMSFromNumber, "f", config.SMSFromNumber, "SMS sender phone number")

	smsSendTimeout := fs.Int("t", int(config.SMSSendTimeout.Seconds()), "sms_send_timeout (in seconds)")
	outboxPollInterval := fs.Int("i", int(config.OutboxPollInterval.Seconds()), "outbox_poll_interval (in seconds)")

	fs.IntVar(&config.OutboxMaxAttempts, "m", config.OutboxMaxAttempts, "outbox max delivery attempts")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SMSSendTimeout = time.Duration(*smsSendTimeout) * time.Second
	config.OutboxPollInterval = time.Duration(*outboxPollInterval) * time.Second
}
