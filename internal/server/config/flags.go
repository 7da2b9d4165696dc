package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/chatandpay/internal/flagx"
)

var serverFlags = []string{"-a", "-w", "-d", "-s", "-t", "-o", "-m", "-n", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-w string     HTTP bind address (e.g., ":8080")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t int        access token validity, minutes
//	-o duration   OTP validity (e.g., "5m")
//	-m int        OTP attempts before the challenge closes
//	-n string     notifier backend ("log" or "sns")
//	-l string     log level
//
// os.Args is filtered with flagx.FilterArgs first, so -c/-config does not
// trip this flag set.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.DurationVar(&config.OTPValidityDuration, "o", config.OTPValidityDuration, "otp validity")
	fs.IntVar(&config.OTPMaxAttempts, "m", config.OTPMaxAttempts, "otp max attempts")
	fs.StringVar(&config.NotifierBackend, "n", config.NotifierBackend, "notifier backend")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	return nil
}
