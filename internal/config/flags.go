package config

import (
	"flag"
	"os"
	"time"

	"github.com/adboardapp/adboard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN of the record store
//	-l string   path to the local sqlite database
//	-s string   session HMAC secret key
//	-q int      remote query timeout, seconds
//	-t int      verification code validity, minutes
//	-n int      verification code max attempts
//	-m string   SMS gateway URL (empty = console delivery)
//	-k string   SMS gateway API key
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-l", "-s", "-q", "-t", "-n", "-m", "-k", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.LocalDBPath, "l", config.LocalDBPath, "local database path")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret key")

	queryTimeout := fs.Int("q", int(config.QueryTimeout.Seconds()), "query timeout (in seconds)")
	codeTTL := fs.Int("t", int(config.CodeTTL.Minutes()), "verification code validity (in minutes)")

	fs.IntVar(&config.CodeMaxAttempts, "n", config.CodeMaxAttempts, "verification code max attempts")
	fs.StringVar(&config.SMSGatewayURL, "m", config.SMSGatewayURL, "SMS gateway URL")
	fs.StringVar(&config.SMSGatewayKey, "k", config.SMSGatewayKey, "SMS gateway API key")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.QueryTimeout = time.Duration(*queryTimeout) * time.Second
	config.CodeTTL = time.Duration(*codeTTL) * time.Minute
}
