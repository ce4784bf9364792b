package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/adboardapp/adboard/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations are
// given as integers (seconds for the query timeout, minutes for the code
// TTL), matching the command-line flags. After parsing, values are copied
// into the runtime Config.
type JsonConfig struct {
	DatabaseDSN     *string `json:"database_dsn"`
	LocalDBPath     *string `json:"local_db_path"`
	SessionSecret   *string `json:"session_secret"`
	QueryTimeoutSec *int    `json:"query_timeout_sec"`
	CodeTTLMin      *int    `json:"code_ttl_min"`
	CodeMaxAttempts *int    `json:"code_max_attempts"`
	SMSGatewayURL   *string `json:"sms_gateway_url"`
	SMSGatewayKey   *string `json:"sms_gateway_key"`
	SMSSender       *string `json:"sms_sender"`
	S3RootUser      *string `json:"s3_root_user"`
	S3RootPassword  *string `json:"s3_root_password"`
	S3Bucket        *string `json:"s3_bucket"`
	S3Region        *string `json:"s3_region"`
	S3BaseEndpoint  *string `json:"s3_base_endpoint"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Only fields present in the JSON override the current Config. Panics on
// read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.LocalDBPath != nil {
		cfg.LocalDBPath = *jc.LocalDBPath
	}
	if jc.SessionSecret != nil {
		cfg.SessionSecret = *jc.SessionSecret
	}
	if jc.QueryTimeoutSec != nil {
		cfg.QueryTimeout = time.Duration(*jc.QueryTimeoutSec) * time.Second
	}
	if jc.CodeTTLMin != nil {
		cfg.CodeTTL = time.Duration(*jc.CodeTTLMin) * time.Minute
	}
	if jc.CodeMaxAttempts != nil {
		cfg.CodeMaxAttempts = *jc.CodeMaxAttempts
	}
	if jc.SMSGatewayURL != nil {
		cfg.SMSGatewayURL = *jc.SMSGatewayURL
	}
	if jc.SMSGatewayKey != nil {
		cfg.SMSGatewayKey = *jc.SMSGatewayKey
	}
	if jc.SMSSender != nil {
		cfg.SMSSender = *jc.SMSSender
	}
	if jc.S3RootUser != nil {
		cfg.S3RootUser = *jc.S3RootUser
	}
	if jc.S3RootPassword != nil {
		cfg.S3RootPassword = *jc.S3RootPassword
	}
	if jc.S3Bucket != nil {
		cfg.S3Bucket = *jc.S3Bucket
	}
	if jc.S3Region != nil {
		cfg.S3Region = *jc.S3Region
	}
	if jc.S3BaseEndpoint != nil {
		cfg.S3BaseEndpoint = *jc.S3BaseEndpoint
	}
}
