package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/chatandpay/internal/flagx"
	"github.com/dmitrijs2005/chatandpay/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration, used only for
// reading JSON or YAML files. Durations accept strings such as "5m" or
// integer nanoseconds. Fields left out of the file keep their current values.
type FileConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	OTPValidityDuration         timex.Duration `json:"otp_validity_duration" yaml:"otp_validity_duration"`
	OTPMaxAttempts              int            `json:"otp_max_attempts" yaml:"otp_max_attempts"`
	OTPSendRate                 float64        `json:"otp_send_rate" yaml:"otp_send_rate"`
	OTPSendBurst                int            `json:"otp_send_burst" yaml:"otp_send_burst"`
	BcryptCost                  int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	NotifierBackend             string         `json:"notifier" yaml:"notifier"`
	SNSRegion                   string         `json:"sns_region" yaml:"sns_region"`
	SNSSenderID                 string         `json:"sns_sender_id" yaml:"sns_sender_id"`
	SNSAccessKeyID              string         `json:"sns_access_key_id" yaml:"sns_access_key_id"`
	SNSSecretAccessKey          string         `json:"sns_secret_access_key" yaml:"sns_secret_access_key"`
	SNSBaseEndpoint             string         `json:"sns_base_endpoint" yaml:"sns_base_endpoint"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config, if any. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON.
func parseFile(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&cfg.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setString(&cfg.SecretKey, fc.SecretKey)
	setString(&cfg.NotifierBackend, fc.NotifierBackend)
	setString(&cfg.SNSRegion, fc.SNSRegion)
	setString(&cfg.SNSSenderID, fc.SNSSenderID)
	setString(&cfg.SNSAccessKeyID, fc.SNSAccessKeyID)
	setString(&cfg.SNSSecretAccessKey, fc.SNSSecretAccessKey)
	setString(&cfg.SNSBaseEndpoint, fc.SNSBaseEndpoint)
	setString(&cfg.LogLevel, fc.LogLevel)

	if fc.AccessTokenValidityDuration.Duration != 0 {
		cfg.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.OTPValidityDuration.Duration != 0 {
		cfg.OTPValidityDuration = fc.OTPValidityDuration.Duration
	}
	if fc.OTPMaxAttempts != 0 {
		cfg.OTPMaxAttempts = fc.OTPMaxAttempts
	}
	if fc.OTPSendRate != 0 {
		cfg.OTPSendRate = fc.OTPSendRate
	}
	if fc.OTPSendBurst != 0 {
		cfg.OTPSendBurst = fc.OTPSendBurst
	}
	if fc.BcryptCost != 0 {
		cfg.BcryptCost = fc.BcryptCost
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
