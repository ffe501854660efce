package main

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultMaxSigners  = 5
	defaultMinSigners  = 4
	defaultDvrfMessage = "dvrfddhhello"
	defaultSignMessage = "attestation"
	defaultLogLevel    = "info"
	defaultLogOutput   = "stdout"
)

// Config holds the application configuration
type Config struct {
	MaxSigners  uint16 `mapstructure:"maxSigners"`
	MinSigners  uint16 `mapstructure:"minSigners"`
	DvrfMessage string `mapstructure:"dvrfMessage"`
	SignMessage string `mapstructure:"signMessage"`
	Payload     string `mapstructure:"payload"`
	Log         LogConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// loadConfig loads configuration from flags, environment variables, and defaults
func loadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("maxSigners", defaultMaxSigners)
	v.SetDefault("minSigners", defaultMinSigners)
	v.SetDefault("dvrfMessage", defaultDvrfMessage)
	v.SetDefault("signMessage", defaultSignMessage)
	v.SetDefault("payload", "")
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)

	flag.Uint16("max-signers", defaultMaxSigners, "number of DKG participants (n)")
	flag.Uint16("min-signers", defaultMinSigners, "signing threshold (t)")
	flag.String("dvrf-message", defaultDvrfMessage, "message evaluated by the DVRF round")
	flag.String("sign-message", defaultSignMessage, "message signed with FROST")
	flag.String("payload", "", "path of the JSON verification payload to export (empty = skip)")
	flag.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flag.String("log-output", defaultLogOutput, "log output (stdout, stderr or a file path)")
	flag.Parse()

	if err := v.BindPFlag("maxSigners", flag.Lookup("max-signers")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("minSigners", flag.Lookup("min-signers")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("dvrfMessage", flag.Lookup("dvrf-message")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("signMessage", flag.Lookup("sign-message")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("payload", flag.Lookup("payload")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("log.level", flag.Lookup("log-level")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("log.output", flag.Lookup("log-output")); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("DAVINCI_DVRF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
