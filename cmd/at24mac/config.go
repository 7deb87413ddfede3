package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-at24mac/at24mac"
	"github.com/moffa90/go-at24mac/protocol"
)

// Config is the YAML configuration file. Flags override its values.
type Config struct {
	Bus            string        `yaml:"bus"`
	AddressPins    uint8         `yaml:"address_pins"`
	Model          string        `yaml:"model"`
	WriteCycle     time.Duration `yaml:"write_cycle"`
	AckPollTimeout time.Duration `yaml:"ack_poll_timeout"`
	MaxReadLength  int           `yaml:"max_read_length"`
	SkipUnchanged  bool          `yaml:"skip_unchanged"`
	Log            LogConfig     `yaml:"log"`
}

// LogConfig selects the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

func defaultConfig() Config {
	return Config{
		Bus:           "/dev/i2c-1",
		AddressPins:   protocol.DefaultAddressPins,
		Model:         "402",
		WriteCycle:    protocol.WriteCycleTime,
		SkipUnchanged: true,
		Log:           LogConfig{Level: "info"},
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration. It does not mutate it.
func (c Config) Validate() error {
	if c.Bus == "" {
		return fmt.Errorf("bus must not be empty")
	}
	if c.AddressPins > protocol.AddressPinsMask {
		return fmt.Errorf("address_pins must be 0-%d, got %d", protocol.AddressPinsMask, c.AddressPins)
	}
	if _, err := protocol.ParseModel(c.Model); err != nil {
		return err
	}
	if c.WriteCycle < 0 {
		return fmt.Errorf("write_cycle must not be negative")
	}
	if c.AckPollTimeout < 0 {
		return fmt.Errorf("ack_poll_timeout must not be negative")
	}
	if c.MaxReadLength < 0 {
		return fmt.Errorf("max_read_length must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// deviceOptions translates the configuration into device options.
// Call Validate first.
func (c Config) deviceOptions() []at24mac.Option {
	model, _ := protocol.ParseModel(c.Model)
	return []at24mac.Option{
		at24mac.WithModel(model),
		at24mac.WithAddressPins(c.AddressPins),
		at24mac.WithWriteCycle(c.WriteCycle),
		at24mac.WithAckPolling(c.AckPollTimeout),
		at24mac.WithMaxReadLength(c.MaxReadLength),
		at24mac.WithSkipUnchanged(c.SkipUnchanged),
	}
}
