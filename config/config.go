// Package config defines the runtime configuration for nbclient and
// the helpers that parse and validate it.
package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"nbclient/internal/errors"
)

// Config holds every tuneable for a single nbclient run.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Host        string        `yaml:"host"`       // optional auto-connect target
	Port        int           `yaml:"port"`       // auto-connect port
	LocalPort   int           `yaml:"local_port"` // -p: echo peer listen port
	Listen      bool          `yaml:"listen"`     // run as the echo peer
	KeepOpen    bool          `yaml:"keep_open"`  // echo peer serves more than one client
	DialTimeout time.Duration `yaml:"dial_timeout"`
	SourcePort  int           `yaml:"source_port"` // client source-port binding (0 = ephemeral)
	KeepAlive   time.Duration `yaml:"keep_alive"`  // TCP keep-alive period (0 = OS default, <0 = off)

	// ── Event loop ───────────────────────────────────────────────────
	MaxPacketSize int           `yaml:"max_packet_size"`
	WorkPeriod    time.Duration `yaml:"work_period"`
	PollPeriod    time.Duration `yaml:"poll_period"`
	SettleDelay   time.Duration `yaml:"settle_delay"`

	// ── Payloads (hex) ───────────────────────────────────────────────
	ConnectMessage string `yaml:"connect_message"`
	WriteMessage   string `yaml:"write_message"`

	// ── Output ───────────────────────────────────────────────────────
	Verbose int  `yaml:"verbose"`
	Stats   bool `yaml:"stats"`
	DryRun  bool `yaml:"-"`
}

// ── Payloads ─────────────────────────────────────────────────────────

// ParsePayload decodes a hex string such as "02 fd 00 05" or
// "02:fd:00:05".  Whitespace and colons between bytes are ignored.
func ParsePayload(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', ':':
			return -1
		}
		return r
	}, s)
	if clean == "" {
		return nil, errors.ErrEmptyPayload
	}
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload %q: %w", s, err)
	}
	return b, nil
}

// Payloads decodes the connect and write messages.
func (c *Config) Payloads() (connect, write []byte, err error) {
	connect, err = c.payload("connect-msg", c.ConnectMessage)
	if err != nil {
		return nil, nil, err
	}
	write, err = c.payload("write-msg", c.WriteMessage)
	if err != nil {
		return nil, nil, err
	}
	return connect, write, nil
}

func (c *Config) payload(field, s string) ([]byte, error) {
	b, err := ParsePayload(s)
	if err != nil {
		return nil, &errors.ConfigError{
			Field:   field,
			Value:   s,
			Message: err.Error(),
			Hint:    "give the bytes as hex, e.g. \"02 fd 00 05\"",
		}
	}
	if len(b) > c.MaxPacketSize {
		return nil, &errors.ConfigError{
			Field:   field,
			Value:   s,
			Message: fmt.Sprintf("%v: %d > %d bytes", errors.ErrPayloadTooLarge, len(b), c.MaxPacketSize),
			Hint:    "raise --max-packet or shorten the message",
		}
	}
	return b, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
// Errors are *errors.ConfigError.
func (c *Config) Validate() error {
	if c.MaxPacketSize < 1 || c.MaxPacketSize > MaxPacketSizeLimit {
		return &errors.ConfigError{
			Field:   "max-packet",
			Value:   c.MaxPacketSize,
			Message: fmt.Sprintf("must be between 1 and %d", MaxPacketSizeLimit),
		}
	}

	for _, d := range []struct {
		field string
		val   time.Duration
	}{
		{"work-period", c.WorkPeriod},
		{"poll-period", c.PollPeriod},
	} {
		if d.val <= 0 {
			return &errors.ConfigError{Field: d.field, Value: d.val, Message: "must be positive"}
		}
	}
	if c.SettleDelay < 0 {
		return &errors.ConfigError{Field: "settle", Value: c.SettleDelay, Message: "must not be negative"}
	}
	if c.DialTimeout < 0 {
		return &errors.ConfigError{Field: "dial-timeout", Value: c.DialTimeout, Message: "must not be negative"}
	}

	if c.Listen {
		if c.LocalPort == 0 {
			return &errors.ConfigError{
				Field:   "local-port",
				Message: "listen mode requires a port",
				Hint:    "nbclient -l -p 5555",
			}
		}
		if err := checkPort("local-port", c.LocalPort); err != nil {
			return err
		}
		if c.Host != "" {
			return &errors.ConfigError{
				Field:   "listen",
				Message: "listen mode does not take a destination",
				Hint:    "drop the host and port, or drop -l",
			}
		}
		return nil
	}

	if (c.Host == "") != (c.Port == 0) {
		return &errors.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "host and port must be given together",
			Hint:    "nbclient 127.0.0.1 5555, or neither to connect with 'c <host> <port>'",
		}
	}
	if c.Port != 0 {
		if err := checkPort("port", c.Port); err != nil {
			return err
		}
	}
	if c.SourcePort != 0 {
		if err := checkPort("source-port", c.SourcePort); err != nil {
			return err
		}
	}

	_, _, err := c.Payloads()
	return err
}

func checkPort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &errors.ConfigError{Field: field, Value: port, Message: "out of range 1-65535"}
	}
	return nil
}
