package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so CLI flags, the config file and
// environment loading agree on them.

const (
	// DefaultMaxPacketSize is the receive buffer capacity and the
	// largest byte count a read may request.
	DefaultMaxPacketSize = 1024

	// MaxPacketSizeLimit caps --max-packet.
	MaxPacketSizeLimit = 64 * 1024

	// DefaultWorkPeriod is the interval between simulated jobs.
	DefaultWorkPeriod = 2000 * time.Millisecond

	// DefaultPollPeriod is how often the dispatcher checks for a command.
	DefaultPollPeriod = 500 * time.Millisecond

	// DefaultSettleDelay holds back the input monitor so its banner
	// does not interleave with startup output.
	DefaultSettleDelay = 3 * time.Second

	// DefaultDialTimeout bounds a single connect attempt.
	DefaultDialTimeout = 10 * time.Second

	// DefaultConnectMessage is sent automatically after every connect.
	DefaultConnectMessage = "02 fd 00 05 00 00 00 07 0f 0d 00 00 00 00 00"

	// DefaultWriteMessage is sent on every write command.
	DefaultWriteMessage = "02 fd 80 01 00 00 00 07 0f 0d aa bb 22 11 22"
)

// Default returns a Config populated with every default.
func Default() *Config {
	return &Config{
		MaxPacketSize:  DefaultMaxPacketSize,
		WorkPeriod:     DefaultWorkPeriod,
		PollPeriod:     DefaultPollPeriod,
		SettleDelay:    DefaultSettleDelay,
		DialTimeout:    DefaultDialTimeout,
		ConnectMessage: DefaultConnectMessage,
		WriteMessage:   DefaultWriteMessage,
	}
}
