package core

import (
	"fmt"
	"strconv"

	"nbclient/config"
	"nbclient/internal/client"
	"nbclient/internal/metrics"
	"nbclient/internal/transport"
	"nbclient/util"
)

// Build constructs the appropriate Mode from the given configuration.
// cfg must already be validated.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	if cfg.Listen {
		return buildEcho(cfg, logger), nil
	}
	return buildClient(cfg, logger)
}

// ── mode builders ────────────────────────────────────────────────────

func buildClient(cfg *config.Config, logger *util.Logger) (Mode, error) {
	connectMsg, writeMsg, err := cfg.Payloads()
	if err != nil {
		return nil, err
	}

	m := &ClientMode{
		Dialer: &transport.TCPDialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
			LocalPort: cfg.SourcePort,
		},
		Options: client.Options{
			MaxPacketSize:  cfg.MaxPacketSize,
			ConnectMessage: connectMsg,
			WriteMessage:   writeMsg,
			DialTimeout:    cfg.DialTimeout,
		},
		WorkPeriod:  cfg.WorkPeriod,
		PollPeriod:  cfg.PollPeriod,
		SettleDelay: cfg.SettleDelay,
		Logger:      logger,
		Metrics:     metrics.New(),
		Stats:       cfg.Stats || cfg.Verbose >= 2,
	}
	if cfg.Host != "" {
		m.Host, m.Port = cfg.Host, strconv.Itoa(cfg.Port)
	}
	return m, nil
}

func buildEcho(cfg *config.Config, logger *util.Logger) Mode {
	return &EchoMode{
		Address:  fmt.Sprintf(":%d", cfg.LocalPort),
		KeepOpen: cfg.KeepOpen,
		Logger:   logger,
		Metrics:  metrics.New(),
		Stats:    cfg.Stats || cfg.Verbose >= 2,
	}
}
