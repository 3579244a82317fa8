package config

// loader.go - configuration loading from a YAML file and environment
// variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (LoadFromEnv)
//   3. Config file  (LoadFile)
//   4. Defaults   (defaults.go)

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ── Config file ──────────────────────────────────────────────────────

// LoadFile overlays the YAML document at path onto cfg.  Keys missing
// from the file keep their current value; unknown keys are an error.
// Durations are written as Go durations ("500ms", "2s").
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the NBC_ prefix.  Boolean values accept
// "1", "true", "yes" (case-insensitive).  Durations accept Go duration
// strings or a bare number of milliseconds.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty,
// well-formed values override the existing value.  Call it before CLI
// flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("NBC_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("NBC_PORT"); v > 0 {
		cfg.Port = v
	}
	if v := envInt("NBC_LOCAL_PORT"); v > 0 {
		cfg.LocalPort = v
	}
	if envBool("NBC_LISTEN") {
		cfg.Listen = true
	}
	if envBool("NBC_KEEP_OPEN") {
		cfg.KeepOpen = true
	}
	if v, ok := envDuration("NBC_DIAL_TIMEOUT"); ok {
		cfg.DialTimeout = v
	}
	if v := envInt("NBC_SOURCE_PORT"); v > 0 {
		cfg.SourcePort = v
	}
	if v, ok := envDuration("NBC_KEEP_ALIVE"); ok {
		cfg.KeepAlive = v
	}

	// Event loop
	if v := envInt("NBC_MAX_PACKET"); v > 0 {
		cfg.MaxPacketSize = v
	}
	if v, ok := envDuration("NBC_WORK_PERIOD"); ok {
		cfg.WorkPeriod = v
	}
	if v, ok := envDuration("NBC_POLL_PERIOD"); ok {
		cfg.PollPeriod = v
	}
	if v, ok := envDuration("NBC_SETTLE"); ok {
		cfg.SettleDelay = v
	}

	// Payloads
	if v := os.Getenv("NBC_CONNECT_MSG"); v != "" {
		cfg.ConnectMessage = v
	}
	if v := os.Getenv("NBC_WRITE_MSG"); v != "" {
		cfg.WriteMessage = v
	}

	// Output
	if v := envInt("NBC_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
	if envBool("NBC_STATS") {
		cfg.Stats = true
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, true
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}
