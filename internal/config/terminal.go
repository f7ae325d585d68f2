package config

import (
	"fmt"
	"strings"
	"time"
)

// TerminalConfig configures one kitchen display terminal session.
type TerminalConfig struct {
	ServerURL      string
	Destino        string
	APIKey         string
	PIN            string
	RequestTimeout time.Duration
	AlertTTL       time.Duration
	UrgentAfter    time.Duration
	ReconnectMin   time.Duration
	ReconnectMax   time.Duration
	Logging        LoggingConfig
}

// LoadTerminal reads terminal settings from the environment. Command line flags
// are applied on top by cmd/terminal.
func LoadTerminal() (*TerminalConfig, error) {
	cfg := &TerminalConfig{
		ServerURL: envOr("KDS_SERVER_URL", "http://localhost:5000"),
		Destino:   strings.ToLower(envOr("KDS_DESTINO", "")),
		APIKey:    envOr("KDS_API_KEY", ""),
		PIN:       envOr("KDS_PIN", ""),
		Logging: LoggingConfig{
			Directory: envOr("LOG_DIR", "./logs"),
			Level:     envOr("LOG_LEVEL", "info"),
			Format:    envOr("LOG_FORMAT", "text"),
		},
	}
	durations := []struct {
		key      string
		fallback time.Duration
		target   *time.Duration
	}{
		{"KDS_REQUEST_TIMEOUT", 10 * time.Second, &cfg.RequestTimeout},
		{"KDS_ALERT_TTL", 8 * time.Second, &cfg.AlertTTL},
		{"KDS_URGENT_AFTER", 15 * time.Minute, &cfg.UrgentAfter},
		{"KDS_RECONNECT_MIN", 500 * time.Millisecond, &cfg.ReconnectMin},
		{"KDS_RECONNECT_MAX", 15 * time.Second, &cfg.ReconnectMax},
	}
	for _, d := range durations {
		v, err := durationFromEnv(d.key, d.fallback)
		if err != nil {
			return nil, err
		}
		*d.target = v
	}
	return cfg, nil
}

// Validate checks the settings that can only be verified once flags are merged.
func (c *TerminalConfig) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return fmt.Errorf("server url is required")
	}
	if c.Destino == "" && c.PIN == "" {
		return fmt.Errorf("either a destination or a PIN is required")
	}
	if c.PIN != "" && !isDigits(c.PIN, 4) {
		return fmt.Errorf("pin must be exactly 4 digits")
	}
	if c.ReconnectMax < c.ReconnectMin {
		return fmt.Errorf("reconnect max %s is below reconnect min %s", c.ReconnectMax, c.ReconnectMin)
	}
	return nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
