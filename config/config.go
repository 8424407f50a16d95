// Package config loads the JSON configuration for the pairing CLI demo:
// a Duration type that accepts either a Go duration string or a
// millisecond integer, and a Load/validate split for the pairing
// role, transport, and management fields.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strings"
	"time"
)

// Duration unmarshals from either a JSON string ("30s") or a bare integer
// of milliseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty duration")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			d.Duration = 0
			return nil
		}
		dur, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration string %q: %w", s, err)
		}
		d.Duration = dur
		return nil
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	d.Duration = time.Duration(ms) * time.Millisecond
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// TransportConfig selects and parameterizes the Sender/Receiver pair the
// pairing driver runs against.
type TransportConfig struct {
	Kind     string `json:"kind"` // "memory" or "websocket"
	Endpoint string `json:"endpoint,omitempty"`
	Listen   string `json:"listen,omitempty"`
}

// Config is the pairing CLI demo's configuration file.
type Config struct {
	Role               string           `json:"role"` // "initiator" or "responder"
	ApplicationName    string           `json:"applicationName"`
	ApplicationVersion string           `json:"applicationVersion"`
	ShardID            string           `json:"shardId"`
	Timeout            Duration         `json:"timeout"`
	QRPath             string           `json:"qrPath,omitempty"`
	Transport          TransportConfig  `json:"transport"`
	Management         ManagementConfig `json:"management"`
	Logging            LoggingConfig    `json:"logging"`
}

// ManagementConfig configures the introspection HTTP endpoint.
type ManagementConfig struct {
	Bind string   `json:"bind"`
	ACL  []string `json:"acl,omitempty"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `json:"level"`
	Output string `json:"output"`
}

// Load reads and validates a Config from path, or from stdin if path is "-".
func Load(path string) (*Config, error) {
	var reader io.ReadCloser
	if path == "-" {
		reader = io.NopCloser(os.Stdin)
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		reader = file
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Role = strings.ToLower(strings.TrimSpace(c.Role))
	switch c.Role {
	case "initiator", "responder":
	default:
		return fmt.Errorf("unsupported role %q", c.Role)
	}

	if strings.TrimSpace(c.ApplicationName) == "" {
		return errors.New("applicationName must be provided")
	}
	if strings.TrimSpace(c.ApplicationVersion) == "" {
		return errors.New("applicationVersion must be provided")
	}
	if strings.TrimSpace(c.ShardID) == "" {
		return errors.New("shardId must be provided")
	}

	if c.Timeout.Duration <= 0 {
		c.Timeout.Duration = 60 * time.Second
	}
	if c.Timeout.Duration < time.Second {
		return errors.New("timeout must be at least 1 second")
	}

	c.Transport.Kind = strings.ToLower(strings.TrimSpace(c.Transport.Kind))
	if c.Transport.Kind == "" {
		c.Transport.Kind = "memory"
	}
	switch c.Transport.Kind {
	case "memory":
	case "websocket":
		if c.Role == "responder" && c.Transport.Listen == "" {
			return errors.New("websocket transport requires transport.listen for the responder")
		}
		if c.Role == "initiator" && c.Transport.Endpoint == "" {
			return errors.New("websocket transport requires transport.endpoint for the initiator")
		}
	default:
		return fmt.Errorf("unsupported transport kind %q", c.Transport.Kind)
	}

	if c.Role == "initiator" && c.QRPath == "" {
		return errors.New("initiator role requires qrPath pointing at the scanned QR")
	}

	if c.Management.Bind == "" {
		c.Management.Bind = "127.0.0.1:7777"
	}
	if len(c.Management.ACL) == 0 {
		c.Management.ACL = []string{"127.0.0.0/8"}
	}
	for _, entry := range c.Management.ACL {
		if _, err := netip.ParsePrefix(entry); err != nil {
			return fmt.Errorf("invalid management acl entry %q: %w", entry, err)
		}
	}

	return nil
}

// NormalisedLevel returns the configured log level, trimmed and lowercased.
func (c *Config) NormalisedLevel() string {
	return strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

// ManagementPrefixes parses the management ACL entries already validated by Load.
func (c *Config) ManagementPrefixes() []netip.Prefix {
	out := make([]netip.Prefix, 0, len(c.Management.ACL))
	for _, entry := range c.Management.ACL {
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			out = append(out, prefix)
		}
	}
	return out
}
