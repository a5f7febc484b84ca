// Package config loads the engine/sources/connectors/sinks TOML contract
// described in §6, applying defaults and validation before the engine
// consumes the resolved structs.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"wparse/internal/errors"
)

// EngineConfig mirrors the `wparse.toml` field contract.
type EngineConfig struct {
	General struct {
		WorkRoot string `toml:"work_root"`
	} `toml:"general"`
	Rule struct {
		Root string `toml:"root"`
	} `toml:"rule"`
	Source struct {
		Root  string `toml:"root"`
		Wpsrc string `toml:"wpsrc"`
	} `toml:"source"`
	Sink struct {
		Root     string `toml:"root"`
		Business string `toml:"business"`
		Infra    string `toml:"infra"`
	} `toml:"sink"`
	OML struct {
		Root string `toml:"root"`
		Repo string `toml:"repo"`
	} `toml:"oml"`
}

// SourceItem is one entry of `wpsrc.toml`.
type SourceItem struct {
	Key     string            `toml:"key"`
	Enable  bool              `toml:"enable"`
	Connect string            `toml:"connect"`
	Tags    []string          `toml:"tags"`
	Params  map[string]string `toml:"params"`
}

// SourcesConfig is the full `wpsrc.toml` contract.
type SourcesConfig struct {
	Items []SourceItem `toml:"source"`
}

// ConnectorConfig is one per-kind connector TOML document.
type ConnectorConfig struct {
	ID            string            `toml:"id"`
	Type          string            `toml:"type"` // file, tcp, syslog, test_rescue, kafka
	AllowOverride []string          `toml:"allow_override"`
	Params        map[string]string `toml:"params"`
}

// SinkConfig describes one sink instance.
type SinkConfig struct {
	Name    string            `toml:"name"`
	Backend string            `toml:"backend"`
	Fmt     string            `toml:"fmt"` // json, kv, raw
	Params  map[string]string `toml:"params"`
}

func applyDefaults(c *EngineConfig) {
	if c.General.WorkRoot == "" {
		c.General.WorkRoot = "."
	}
	if c.Sink.Business == "" {
		c.Sink.Business = "business.d"
	}
	if c.Sink.Infra == "" {
		c.Sink.Infra = "infra.d"
	}
	if c.Source.Wpsrc == "" {
		c.Source.Wpsrc = "wpsrc.toml"
	}
}

func validate(c *EngineConfig) error {
	if c.Rule.Root == "" {
		return errors.ConfigError("validate", "rule.root must be set")
	}
	if c.Source.Root == "" {
		return errors.ConfigError("validate", "source.root must be set")
	}
	return nil
}

// LoadEngineConfig reads path as TOML into an EngineConfig, applying
// defaults and validation.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfigNotFound, "config", "LoadEngineConfig", "read failed").Wrap(err)
	}
	var c EngineConfig
	if _, err := toml.Decode(string(b), &c); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid, "config", "LoadEngineConfig", "toml decode failed").Wrap(err)
	}
	applyDefaults(&c)
	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadSourcesConfig reads `wpsrc.toml`-shaped content.
func LoadSourcesConfig(path string) (*SourcesConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfigNotFound, "config", "LoadSourcesConfig", "read failed").Wrap(err)
	}
	var c SourcesConfig
	if _, err := toml.Decode(string(b), &c); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid, "config", "LoadSourcesConfig", "toml decode failed").Wrap(err)
	}
	return &c, nil
}

// LoadConnectorConfig reads one per-kind connector document.
func LoadConnectorConfig(path string) (*ConnectorConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfigNotFound, "config", "LoadConnectorConfig", "read failed").Wrap(err)
	}
	var c ConnectorConfig
	if _, err := toml.Decode(string(b), &c); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid, "config", "LoadConnectorConfig", "toml decode failed").Wrap(err)
	}
	return &c, nil
}
