package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrExists is returned by SaveConfig when the file exists and overwriting
// was not requested.
var ErrExists = errors.New("config file already exists")

// SampleConfig returns a starter configuration with a few rules.
func SampleConfig() *Config {
	cfg := DefaultConfig()
	cfg.Replacements = map[string]string{
		"btw":  "by the way",
		"omg":  "oh my god",
		"brb":  "be right back",
		"ty":   "thank you",
		"imho": "in my humble opinion",
	}
	return cfg
}

// SaveConfig writes cfg to path in the format its extension names (TOML
// when unknown).
func SaveConfig(cfg *Config, path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		var buf bytes.Buffer
		buf.WriteString("# textreplacer configuration\n\n")
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
