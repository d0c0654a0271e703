// Package config provides configuration helpers and TOML parsing.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/verte-zerg/checkcard/internal/model"
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "CHECKCARD_"

// Defaults used when neither file, env nor flags set a value.
const (
	DefaultDriver         = "sqlite"
	DefaultModel          = "gpt-4o-mini"
	DefaultTimeoutSeconds = 60
	DefaultLanguage       = "Portuguese"
	DefaultLogLevel       = "info"
)

// FlagKeys maps CLI flag names to config keys.
var FlagKeys = map[string]string{
	"store":       "store.driver",
	"store-path":  "store.path",
	"ai-model":    "ai.model",
	"ai-base-url": "ai.base_url",
	"log-level":   "log.level",
}

var validate = validator.New()

// tomlParser adapts BurntSushi/toml to the koanf.Parser interface.
type tomlParser struct{}

func (tomlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (tomlParser) Marshal(m map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return tomlParser{}
	}
}

// Load resolves the configuration from built-in defaults, the config file at
// path, CHECKCARD_* environment variables and changed flags, in that order.
// Missing file is not an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (model.Config, error) {
	if path == "" {
		return model.Config{}, fmt.Errorf("config path is empty")
	}
	k := koanf.New(".")
	defaults := map[string]interface{}{
		"store.driver":       DefaultDriver,
		"ai.model":           DefaultModel,
		"ai.timeout_seconds": DefaultTimeoutSeconds,
		"ai.language":        DefaultLanguage,
		"log.level":          DefaultLogLevel,
	}
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return model.Config{}, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return model.Config{}, fmt.Errorf("failed to stat config: %w", err)
		}
	} else if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return model.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return model.Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return model.Config{}, fmt.Errorf("failed to apply flags: %w", err)
		}
	}

	var cfg model.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return model.Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath(cfg.Store.Driver)
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = DefaultLogPath()
	}
	if err := validate.Struct(cfg); err != nil {
		return model.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey turns CHECKCARD_AI_API_KEY into ai.api_key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}
