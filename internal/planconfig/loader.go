package planconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Loader reads a PlanDocument from a config file, SHUFFLEPLAN_-prefixed
// environment variables, and explicit overrides, in that order of
// increasing precedence. Grounded on the teacher pack's
// ViperConfigManager: a *viper.Viper configured with SetEnvPrefix,
// AutomaticEnv, and a "." -> "_" key replacer, decoded through mapstructure
// and checked with go-playground/validator.
type Loader struct {
	v         *viper.Viper
	validator *validator.Validate
}

// NewLoader builds a Loader. configPath, if non-empty, is read as the
// config file (format inferred from its extension); if empty, no file is
// read and only environment variables and overrides apply.
func NewLoader(configPath string) (*Loader, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	}
	v.SetEnvPrefix("SHUFFLEPLAN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if configPath != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("planconfig: reading config file: %w", err)
			}
		}
	}

	return &Loader{v: v, validator: validator.New()}, nil
}

// setDefaults registers every known scalar config key so AutomaticEnv can
// pick up its override, and so AllSettings() reports it even when no config
// file or override sets it. Mirrors the teacher pack's own setDefaults(v)
// convention of pre-registering every field the entities.Config struct
// carries.
func setDefaults(v *viper.Viper) {
	v.SetDefault("coordinator.target_bytes", uint64(0))
	v.SetDefault("coordinator.is_two_input_join", false)
	v.SetDefault("coordinator.broadcast.enabled", false)
	v.SetDefault("coordinator.broadcast.threshold_bytes", uint64(0))
}

// Set applies an explicit override, taking precedence over both the config
// file and the environment. Typically used to thread CLI flag values
// through before Load.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Load decodes and validates the full PlanDocument. The intermediate
// viper.AllSettings() map is decoded via mapstructure directly (rather than
// viper's own Unmarshal) so that numeric byte counts read from JSON/YAML
// (which surface as float64) are weakly converted into the document's
// uint64/int fields.
func (l *Loader) Load() (PlanDocument, error) {
	var doc PlanDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return PlanDocument{}, fmt.Errorf("planconfig: building decoder: %w", err)
	}
	if err := decoder.Decode(l.v.AllSettings()); err != nil {
		return PlanDocument{}, fmt.Errorf("planconfig: decoding document: %w", err)
	}

	if err := l.validator.Struct(&doc); err != nil {
		return PlanDocument{}, fmt.Errorf("planconfig: invalid document: %w", err)
	}
	for i, exch := range doc.Exchanges {
		if _, err := exch.ToMapOutputStatistics(); err != nil {
			return PlanDocument{}, fmt.Errorf("planconfig: exchange %d: %w", i, err)
		}
	}
	if doc.Coordinator.Broadcast.Enabled && len(doc.Exchanges) != 2 {
		return PlanDocument{}, fmt.Errorf("planconfig: broadcast requires exactly two exchanges, got %d", len(doc.Exchanges))
	}
	return doc, nil
}
