// Package config resolves zimhide settings from an optional YAML file, with
// named profiles layered over the base keys. CLI flags override the result
// per invocation.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"
)

const (
	// EnvConfigPath names the settings file when --config is not given.
	EnvConfigPath = "ZIMHIDE_CONFIG"
	// EnvProfile selects a profile when --profile is not given.
	EnvProfile = "ZIMHIDE_PROFILE"
)

// Settings is the resolved configuration a verb starts from.
type Settings struct {
	Method        string   `mapstructure:"method"`
	BitsPerSample int      `mapstructure:"bits_per_sample"`
	Channel       string   `mapstructure:"channel"`
	KeyFile       string   `mapstructure:"default_key_path"`
	PubKeyFile    string   `mapstructure:"default_pubkey_path"`
	Player        string   `mapstructure:"player"`
	AuditLog      string   `mapstructure:"audit_log"`
	Recipients    []string `mapstructure:"recipients"`
}

// Defaults returns the built-in stego settings used when no file sets them.
func Defaults() Settings {
	return Settings{Method: "lsb", BitsPerSample: 1, Channel: "both"}
}

var active *Settings

// Load resolves settings for this process and caches them for Active. The
// file is found via the explicit path, then ZIMHIDE_CONFIG, then a
// .zimhide.yaml in the home or working directory; a missing file leaves the
// defaults in place. A profile (explicit or ZIMHIDE_PROFILE) merges its keys
// over the base before decoding.
func Load(path, profile string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	def := Defaults()
	v.SetDefault("method", def.Method)
	v.SetDefault("bits_per_sample", def.BitsPerSample)
	v.SetDefault("channel", def.Channel)

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".zimhide")
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil && !missingConfig(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if profile == "" {
		profile = os.Getenv(EnvProfile)
	}
	if profile != "" {
		if sub := v.Sub("profiles." + profile); sub != nil {
			if err := v.MergeConfigMap(sub.AllSettings()); err != nil {
				return nil, fmt.Errorf("apply profile %s: %w", profile, err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	active = &s
	return active, nil
}

// missingConfig distinguishes "no settings file" from a broken one.
func missingConfig(err error) bool {
	if errors.As(err, new(viper.ConfigFileNotFoundError)) {
		return true
	}
	var pathErr *fs.PathError
	return errors.As(err, &pathErr) && errors.Is(pathErr.Err, fs.ErrNotExist)
}

// Active returns the settings Load resolved, or nil before any Load.
func Active() *Settings {
	return active
}

// SetActive replaces the cached settings. Tests use it to pin a state.
func SetActive(s *Settings) {
	active = s
}
