package config

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. DWETL_CLEANING_MISSING_THRESHOLD.
const EnvPrefix = "DWETL"

// Load builds a Pipeline from the defaults, then the file at path (YAML or
// JSON by extension; empty path skips it), then DWETL_* environment
// variables.
func Load(path string) (Pipeline, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	base, err := yaml.Marshal(Default())
	if err != nil {
		return Pipeline{}, fmt.Errorf("config: encode defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return Pipeline{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Pipeline{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var p Pipeline
	if err := v.Unmarshal(&p); err != nil {
		return Pipeline{}, fmt.Errorf("config: decode: %w", err)
	}
	return p, nil
}

// Marshal renders p as YAML.
func Marshal(p Pipeline) ([]byte, error) {
	return yaml.Marshal(p)
}

// redactDSN masks the password in URL-style DSNs and in key=value DSNs.
func redactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
			return u.String()
		}
	}
	parts := strings.Split(dsn, ";")
	for i, p := range parts {
		k, _, ok := strings.Cut(p, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), "password") {
			parts[i] = k + "=******"
		}
	}
	return strings.Join(parts, ";")
}
