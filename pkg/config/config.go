// Package config loads corruption settings, quality objectives and
// expectation suites from files and the environment.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v3"

	"github.com/wdm0006/baddata/pkg/corrupt"
	"github.com/wdm0006/baddata/pkg/quality"
	"github.com/wdm0006/baddata/pkg/transform/validate"
)

// EnvPrefix prefixes the environment overrides, e.g. BADDATA_FRESHNESS.
const EnvPrefix = "BADDATA"

var ErrInvalidValue = errors.New("invalid configuration value")

// DecodeFile decodes a JSON, YAML or TOML file into v by extension.
func DecodeFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, v)
	case ".toml":
		err = toml.Unmarshal(b, v)
	default:
		return fmt.Errorf("%s: unsupported config format", path)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads ./.env into the process environment when it exists.
// Variables already set are left alone.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// LoadCorruption returns the corruption configuration: defaults, then the
// file at path (if any), then BADDATA_<RULE> environment variables. Unknown
// keys are skipped, logged and returned.
func LoadCorruption(path string) (corrupt.Config, []string, error) {
	cfg := corrupt.DefaultConfig()
	var ignored []string

	if path != "" {
		raw, err := readSettings(path)
		if err != nil {
			return nil, nil, err
		}
		values, unknown, err := toPercents(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg, _ = cfg.Override(values)
		ignored = append(ignored, unknown...)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	env := map[string]int{}
	for _, rule := range corrupt.RuleNames() {
		if err := v.BindEnv(rule); err != nil {
			return nil, nil, err
		}
		if !v.IsSet(rule) {
			continue
		}
		n, err := percentValue(v.GetString(rule))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s_%s=%q", ErrInvalidValue, EnvPrefix, strings.ToUpper(rule), v.GetString(rule))
		}
		env[rule] = n
	}
	cfg, _ = cfg.Override(env)

	sort.Strings(ignored)
	for _, k := range ignored {
		log.WithField("key", k).Warn("ignoring unknown corruption setting")
	}
	log.WithField("config", cfg.String()).Debug("loaded corruption config")
	return cfg, ignored, nil
}

// readSettings returns the flat key/value pairs of a corruption file.
// Properties and INI files go through viper. A properties file carrying
// section headers is read as INI; keys under [DEFAULT] are lifted to the
// top level and keys of other sections become "section.key".
func readSettings(path string) (map[string]any, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml", ".toml":
		raw := map[string]any{}
		if err := DecodeFile(path, &raw); err != nil {
			return nil, err
		}
		return flatten(raw)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	switch ext {
	case ".properties", ".props", ".prop":
		v.SetConfigType("properties")
		if hasSection(b) {
			v.SetConfigType("ini")
		}
	case ".ini", ".cfg", ".conf":
		v.SetConfigType("ini")
	default:
		return nil, fmt.Errorf("%s: unsupported config format", path)
	}
	if err := v.ReadConfig(bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return flatten(v.AllSettings())
}

func hasSection(b []byte) bool {
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			return true
		}
	}
	return false
}

// flatten lowercases keys. Two keys that differ only in case are rejected.
func flatten(raw map[string]any) (map[string]any, error) {
	out := map[string]any{}
	set := func(k string, v any) error {
		if _, dup := out[k]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidValue, k)
		}
		out[k] = v
		return nil
	}
	for k, v := range raw {
		key := strings.ToLower(k)
		sub, ok := v.(map[string]any)
		if !ok {
			if err := set(key, v); err != nil {
				return nil, err
			}
			continue
		}
		for sk, sv := range sub {
			sk = strings.ToLower(sk)
			if key != "default" {
				sk = key + "." + sk
			}
			if err := set(sk, sv); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func toPercents(raw map[string]any) (map[string]int, []string, error) {
	out := make(map[string]int, len(raw))
	var unknown []string
	for k, v := range raw {
		if _, err := corrupt.Lookup(k); err != nil {
			unknown = append(unknown, k)
			continue
		}
		n, err := percentValue(v)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s=%v", ErrInvalidValue, k, v)
		}
		out[k] = n
	}
	return out, unknown, nil
}

// percentValue accepts integers, whole floats and decimal strings.
func percentValue(v any) (int, error) {
	if s, ok := v.(string); ok {
		return strconv.Atoi(strings.TrimSpace(s))
	}
	if f, ok := v.(float64); ok && f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number: %v", f)
	}
	return cast.ToIntE(v)
}

// LoadSLO reads quality objectives; sections missing from the file keep
// their defaults. An empty path yields the defaults.
func LoadSLO(path string) (quality.SLO, error) {
	var slo quality.SLO
	if path != "" {
		if err := DecodeFile(path, &slo); err != nil {
			return quality.SLO{}, err
		}
	}
	return slo.WithDefaults(), nil
}

// LoadSuite reads an expectation suite.
func LoadSuite(path string) (validate.SuiteSpec, error) {
	var s validate.SuiteSpec
	if err := DecodeFile(path, &s); err != nil {
		return s, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}
