// Package config loads and validates the description of a load test run.
//
// Settings are merged from built-in defaults, an optional YAML or JSON file,
// VOLLEY_* environment variables and command-line flags. File and environment
// values arrive from viper untyped and are coerced with spf13/cast.
package config

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// settings is one level of a viper settings tree with lower-cased keys.
type settings map[string]any

func newSettings(raw any) (settings, error) {
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, err
	}
	out := make(settings, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out, nil
}

// find returns the value stored under the first alias present. Every
// alias is tried with '-' and '_' treated alike.
func (s settings) find(aliases ...string) (any, bool) {
	for _, alias := range aliases {
		key := strings.ToLower(alias)
		if v, ok := s[key]; ok {
			return v, true
		}
		if v, ok := s[strings.ReplaceAll(key, "_", "-")]; ok {
			return v, true
		}
	}
	return nil, false
}

// The set* helpers leave dst untouched when no alias is present and report
// conversion failures under the first alias.

func (s settings) setString(dst *string, aliases ...string) error {
	raw, ok := s.find(aliases...)
	if !ok {
		return nil
	}
	v, err := cast.ToStringE(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", aliases[0], err)
	}
	*dst = strings.TrimSpace(v)
	return nil
}

func (s settings) setInt(dst *int, aliases ...string) error {
	raw, ok := s.find(aliases...)
	if !ok {
		return nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", aliases[0], err)
	}
	*dst = v
	return nil
}

func (s settings) setBool(dst *bool, aliases ...string) error {
	raw, ok := s.find(aliases...)
	if !ok {
		return nil
	}
	v, err := cast.ToBoolE(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", aliases[0], err)
	}
	*dst = v
	return nil
}

func (s settings) setFloat(dst *float64, aliases ...string) error {
	raw, ok := s.find(aliases...)
	if !ok {
		return nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", aliases[0], err)
	}
	*dst = v
	return nil
}

// setTimeout accepts Go duration strings ("1m30s") and bare whole numbers,
// which count seconds.
func (s settings) setTimeout(dst *time.Duration, aliases ...string) error {
	raw, ok := s.find(aliases...)
	if !ok {
		return nil
	}
	v, err := toTimeout(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", aliases[0], err)
	}
	*dst = v
	return nil
}

func toTimeout(raw any) (time.Duration, error) {
	switch v := raw.(type) {
	case time.Duration:
		return v, nil
	case string:
		v = strings.TrimSpace(v)
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		return time.ParseDuration(v)
	}
	secs, err := cast.ToIntE(raw)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// setList accepts a sequence or a single scalar. A scalar becomes a
// one-element list rather than being split on whitespace.
func (s settings) setList(dst *[]string, aliases ...string) error {
	raw, ok := s.find(aliases...)
	if !ok {
		return nil
	}
	if one, isString := raw.(string); isString {
		*dst = []string{one}
		return nil
	}
	v, err := cast.ToStringSliceE(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", aliases[0], err)
	}
	*dst = v
	return nil
}

// mergeHeaders adds the header mapping to dst with canonicalized names.
func (s settings) mergeHeaders(dst map[string]string, aliases ...string) error {
	raw, ok := s.find(aliases...)
	if !ok {
		return nil
	}
	hdrs, err := cast.ToStringMapStringE(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", aliases[0], err)
	}
	for k, v := range hdrs {
		name := strings.TrimSpace(k)
		if name == "" {
			return fmt.Errorf("%s: header name cannot be empty", aliases[0])
		}
		dst[http.CanonicalHeaderKey(name)] = v
	}
	return nil
}
