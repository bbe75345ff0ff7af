package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable names, e.g. VOLLEY_CONCURRENCY.
const EnvPrefix = "VOLLEY"

// ErrHelpRequested is returned when nothing was configured and usage should be shown.
var ErrHelpRequested = errors.New("help requested")

// envKeys are the scalar settings that may also come from the environment.
var envKeys = []string{
	"protocol", "url", "method", "body", "body_file", "requests", "concurrency",
	"timeout", "rate", "format", "log_errors", "no_progress", "html_report",
}

// Loader handles loading configuration from files, environment and command-line arguments.
type Loader struct{}

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load merges defaults, the optional config file, VOLLEY_* environment
// variables, the positional URL and explicitly set flags, in that order of
// increasing precedence. fs must already be parsed.
func (Loader) Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("expected at most one URL argument, got %d", len(args))
	}

	configPath := ""
	if flag := fs.Lookup("config"); flag != nil {
		configPath = strings.TrimSpace(flag.Value.String())
	}

	cfgViper := viper.New()
	cfgViper.SetEnvPrefix(EnvPrefix)
	cfgViper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range envKeys {
		if err := cfgViper.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	cfg := Default()
	cfg.ConfigFile = configPath

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}

	if len(args) == 1 {
		cfg.TargetURL = strings.TrimSpace(args[0])
	}

	if err := applyFlagOverrides(cfg, fs); err != nil {
		return nil, err
	}

	if cfg.TargetURL == "" && configPath == "" && fs.NFlag() == 0 {
		return nil, ErrHelpRequested
	}

	if protocol, err := ParseProtocol(string(cfg.Protocol)); err == nil {
		cfg.Protocol = protocol
	}
	cfg.Method = Method(strings.ToUpper(strings.TrimSpace(string(cfg.Method))))
	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.BodyFile = strings.TrimSpace(cfg.BodyFile)
	if cfg.Format == "" {
		cfg.Format = FormatText
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file or environment to the Config struct.
func applyConfigSettings(cfg *Config, values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	s, err := newSettings(values)
	if err != nil {
		return err
	}

	var protocol, method, format string
	if err := s.setString(&protocol, "protocol"); err != nil {
		return err
	}
	if protocol != "" {
		cfg.Protocol = Protocol(strings.ToLower(protocol))
	}
	if err := s.setString(&cfg.TargetURL, "url", "target", "address"); err != nil {
		return err
	}
	if err := s.setString(&method, "method"); err != nil {
		return err
	}
	if method != "" {
		cfg.Method = Method(method)
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	if err := s.mergeHeaders(cfg.Headers, "headers"); err != nil {
		return err
	}
	if raw, ok := s.find("body"); ok {
		body, err := cast.ToStringE(raw)
		if err != nil {
			return fmt.Errorf("body: %w", err)
		}
		cfg.Body = body
	}

	steps := []error{
		s.setString(&cfg.BodyFile, "body_file", "bodyfile"),
		s.setInt(&cfg.Requests, "requests", "num_requests", "total"),
		s.setInt(&cfg.Concurrency, "concurrency"),
		s.setTimeout(&cfg.Timeout, "timeout", "timeout_seconds"),
		s.setInt(&cfg.Rate, "rate"),
		s.setString(&format, "format", "output"),
		s.setBool(&cfg.LogErrors, "log_errors", "logerrors"),
		s.setBool(&cfg.NoProgress, "no_progress", "noprogress"),
		s.setString(&cfg.HTMLReport, "html_report", "htmlreport"),
		s.setList(&cfg.Thresholds, "thresholds"),
	}
	if err := errors.Join(steps...); err != nil {
		return err
	}
	if format != "" {
		cfg.Format = OutputFormat(strings.ToLower(format))
	}

	if raw, ok := s.find("tracing"); ok && raw != nil {
		if err := applyTracingSettings(&cfg.Tracing, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}
	if raw, ok := s.find("flashkv", "kv"); ok && raw != nil {
		if err := applyFlashKVSettings(&cfg.FlashKV, raw); err != nil {
			return fmt.Errorf("flashkv: %w", err)
		}
	}
	return nil
}

func applyTracingSettings(t *TracingConfig, raw any) error {
	s, err := newSettings(raw)
	if err != nil {
		return err
	}
	if err := errors.Join(
		s.setString(&t.Endpoint, "endpoint"),
		s.setString(&t.Protocol, "protocol"),
		s.setBool(&t.Insecure, "insecure"),
		s.setFloat(&t.SampleRate, "sample_rate", "samplerate"),
		s.setBool(&t.Propagate, "propagate"),
		s.setString(&t.ServiceName, "service_name", "servicename"),
	); err != nil {
		return err
	}
	t.Protocol = strings.ToLower(t.Protocol)
	return nil
}

func applyFlashKVSettings(kv *FlashKVConfig, raw any) error {
	s, err := newSettings(raw)
	if err != nil {
		return err
	}
	return errors.Join(
		s.setList(&kv.Commands, "commands", "command"),
		s.setBool(&kv.RandomKeys, "random_keys", "randomkeys"),
		s.setString(&kv.KeyPrefix, "key_prefix", "keyprefix"),
		s.setInt(&kv.KeyRange, "key_range", "keyrange"),
	)
}
