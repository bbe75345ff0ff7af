package config

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Core request flags
	flags.String("protocol", string(ProtocolHTTP), "Request protocol: http or flashkv")
	flags.StringP("url", "u", "", "Target URL, or host:port for flashkv (may also be given as the first argument)")
	flags.StringP("method", "m", string(MethodGet), "HTTP method: GET, POST, PUT, DELETE, PATCH or HEAD")
	flags.StringArrayP("header", "H", nil, "Request header as 'Key: Value' or key=value (repeatable)")
	flags.String("body", "", "Inline request body payload")
	flags.String("body-file", "", "Path to file containing the request body")

	// Load control flags
	flags.IntP("requests", "n", DefaultRequests, "Total number of requests to send")
	flags.IntP("concurrency", "c", DefaultConcurrency, "Maximum number of requests in flight")
	flags.Duration("timeout", DefaultTimeout, "Per-request timeout")
	flags.IntP("rate", "r", 0, "Requests per second limit (0 means unlimited)")

	// Output flags
	flags.StringP("format", "o", string(FormatText), "Report format: text, json or yaml")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.Bool("no-progress", false, "Disable the live progress display")
	flags.String("html-report", "", "Write a standalone HTML report to this path")
	flags.StringArray("threshold", nil, "Pass/fail assertion, e.g. 'latency:p95 < 500' (repeatable)")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// FlashKV flags
	flags.StringArray("kv-command", nil, "FlashKV command such as 'GET user' (repeatable, cycled per request; default PING)")
	flags.Bool("kv-random-keys", false, "Replace command keys with <prefix>:<n> for a random n")
	flags.String("kv-key-prefix", DefaultKeyPrefix, "Prefix for random FlashKV keys")
	flags.Int("kv-key-range", DefaultKeyRange, "Random FlashKV keys are drawn from [0, range)")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint for request spans (host:port)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.Bool("tracing-insecure", false, "Disable TLS when exporting spans")
	flags.Float64("tracing-sample-rate", 1.0, "Fraction of requests to trace (0.0-1.0)")
	flags.Bool("tracing-propagate", false, "Inject W3C traceparent headers into requests")
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file and environment.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("protocol") {
		val, err := fs.GetString("protocol")
		if err != nil {
			return err
		}
		cfg.Protocol = Protocol(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("url") {
		val, err := fs.GetString("url")
		if err != nil {
			return err
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}
	if fs.Changed("method") {
		val, err := fs.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = Method(strings.ToUpper(strings.TrimSpace(val)))
	}
	if fs.Changed("body") {
		val, err := fs.GetString("body")
		if err != nil {
			return err
		}
		cfg.Body = val
		cfg.BodyFile = ""
	}
	if fs.Changed("body-file") {
		val, err := fs.GetString("body-file")
		if err != nil {
			return err
		}
		cfg.BodyFile = strings.TrimSpace(val)
		cfg.Body = ""
	}
	if fs.Changed("requests") {
		val, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.Requests = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("format") {
		val, err := fs.GetString("format")
		if err != nil {
			return err
		}
		cfg.Format = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("no-progress") {
		val, err := fs.GetBool("no-progress")
		if err != nil {
			return err
		}
		cfg.NoProgress = val
	}
	if fs.Changed("html-report") {
		val, err := fs.GetString("html-report")
		if err != nil {
			return err
		}
		cfg.HTMLReport = strings.TrimSpace(val)
	}

	vals, err := fs.GetStringArray("header")
	if err != nil {
		return err
	}
	if len(vals) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for _, entry := range vals {
			key, value, err := parseHeaderFlag(entry)
			if err != nil {
				return err
			}
			cfg.Headers[key] = value
		}
	}

	thresholds, err := fs.GetStringArray("threshold")
	if err != nil {
		return err
	}
	if len(thresholds) > 0 {
		cfg.Thresholds = append(cfg.Thresholds, thresholds...)
	}

	if err := applyFlashKVFlags(&cfg.FlashKV, fs); err != nil {
		return err
	}
	return applyTracingFlags(&cfg.Tracing, fs)
}

func applyFlashKVFlags(kv *FlashKVConfig, fs *pflag.FlagSet) error {
	if fs.Changed("kv-command") {
		val, err := fs.GetStringArray("kv-command")
		if err != nil {
			return err
		}
		kv.Commands = val
	}
	if fs.Changed("kv-random-keys") {
		val, err := fs.GetBool("kv-random-keys")
		if err != nil {
			return err
		}
		kv.RandomKeys = val
	}
	if fs.Changed("kv-key-prefix") {
		val, err := fs.GetString("kv-key-prefix")
		if err != nil {
			return err
		}
		kv.KeyPrefix = strings.TrimSpace(val)
	}
	if fs.Changed("kv-key-range") {
		val, err := fs.GetInt("kv-key-range")
		if err != nil {
			return err
		}
		kv.KeyRange = val
	}
	return nil
}

func applyTracingFlags(t *TracingConfig, fs *pflag.FlagSet) error {
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		t.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		t.Insecure = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		t.SampleRate = val
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		t.Propagate = val
	}
	return nil
}

// parseHeaderFlag accepts "Key: Value" and "Key=Value", splitting on
// whichever separator comes first.
func parseHeaderFlag(entry string) (string, string, error) {
	sep := strings.IndexAny(entry, ":=")
	if sep <= 0 {
		return "", "", fmt.Errorf("header must be in 'Key: Value' or key=value format: %s", entry)
	}
	key := http.CanonicalHeaderKey(strings.TrimSpace(entry[:sep]))
	if key == "" {
		return "", "", fmt.Errorf("header key cannot be empty")
	}
	return key, strings.TrimSpace(entry[sep+1:]), nil
}
