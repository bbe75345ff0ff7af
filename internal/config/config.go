package config

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Method is an HTTP method accepted as a load test verb.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
	MethodHead   Method = "HEAD"
)

// SupportedMethods lists the methods in the order they are presented to users.
var SupportedMethods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead}

// ParseMethod normalizes s and checks it against SupportedMethods.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, supported := range SupportedMethods {
		if m == supported {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported HTTP method: %s", s)
}

// Protocol selects what a single request is.
type Protocol string

const (
	ProtocolHTTP    Protocol = "http"
	ProtocolFlashKV Protocol = "flashkv"
)

// ParseProtocol accepts the protocol names and their aliases. Empty means HTTP.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "http", "https":
		return ProtocolHTTP, nil
	case "flashkv", "kv", "tcp":
		return ProtocolFlashKV, nil
	default:
		return "", fmt.Errorf("unsupported protocol %q: use 'http' or 'flashkv'", s)
	}
}

type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

const (
	DefaultRequests    = 100
	DefaultConcurrency = 10
	DefaultTimeout     = 30 * time.Second

	DefaultKeyPrefix = "key"
	DefaultKeyRange  = 1000
	DefaultCommand   = "PING"
)

// Config is the complete description of one run. It is not mutated once
// validated.
type Config struct {
	Protocol    Protocol          `mapstructure:"protocol"`
	TargetURL   string            `mapstructure:"url"`
	Method      Method            `mapstructure:"method"`
	Headers     map[string]string `mapstructure:"headers"`
	Body        string            `mapstructure:"body"`
	BodyFile    string            `mapstructure:"body_file"`
	Requests    int               `mapstructure:"requests"`
	Concurrency int               `mapstructure:"concurrency"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	Rate        int               `mapstructure:"rate"`
	Format      OutputFormat      `mapstructure:"format"`
	LogErrors   bool              `mapstructure:"log_errors"`
	NoProgress  bool              `mapstructure:"no_progress"`
	HTMLReport  string            `mapstructure:"html_report"`
	Thresholds  []string          `mapstructure:"thresholds"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	FlashKV     FlashKVConfig     `mapstructure:"flashkv"`
	ConfigFile  string            `mapstructure:"-"`
}

// FlashKVConfig describes the commands sent when Protocol is flashkv. The
// target is then a host:port address rather than a URL.
type FlashKVConfig struct {
	Commands   []string `mapstructure:"commands"` // cycled by request index
	RandomKeys bool     `mapstructure:"random_keys"`
	KeyPrefix  string   `mapstructure:"key_prefix"`
	KeyRange   int      `mapstructure:"key_range"`
}

// Operation describes what each request does: the HTTP method, or the
// FlashKV commands in the order they are cycled.
func (c Config) Operation() string {
	if p, _ := ParseProtocol(string(c.Protocol)); p != ProtocolFlashKV {
		return string(c.Method)
	}
	if len(c.FlashKV.Commands) == 0 {
		return DefaultCommand
	}
	names := make([]string, 0, len(c.FlashKV.Commands))
	for _, cmd := range c.FlashKV.Commands {
		if fields := strings.Fields(cmd); len(fields) > 0 {
			names = append(names, strings.ToUpper(fields[0]))
		}
	}
	return strings.Join(names, ", ")
}

var kvSchemes = []string{"flashkv://", "kv://", "tcp://"}

// FlashKVAddress returns the host:port a flashkv run dials. An optional
// flashkv://, kv:// or tcp:// prefix is accepted.
func (c Config) FlashKVAddress() (string, error) {
	addr := strings.TrimSpace(c.TargetURL)
	for _, scheme := range kvSchemes {
		if len(addr) >= len(scheme) && strings.EqualFold(addr[:len(scheme)], scheme) {
			addr = addr[len(scheme):]
			break
		}
	}
	addr = strings.TrimSuffix(addr, "/")
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("flashkv target %q must be host:port", c.TargetURL)
	}
	if host == "" {
		return "", fmt.Errorf("flashkv target %q must include a host", c.TargetURL)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return "", fmt.Errorf("flashkv target %q has an invalid port", c.TargetURL)
	}
	return addr, nil
}

// TracingConfig controls OpenTelemetry export of per-request spans.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   bool    `mapstructure:"propagate"`
	ServiceName string  `mapstructure:"service_name"`
}

// Enabled reports whether spans should be created at all.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || t.Propagate
}

// ShouldPropagate reports whether W3C trace headers are injected into requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

// Default returns a Config populated with the defaults used by the CLI.
func Default() *Config {
	return &Config{
		Protocol:    ProtocolHTTP,
		Method:      MethodGet,
		Headers:     map[string]string{},
		Requests:    DefaultRequests,
		Concurrency: DefaultConcurrency,
		Timeout:     DefaultTimeout,
		Format:      FormatText,
		Tracing: TracingConfig{
			Protocol:   "grpc",
			SampleRate: 1.0,
		},
		FlashKV: FlashKVConfig{
			KeyPrefix: DefaultKeyPrefix,
			KeyRange:  DefaultKeyRange,
		},
	}
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks field constraints and returns a ValidationError listing
// every problem. Authorization warnings go to stderr.
//
// The timeout is deliberately left to httpclient.NewClient, which reports an
// unusable value as a client construction failure.
func (c Config) Validate() error {
	return c.validate(os.Stderr)
}

func (c Config) validate(warn io.Writer) error {
	var issues []string

	protocol, err := ParseProtocol(string(c.Protocol))
	if err != nil {
		issues = append(issues, err.Error())
	}

	target := strings.TrimSpace(c.TargetURL)
	switch {
	case target == "":
		issues = append(issues, "url is required (use --help for usage information)")
	case protocol == ProtocolFlashKV:
		if _, err := c.FlashKVAddress(); err != nil {
			issues = append(issues, err.Error())
		}
		issues = append(issues, validateFlashKVConfig(c.FlashKV)...)
	case protocol == ProtocolHTTP:
		if u, err := url.Parse(target); err != nil {
			issues = append(issues, fmt.Sprintf("url %q is invalid: %v", target, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			issues = append(issues, "url must start with http:// or https://")
		} else if u.Host == "" {
			issues = append(issues, "url must include a host")
		}
	}

	if _, err := ParseMethod(string(c.Method)); err != nil {
		issues = append(issues, err.Error())
	}

	if c.Requests < 1 {
		issues = append(issues, "requests must be >= 1")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Body != "" && strings.TrimSpace(c.BodyFile) != "" {
		issues = append(issues, "body and body_file are mutually exclusive")
	}

	for key, value := range c.Headers {
		if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "\r\n:") {
			issues = append(issues, fmt.Sprintf("invalid header key %q", key))
		}
		if strings.ContainsAny(value, "\r\n") {
			issues = append(issues, fmt.Sprintf("invalid header value for %s", key))
		}
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatYAML, "":
	default:
		issues = append(issues, fmt.Sprintf("format must be 'text', 'json' or 'yaml', got %q", c.Format))
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if c.Rate > 1000 {
		fmt.Fprintf(warn, "WARNING: High rate limit configured (%d RPS). Ensure you have authorization to test the target system.\n", c.Rate)
	}
	if c.Concurrency > 500 {
		fmt.Fprintf(warn, "WARNING: High concurrency configured (%d workers). Ensure you have authorization to test the target system.\n", c.Concurrency)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// validateFlashKVConfig checks the key settings. Command syntax is checked
// when the commands are parsed for the run.
func validateFlashKVConfig(kv FlashKVConfig) []string {
	var issues []string
	for i, cmd := range kv.Commands {
		if strings.TrimSpace(cmd) == "" {
			issues = append(issues, fmt.Sprintf("flashkv: command %d is empty", i+1))
		}
	}
	if kv.RandomKeys && kv.KeyRange < 1 {
		issues = append(issues, "flashkv: key_range must be >= 1 when random keys are enabled")
	}
	return issues
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
