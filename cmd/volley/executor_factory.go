package main

import (
	"fmt"

	"github.com/torosent/volley/internal/config"
	"github.com/torosent/volley/internal/flashkv"
	"github.com/torosent/volley/internal/httpclient"
	"github.com/torosent/volley/internal/runner"
	"github.com/torosent/volley/internal/tracing"
)

// newExecutorFromConfig creates the single-request executor for the
// configured protocol, with spans when the provider is active.
func newExecutorFromConfig(cfg *config.Config, provider *tracing.Provider) (runner.Executor, error) {
	protocol, err := config.ParseProtocol(string(cfg.Protocol))
	if err != nil {
		return nil, err
	}

	switch protocol {
	case config.ProtocolFlashKV:
		return newFlashKVExecutor(cfg, provider)
	default:
		return newHTTPExecutor(cfg, provider)
	}
}

func newHTTPExecutor(cfg *config.Config, provider *tracing.Provider) (*httpclient.Executor, error) {
	client, err := httpclient.NewClient(cfg.Timeout, "")
	if err != nil {
		return nil, err
	}
	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request builder: %w", err)
	}

	var opts []httpclient.ExecutorOption
	if provider.Active() {
		opts = append(opts, httpclient.WithTracer(provider.Tracer(), provider.ShouldPropagate()))
	}
	return httpclient.NewExecutor(client, builder, opts...), nil
}

func newFlashKVExecutor(cfg *config.Config, provider *tracing.Provider) (*flashkv.Executor, error) {
	addr, err := cfg.FlashKVAddress()
	if err != nil {
		return nil, err
	}
	commands, err := flashkv.ParseCommands(cfg.FlashKV.Commands)
	if err != nil {
		return nil, fmt.Errorf("flashkv: %w", err)
	}

	var opts []flashkv.Option
	if provider.Active() {
		opts = append(opts, flashkv.WithTracer(provider.Tracer()))
	}
	return flashkv.NewExecutor(flashkv.Config{
		Address:    addr,
		Commands:   commands,
		RandomKeys: cfg.FlashKV.RandomKeys,
		KeyPrefix:  cfg.FlashKV.KeyPrefix,
		KeyRange:   cfg.FlashKV.KeyRange,
		Timeout:    cfg.Timeout,
	}, opts...)
}
