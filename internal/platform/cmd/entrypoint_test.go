package cmd

import (
	"context"
	"errors"
	"testing"
)

type testConfig struct {
	GamePath string `env:"CMD_TEST_GAME_PATH" envDefault:"/games/default"`
	Format   string `env:"CMD_TEST_FORMAT" envDefault:"text"`
}

func TestParseConfigReadsPrefixedEnv(t *testing.T) {
	t.Setenv("EMPIREGEN_CMD_TEST_GAME_PATH", "/games/env")

	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	if cfg.GamePath != "/games/env" {
		t.Fatalf("expected env game path, got %q", cfg.GamePath)
	}
	if cfg.Format != "text" {
		t.Fatalf("expected default format, got %q", cfg.Format)
	}
}

func TestParseConfigIgnoresUnprefixedEnv(t *testing.T) {
	t.Setenv("CMD_TEST_GAME_PATH", "/games/unprefixed")

	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	if cfg.GamePath != "/games/default" {
		t.Fatalf("expected default game path, got %q", cfg.GamePath)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	var cfg *testConfig
	if err := ParseConfig(cfg); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceEmpireGen, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("EMPIREGEN_OTEL_ENABLED", "false")
	want := errors.New("boom")
	err := RunWithTelemetry(context.Background(), ServiceEmpireGen, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected run error, got %v", err)
	}
}
