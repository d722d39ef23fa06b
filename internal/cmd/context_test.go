package cmd

import (
	"context"
	"testing"

	"github.com/salmonumbrella/notion-normalize/internal/config"
)

func TestErrorFormatContext(t *testing.T) {
	ctx := WithErrorFormat(context.Background(), "yaml")
	if got := ErrorFormatFromContext(ctx); got != "yaml" {
		t.Errorf("ErrorFormatFromContext() = %q, want yaml", got)
	}
	if got := ErrorFormatFromContext(context.Background()); got != "" {
		t.Errorf("ErrorFormatFromContext() on empty context = %q, want empty", got)
	}
}

func TestConfigContext(t *testing.T) {
	cfg := &config.Config{CamelCase: true, Workers: 4}
	ctx := WithConfig(context.Background(), cfg)
	if got := ConfigFromContext(ctx); got != cfg {
		t.Errorf("ConfigFromContext() = %p, want %p", got, cfg)
	}

	empty := ConfigFromContext(context.Background())
	if empty == nil {
		t.Fatal("ConfigFromContext() returned nil for context without config")
	}
	if *empty != (config.Config{}) {
		t.Errorf("expected zero config, got %+v", *empty)
	}
}
