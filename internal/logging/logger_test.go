package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_DefaultsToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	l, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be disabled by default")
	}
	if !l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be enabled by default")
	}
}

func TestNew_EnvOverridesConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	l, err := New(Config{Level: "error"})
	if err != nil {
		t.Fatal(err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("LOG_LEVEL=debug should enable debug")
	}
}

func TestNew_InvalidLevelFallsBack(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	l, err := New(Config{Level: "loud"})
	if err != nil {
		t.Fatal(err)
	}
	if !l.Core().Enabled(zapcore.InfoLevel) || l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("invalid level should fall back to info")
	}
}

func TestNew_RejectsUnknownEncoding(t *testing.T) {
	if _, err := New(Config{Encoding: "xml"}); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestContextRoundTrip(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := zap.New(core)

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("hello")
	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}

	// Missing logger degrades to a no-op instead of panicking.
	FromContext(context.Background()).Info("dropped")
	if logs.Len() != 1 {
		t.Errorf("no-op logger must not write to the observer")
	}
	if WithLogger(ctx, nil) != ctx {
		t.Error("nil logger should leave ctx unchanged")
	}
}
