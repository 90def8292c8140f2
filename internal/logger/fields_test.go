package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  view  ", Value: "  business  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "view" || fields[0].String != "business" {
		t.Fatalf("unexpected view field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestComponent(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	named := Component(zap.New(core), "portal", StringField{Key: FieldProcurement, Value: "42"})
	named.Info("posted")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if entries[0].LoggerName != "portal" {
		t.Fatalf("expected logger name portal, got %q", entries[0].LoggerName)
	}

	if ctx := entries[0].ContextMap(); ctx[FieldProcurement] != "42" {
		t.Fatalf("expected procurement field to be 42, got %v", ctx[FieldProcurement])
	}

	// Ensure logging with the fallback logger does not panic.
	Component(nil, "portal").Info("another log")
}

func TestWithAI(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithAI(zap.New(core), "gemini", "model-x").Info("test log")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider field to be gemini, got %v", ctx[FieldProvider])
	}
	if ctx[FieldModel] != "model-x" {
		t.Fatalf("expected model field to be model-x, got %v", ctx[FieldModel])
	}

	core, observed = observer.New(zapcore.InfoLevel)
	WithAI(zap.New(core), "", "").Info("bare")
	if n := len(observed.All()[0].Context); n != 0 {
		t.Fatalf("expected no fields, got %d", n)
	}
}
