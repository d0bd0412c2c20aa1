package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	if entries[0].ContextMap()["foo"] != "bar" {
		t.Fatalf("expected field foo=bar, got %+v", entries[0].ContextMap())
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	logger := WithFields(nil)
	if logger == nil {
		t.Fatalf("expected a usable logger")
	}
}

func TestScoringFields(t *testing.T) {
	fields := ScoringFields("gemini", "gemini-2.5-flash", "fallback")
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}

	fields = ScoringFields("gemini", "", "ai")
	if len(fields) != 2 {
		t.Fatalf("expected empty model to be dropped, got %d fields", len(fields))
	}
}
