package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/e4040/softmaxloss/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestZerologLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelDebug)
	logger := provider.GetLoggerWithName("softmax").With(VariantKey, VariantNaive)

	logger.Debug("loss computed", SamplesKey, 2, LossKey, 0.3133)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	if entry["message"] != "loss computed" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "debug" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry[ComponentKey] != "softmax" {
		t.Errorf("component = %v", entry[ComponentKey])
	}
	if entry[VariantKey] != VariantNaive {
		t.Errorf("variant = %v", entry[VariantKey])
	}
	if entry[SamplesKey] != 2.0 {
		t.Errorf("samples = %v", entry[SamplesKey])
	}
}

func TestZerologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelWarn)
	logger := provider.GetLogger()
	ctx := context.Background()

	if logger.Enabled(ctx, LevelDebug) {
		t.Error("Debug should be disabled at warn level")
	}
	if !logger.Enabled(ctx, LevelError) {
		t.Error("Error should be enabled at warn level")
	}

	logger.Info("dropped")
	logger.Warn("kept")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["message"] != "kept" {
		t.Errorf("unexpected entries: %v", entries)
	}

	provider.SetLevel(LevelDebug)
	if !provider.GetLogger().Enabled(ctx, LevelDebug) {
		t.Error("SetLevel(LevelDebug) should enable debug")
	}
}

func TestZerologLogger_ErrorWithStack(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologProvider(&buf, LevelDebug).GetLogger()

	err := errors.NewDimensionError("softmax.LossNaive", 3, 2, 1)
	logger.Error("loss failed", err, OperationKey, OperationLoss)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	if !strings.Contains(entry["error"].(string), "dimension mismatch") {
		t.Errorf("error field = %v", entry["error"])
	}
	if entry[OperationKey] != OperationLoss {
		t.Errorf("operation = %v", entry[OperationKey])
	}
	if _, ok := entry[StacktraceKey]; !ok {
		t.Error("Expected a stacktrace field for an error created with a stack")
	}
}

func TestZerologLogger_ObjectMarshaler(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologProvider(&buf, LevelDebug).GetLogger()

	warning := &errors.NumericalInstabilityError{Operation: "softmax.loss", Values: []float64{1e308}}
	logger.Warn("non-finite output", "warning", warning)

	entries := decodeLines(t, &buf)
	obj, ok := entries[0]["warning"].(map[string]interface{})
	if !ok {
		t.Fatalf("warning should be a nested object, got %T", entries[0]["warning"])
	}
	if obj["operation"] != "softmax.loss" {
		t.Errorf("operation = %v", obj["operation"])
	}
}
