package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

// TestLoggerInterface tests the Logger interface implementation.
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("canonicalizing group", FingerprintKey, "75933634")
	testLogger.Info("run prepared", RunIDKey, "run--20-03-03--15-52")
	testLogger.Warn("debug mode active", RunDirKey, "experiments/debug")
	testLogger.Error("materialize failed", "error_code", "FS_ERROR")

	if buffer.String() == "" {
		t.Fatal("Expected log output, got empty string")
	}

	for _, msg := range []string{"canonicalizing group", "run prepared", "debug mode active", "materialize failed"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}

	if !testLogger.ContainsField(RunIDKey, "run--20-03-03--15-52") {
		t.Error("Expected run.id field not found")
	}
}

// TestLoggerWith tests the With method for context-aware logging.
func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ExperimentIDKey, "exp-75933634-45101139",
		ComponentKey, "experiment",
	)
	contextLogger.Info("run prepared")
	contextLogger.Info("run resumed")

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry[ExperimentIDKey] != "exp-75933634-45101139" {
			t.Errorf("entry missing bound experiment id: %v", entry)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelWarn)

	testLogger.Debug("hidden")
	testLogger.Info("hidden too")
	testLogger.Warn("visible")

	if strings.Contains(buffer.String(), "hidden") {
		t.Error("records below the minimum level leaked")
	}
	if !testLogger.ContainsMessage("visible") {
		t.Error("warn-level record was filtered out")
	}

	if testLogger.Enabled(context.Background(), LevelDebug) {
		t.Error("Enabled(debug) should be false at warn level")
	}
	if !testLogger.Enabled(context.Background(), LevelError) {
		t.Error("Enabled(error) should be true at warn level")
	}
}

// TestErrFmtHandlerStacktrace verifies that errors logged through the
// wrapped handler carry a stacktrace attribute.
func TestErrFmtHandlerStacktrace(t *testing.T) {
	var buf bytes.Buffer
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler)

	err := errors.WithStack(errors.New("materialize failed"))
	logger.Error("run preparation aborted", ErrAttr(err))

	var record map[string]any
	if jsonErr := json.Unmarshal(buf.Bytes(), &record); jsonErr != nil {
		t.Fatalf("log output is not JSON: %v", jsonErr)
	}
	if _, ok := record[StacktraceAttrKey]; !ok {
		t.Errorf("record has no %s attribute: %v", StacktraceAttrKey, record)
	}
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		if got := ToLogLevel(tt.in); got != tt.want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelInfo.String() != "INFO" || LevelError.String() != "ERROR" {
		t.Error("Level.String() mismatch")
	}
}
