package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLoggerDefaultsToTextFormat(t *testing.T) {
	logger := NewLogger(nil)
	if logger == nil {
		t.Fatal("NewLogger(nil) returned nil")
	}
	if logger.format != "text" {
		t.Errorf("format = %q, want %q", logger.format, "text")
	}
}

func TestNewLoggerUnrecognizedFormatFallsBackToText(t *testing.T) {
	logger := NewLogger(&Config{Format: "yaml"})
	if logger.format != "text" {
		t.Errorf("format = %q, want %q for an unrecognized format", logger.format, "text")
	}
}

func TestLoggerTextFormatRendersKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf, Format: "text"})

	logger.Info("accepted monitor connection", "remote", "127.0.0.1:9000")

	output := buf.String()
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("expected level tag in output, got: %s", output)
	}
	if !strings.Contains(output, "remote=127.0.0.1:9000") {
		t.Errorf("expected remote=127.0.0.1:9000 in output, got: %s", output)
	}
}

func TestLoggerJSONFormatProducesValidJSONLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf, Format: "json"})

	logger.Warn("dropping sample, buffer pool exhausted", "uid", 7)

	line := strings.TrimSpace(lastLine(buf.String()))
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("log line is not valid JSON: %v (line=%q)", err, line)
	}
	if decoded["msg"] != "dropping sample, buffer pool exhausted" {
		t.Errorf("msg = %v, want the logged message", decoded["msg"])
	}
	if decoded["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", decoded["level"])
	}
	if decoded["uid"] != float64(7) {
		t.Errorf("uid = %v, want 7", decoded["uid"])
	}
}

func TestWithConnectionTagsSubsequentLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf, Format: "text"})

	connLogger := logger.WithConnection("10.0.0.5:4444")
	connLogger.Info("stream metadata sent")

	output := buf.String()
	if !strings.Contains(output, "conn=10.0.0.5:4444") {
		t.Errorf("expected conn=10.0.0.5:4444 in output, got: %s", output)
	}

	// The parent logger must be unaffected by With*.
	buf.Reset()
	logger.Info("unrelated line")
	if strings.Contains(buf.String(), "conn=") {
		t.Errorf("parent logger picked up WithConnection's field: %s", buf.String())
	}
}

func TestWithPacketAndWithCounterCompose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf, Format: "text"})

	logger.WithPacket(0, 6).WithCounter(42).Warn("unexpected counter in periodic selection")

	output := buf.String()
	for _, want := range []string{"family=0", "class=6", "uid=42"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Output: &buf, Format: "text"})

	logger.Debug("should be dropped")
	logger.Info("should be dropped too")
	if buf.Len() != 0 {
		t.Errorf("expected no output below configured level, got: %s", buf.String())
	}

	logger.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("expected the Warn line to appear, got: %s", buf.String())
	}
}

func TestGlobalLoggerFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(&Config{Level: LevelDebug, Output: &buf, Format: "text"}))

	Debug("debug message", "key", "value")
	output := buf.String()
	if !strings.Contains(output, "debug message") {
		t.Errorf("expected debug message, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value, got: %s", output)
	}

	buf.Reset()
	Info("info message")
	if !strings.Contains(buf.String(), "info message") {
		t.Errorf("expected info message, got: %s", buf.String())
	}

	buf.Reset()
	Warn("warning message")
	if !strings.Contains(buf.String(), "warning message") {
		t.Errorf("expected warning message, got: %s", buf.String())
	}

	buf.Reset()
	Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Errorf("expected error message, got: %s", buf.String())
	}
}

// lastLine returns the final non-empty line of s; each log call is its
// own line.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return lines[len(lines)-1]
}
