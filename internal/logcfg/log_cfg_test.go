package logcfg

import (
	"encoding/json"
	"github.com/sirupsen/logrus"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func resetLogger() {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetReportCaller(false)
	logrus.SetFormatter(&logrus.TextFormatter{})
}

func TestRunLoggerConfig_TextFile(t *testing.T) {
	defer resetLogger()

	file := filepath.Join(t.TempDir(), "test.log")
	closer, err := RunLoggerConfig(Options{Level: "debug", FileName: file})
	if err != nil {
		t.Fatalf("RunLoggerConfig returned error: %v", err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %v", logrus.GetLevel())
	}

	logrus.Info("hello")
	if err = closer.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("Expected log file to be written: %v", err)
	}
	if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), "log_cfg_test.go.") {
		t.Errorf("Expected message with prettified caller, got %q", data)
	}
}

func TestRunLoggerConfig_JSON(t *testing.T) {
	defer resetLogger()

	file := filepath.Join(t.TempDir(), "test.json.log")
	closer, err := RunLoggerConfig(Options{Level: "info", FileName: file, Format: "JSON"})
	if err != nil {
		t.Fatalf("RunLoggerConfig returned error: %v", err)
	}
	logrus.WithField("session", "42").Info("turn")
	_ = closer.Close()

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err = json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("Expected one JSON entry, got %q: %v", data, err)
	}
	if entry["msg"] != "turn" || entry["session"] != "42" {
		t.Errorf("Unexpected entry %v", entry)
	}
}

func TestRunLoggerConfig_InvalidOptions(t *testing.T) {
	defer resetLogger()

	if _, err := RunLoggerConfig(Options{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}
	if _, err := RunLoggerConfig(Options{Level: "info", Format: "xml"}); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestCallerPrettyfier(t *testing.T) {
	fn, file := callerPrettyfier(&runtime.Frame{File: "/a/b/handler.go", Line: 12, Function: "pkg.Chat"})
	if fn != "" || file != "handler.go.12.pkg.Chat" {
		t.Errorf("Unexpected caller %q %q", fn, file)
	}
}

func TestOrDefault(t *testing.T) {
	if orDefault(0, 50) != 50 || orDefault(-1, 3) != 3 || orDefault(7, 3) != 7 {
		t.Error("Unexpected rotation defaults")
	}
}
