package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func runCapture(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), strings.NewReader(""), &stdout, &stderr, args)
	return stdout.String(), err
}

func TestRunVersionText(t *testing.T) {
	out, err := runCapture(t, "version")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "RobotCLI") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "go_version:") {
		t.Errorf("missing build fields: %q", out)
	}
}

func TestRunVersionJSON(t *testing.T) {
	out, err := runCapture(t, "-o", "json", "version")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if info["version"] == "" {
		t.Errorf("info = %v", info)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	_, err := runCapture(t, "selfdestruct")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("err = %v", err)
	}
}

func TestRunUnknownFlag(t *testing.T) {
	_, err := runCapture(t, "-frobnicate")
	if err == nil || !strings.Contains(err.Error(), "unknown flag") {
		t.Errorf("err = %v", err)
	}
}

func TestRunBadOutputFormat(t *testing.T) {
	_, err := runCapture(t, "-o", "yaml", "version")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("err = %v", err)
	}
}

func TestRunHelp(t *testing.T) {
	out, err := runCapture(t, "-h")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"start", "models", "version", "-config"} {
		if !strings.Contains(out, want) {
			t.Errorf("usage missing %q:\n%s", want, out)
		}
	}
}

func TestRunStartWithoutKeyFails(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), strings.NewReader("exit\n"), &stdout, &stderr, []string{"start"})
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("err = %v", err)
	}
}

func TestFlagEqualsForms(t *testing.T) {
	out, err := runCapture(t, "-o=json", "version")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("-o=json not honored: %q", out)
	}
}
