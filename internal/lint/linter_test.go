package lint

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Suryansh777777/Mathmatika/internal/config"
)

// writeScript drops an executable shell script into a temp dir and returns
// its path.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func newLinter(binary string, timeoutSeconds int) *Linter {
	return New(&config.LinterConfig{Binary: binary, TimeoutSeconds: timeoutSeconds})
}

func TestCheckPass(t *testing.T) {
	bin := writeScript(t, "fakelint", "exit 0\n")
	l := newLinter(bin, 10)

	report := l.Check(context.Background(), "x = 1\n")
	if report.Status != StatusPass {
		t.Errorf("status = %v, want pass (findings: %q)", report.Status, report.Findings)
	}
}

func TestCheckFail(t *testing.T) {
	bin := writeScript(t, "fakelint", "echo 'E999 SyntaxError'\nexit 1\n")
	l := newLinter(bin, 10)

	report := l.Check(context.Background(), "def broken(\n")
	if report.Status != StatusFail {
		t.Fatalf("status = %v, want fail", report.Status)
	}
	if report.Findings != "E999 SyntaxError" {
		t.Errorf("findings = %q", report.Findings)
	}
}

func TestCheckMissingBinarySkips(t *testing.T) {
	l := newLinter("definitely-not-a-real-linter-binary", 10)

	report := l.Check(context.Background(), "x = 1\n")
	if report.Status != StatusSkipped {
		t.Errorf("status = %v, want skipped", report.Status)
	}
	if report.Findings != "" {
		t.Errorf("skipped report must carry no findings, got %q", report.Findings)
	}
}

func TestCheckTimeout(t *testing.T) {
	bin := writeScript(t, "fakelint", "sleep 5\n")
	l := newLinter(bin, 1)

	report := l.Check(context.Background(), "x = 1\n")
	if report.Status != StatusFail {
		t.Fatalf("status = %v, want fail on timeout", report.Status)
	}
	if report.Findings != "lint timed out" {
		t.Errorf("findings = %q", report.Findings)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusPass:    "pass",
		StatusFail:    "fail",
		StatusSkipped: "skipped",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", status, got, want)
		}
	}
}
