// Package lint runs a static checker over generated scene code before it is
// handed to the renderer. The checker is optional infrastructure: when the
// binary is missing the pipeline proceeds without validation.
package lint

import (
	"context"
	"errors"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/Suryansh777777/Mathmatika/internal/config"
)

// Status is the tri-state lint outcome. Skipped is distinct from Pass: it
// means no validation happened at all.
type Status int

const (
	StatusPass Status = iota
	StatusFail
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusSkipped:
		return "skipped"
	}
	return "unknown"
}

// Report is one lint run over a code snapshot.
type Report struct {
	Status   Status
	Findings string
}

// Linter shells out to a Python checker (ruff by default).
type Linter struct {
	binary  string
	timeout time.Duration
}

func New(cfg *config.LinterConfig) *Linter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Linter{binary: cfg.Binary, timeout: timeout}
}

// Check lints the given code. Infrastructure problems (missing binary,
// unwritable temp dir) skip validation rather than failing the job.
func (l *Linter) Check(ctx context.Context, code string) Report {
	if _, err := exec.LookPath(l.binary); err != nil {
		log.Printf("lint: %s not found, skipping validation", l.binary)
		return Report{Status: StatusSkipped}
	}

	tmp, err := os.CreateTemp("", "scene-*.py")
	if err != nil {
		log.Printf("lint: temp file: %v", err)
		return Report{Status: StatusSkipped}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		log.Printf("lint: write: %v", err)
		return Report{Status: StatusSkipped}
	}
	tmp.Close()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, l.binary, "check", tmp.Name())
	out, err := cmd.CombinedOutput()
	if err == nil {
		return Report{Status: StatusPass}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Report{Status: StatusFail, Findings: "lint timed out"}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Report{Status: StatusFail, Findings: strings.TrimSpace(string(out))}
	}

	log.Printf("lint: %s failed to run: %v", l.binary, err)
	return Report{Status: StatusSkipped}
}
