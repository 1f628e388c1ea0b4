// Package worker runs the render subprocess under a bounded pool and locates
// the artifact it produces.
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Suryansh777777/Mathmatika/internal/config"
	"github.com/Suryansh777777/Mathmatika/internal/model"
)

// RenderError carries the subprocess diagnostics for a failed render.
type RenderError struct {
	Timeout bool
	Details string
}

func (e *RenderError) Error() string {
	if e.Timeout {
		return "render timed out"
	}
	return "render failed"
}

const timeoutDetails = "The animation took too long to generate. Please try a simpler concept."

// ErrArtifactMissing means the render reported success but no video file
// could be located under the media directory.
var ErrArtifactMissing = errors.New("rendered video file not found")

var qualityFlags = map[model.Quality]string{
	model.QualityLow:    "-ql",
	model.QualityMedium: "-qm",
	model.QualityHigh:   "-qh",
}

// Executor invokes the manim binary. Concurrency is bounded by a weighted
// semaphore so a burst of jobs cannot fork an unbounded number of renders.
type Executor struct {
	binary  string
	timeout time.Duration
	pool    *semaphore.Weighted
}

func NewExecutor(cfg *config.RenderConfig) *Executor {
	workers := int64(cfg.MaxWorkers)
	if workers <= 0 {
		workers = 4
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Executor{
		binary:  cfg.Binary,
		timeout: timeout,
		pool:    semaphore.NewWeighted(workers),
	}
}

// Render runs one render pass over codeFile, writing media under mediaDir.
// It blocks until a pool slot is free. Failures come back as *RenderError.
func (e *Executor) Render(ctx context.Context, workDir, codeFile, mediaDir string, quality model.Quality) error {
	if err := e.pool.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire render slot: %w", err)
	}
	defer e.pool.Release(1)

	flag, ok := qualityFlags[quality]
	if !ok {
		flag = qualityFlags[model.QualityLow]
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binary,
		"render", flag,
		"--format", "mp4",
		"--media_dir", mediaDir,
		codeFile, model.SceneName,
	)
	cmd.Dir = workDir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Printf("worker: render timed out in %s", workDir)
		return &RenderError{Timeout: true, Details: timeoutDetails}
	}

	details := strings.TrimSpace(stderr.String())
	if details == "" {
		details = "Unknown error during animation generation"
	}
	log.Printf("worker: render failed in %s: %s", workDir, firstLine(details))
	return &RenderError{Details: details}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// artifactLayouts are the media paths the renderer is known to use, highest
// quality first. The recursive walk below is the safety net for layout drift
// across renderer versions.
var artifactLayouts = []string{
	filepath.Join("videos", "scene", "1080p60"),
	filepath.Join("videos", "scene", "720p30"),
	filepath.Join("videos", "scene", "480p15"),
	"videos",
	"",
}

// CollectArtifact locates the rendered MainScene.mp4 under mediaDir and moves
// it to dst. Returns ErrArtifactMissing when no candidate exists.
func (e *Executor) CollectArtifact(mediaDir, dst string) error {
	name := model.SceneName + ".mp4"

	for _, layout := range artifactLayouts {
		candidate := filepath.Join(mediaDir, layout, name)
		if _, err := os.Stat(candidate); err == nil {
			return moveFile(candidate, dst)
		}
	}

	var found string
	err := filepath.WalkDir(mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err == nil && found != "" {
		log.Printf("worker: artifact found by recursive scan at %s", found)
		return moveFile(found, dst)
	}

	return ErrArtifactMissing
}

// moveFile renames when possible and falls back to copy+remove for
// cross-device moves (temp dir and static dir may live on different mounts).
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	os.Remove(src)
	return nil
}
