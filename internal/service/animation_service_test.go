package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Suryansh777777/Mathmatika/internal/codegen"
	"github.com/Suryansh777777/Mathmatika/internal/config"
	"github.com/Suryansh777777/Mathmatika/internal/lint"
	"github.com/Suryansh777777/Mathmatika/internal/model"
	"github.com/Suryansh777777/Mathmatika/internal/worker"
)

// stubClient satisfies codegen.CompletionClient with canned responses.
type stubClient struct {
	response string
	err      error
}

func (s *stubClient) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	return s.response, s.err
}

func (s *stubClient) IsConfigured() bool { return true }

// writeRenderer drops an executable renderer stand-in. Within the script $6
// is the media dir and $7 the scene file.
func writeRenderer(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fakemanim")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write renderer: %v", err)
	}
	return path
}

const renderOK = `mkdir -p "$6/videos/scene/480p15"
: > "$6/videos/scene/480p15/MainScene.mp4"
exit 0
`

func newTestService(t *testing.T, rendererBody string, client codegen.CompletionClient) (*AnimationService, *config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Render: config.RenderConfig{
			Binary:         writeRenderer(t, rendererBody),
			DefaultQuality: "low",
			MaxWorkers:     2,
			TimeoutSeconds: 30,
		},
		Linter: config.LinterConfig{
			Binary:         "no-such-linter-binary",
			TimeoutSeconds: 5,
		},
		Paths: config.PathsConfig{
			StaticDir: filepath.Join(root, "static"),
			VideosDir: filepath.Join(root, "static", "videos"),
			TempDir:   filepath.Join(root, "tmp"),
		},
	}
	for _, dir := range []string{cfg.Paths.VideosDir, cfg.Paths.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	svc := NewAnimationService(
		codegen.NewGenerator(client),
		lint.New(&cfg.Linter),
		worker.NewExecutor(&cfg.Render),
		worker.NewRegistry(),
		nil,
		cfg,
	)
	return svc, cfg
}

func assertCleanedUp(t *testing.T, svc *AnimationService, cfg *config.Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.Paths.TempDir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("working directories left behind: %d entries", len(entries))
	}
	if got := svc.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount = %d after job terminated, want 0", got)
	}
}

func TestRenderAnimationTemplateSuccess(t *testing.T) {
	svc, cfg := newTestService(t, renderOK, nil)

	result := svc.RenderAnimation(context.Background(), "the pythagorean theorem", "")

	if !result.Success {
		t.Fatalf("expected success, got error=%q details=%q", result.Error, result.Details)
	}
	if result.UsedGeneration {
		t.Error("template path must report usedGeneration=false")
	}
	if result.Code == "" {
		t.Error("successful result must carry the code")
	}
	if result.RenderQuality != "low" {
		t.Errorf("RenderQuality = %q, want default low", result.RenderQuality)
	}
	if want := "/static/videos/" + result.JobID + ".mp4"; result.VideoURL != want {
		t.Errorf("VideoURL = %q, want %q", result.VideoURL, want)
	}
	if !strings.HasPrefix(result.JobID, "scene_") {
		t.Errorf("JobID = %q", result.JobID)
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.VideosDir, result.JobID+".mp4")); err != nil {
		t.Errorf("video not collected: %v", err)
	}

	// Lint was skipped (no binary), so the history is generate + render.
	if len(result.Attempts) != 2 {
		t.Fatalf("attempts = %+v", result.Attempts)
	}
	if result.Attempts[0].Stage != model.StageGenerate || !result.Attempts[0].OK {
		t.Errorf("attempt 0 = %+v", result.Attempts[0])
	}
	if result.Attempts[1].Stage != model.StageRender || !result.Attempts[1].OK {
		t.Errorf("attempt 1 = %+v", result.Attempts[1])
	}

	assertCleanedUp(t, svc, cfg)
}

func TestRenderAnimationGenerationFailure(t *testing.T) {
	svc, cfg := newTestService(t, renderOK, nil)

	// No template matches and no provider is configured.
	result := svc.RenderAnimation(context.Background(), "category theory adjunctions", "high")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != "Failed to generate animation code" {
		t.Errorf("Error = %q", result.Error)
	}
	if result.Code != "" {
		t.Error("failed result must not carry code")
	}
	if result.RenderQuality != "high" {
		t.Errorf("RenderQuality = %q, must echo the request", result.RenderQuality)
	}

	assertCleanedUp(t, svc, cfg)
}

func TestRenderAnimationAllTiersFail(t *testing.T) {
	svc, cfg := newTestService(t, "echo 'SyntaxError: nothing fixable here' >&2\nexit 1\n", nil)

	result := svc.RenderAnimation(context.Background(), "the pythagorean theorem", "")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != "Failed to generate animation" {
		t.Errorf("Error = %q", result.Error)
	}
	if !strings.Contains(result.Details, "SyntaxError: nothing fixable here") {
		t.Errorf("Details = %q, want the renderer diagnostics", result.Details)
	}

	// generate, render, then one entry per exhausted tier.
	if len(result.Attempts) > 6 {
		t.Errorf("attempt history too long: %+v", result.Attempts)
	}
	wantStages := []model.Stage{
		model.StageGenerate,
		model.StageRender,
		model.StagePatternRepairRender,
		model.StageAIRepairRender,
		model.StageRegenerate,
	}
	if len(result.Attempts) != len(wantStages) {
		t.Fatalf("attempts = %+v", result.Attempts)
	}
	for i, want := range wantStages {
		if result.Attempts[i].Stage != want {
			t.Errorf("attempt %d stage = %s, want %s", i, result.Attempts[i].Stage, want)
		}
	}
	for _, a := range result.Attempts[1:] {
		if a.OK {
			t.Errorf("stage %s should have failed", a.Stage)
		}
	}

	assertCleanedUp(t, svc, cfg)
}

func TestRenderAnimationPatternRepairRecovers(t *testing.T) {
	// Fails while the scene uses GOLD, succeeds once the pattern fix rewrote
	// it to YELLOW.
	renderer := `if grep -q GOLD "$7"; then
  echo "AttributeError: module manim has no attribute GOLD" >&2
  exit 1
fi
` + renderOK

	client := &stubClient{response: "```python\nfrom manim import *\n\nclass MainScene(Scene):\n    def construct(self):\n        self.play(Create(Circle(color=GOLD)))\n```"}
	svc, cfg := newTestService(t, renderer, client)

	result := svc.RenderAnimation(context.Background(), "a golden circle", "medium")

	if !result.Success {
		t.Fatalf("expected recovery, got error=%q details=%q", result.Error, result.Details)
	}
	if !result.UsedGeneration {
		t.Error("provider path must report usedGeneration=true")
	}
	if !strings.Contains(result.Code, "YELLOW") || strings.Contains(result.Code, "GOLD") {
		t.Errorf("result must carry the repaired code:\n%s", result.Code)
	}
	if result.RenderQuality != "medium" {
		t.Errorf("RenderQuality = %q", result.RenderQuality)
	}

	wantStages := []model.Stage{
		model.StageGenerate,
		model.StageRender,
		model.StagePatternRepairRender,
	}
	if len(result.Attempts) != len(wantStages) {
		t.Fatalf("attempts = %+v", result.Attempts)
	}
	if !result.Attempts[2].OK {
		t.Error("pattern repair render should have succeeded")
	}

	assertCleanedUp(t, svc, cfg)
}

func TestRenderAnimationInvalidQualityFallsBack(t *testing.T) {
	svc, _ := newTestService(t, renderOK, nil)

	result := svc.RenderAnimation(context.Background(), "the pythagorean theorem", "ultra")
	if result.RenderQuality != "low" {
		t.Errorf("RenderQuality = %q, want fallback to default", result.RenderQuality)
	}
}

func TestRenderMultiple(t *testing.T) {
	svc, cfg := newTestService(t, renderOK, nil)

	concepts := []string{
		"the pythagorean theorem",
		"category theory adjunctions", // no template, no provider: fails
		"volume of a sphere",
	}
	results := svc.RenderMultiple(context.Background(), concepts, "")

	if len(results) != len(concepts) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Concept != concepts[i] {
			t.Errorf("result %d concept = %q, want %q", i, r.Concept, concepts[i])
		}
	}
	if !results[0].Success || !results[2].Success {
		t.Errorf("expected outer renders to succeed: %+v, %+v", results[0], results[2])
	}
	if results[1].Success {
		t.Error("middle render must fail in isolation")
	}

	assertCleanedUp(t, svc, cfg)
}

func TestSanitizeInput(t *testing.T) {
	got := sanitizeInput("  a   messy\n\tconcept  ")
	if got != "a messy concept" {
		t.Errorf("sanitizeInput = %q", got)
	}
}

func TestNewJobIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id := newJobID()
		if !strings.HasPrefix(id, "scene_") {
			t.Fatalf("id = %q", id)
		}
		parts := strings.Split(id, "_")
		if len(parts) != 4 || len(parts[3]) != 6 {
			t.Fatalf("id = %q, want scene_<date>_<time>_<6 chars>", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestJobStoreNilSafe(t *testing.T) {
	store := NewJobStore(nil)
	if store != nil {
		t.Fatal("nil redis client must yield a nil store")
	}

	// Both operations must be safe on the nil store.
	store.Save("job-1", &model.AnimationResult{JobID: "job-1"})
	if _, err := store.Get(context.Background(), "job-1"); err != ErrJobNotFound {
		t.Errorf("Get on nil store = %v, want ErrJobNotFound", err)
	}
}

func TestDiagnosticsOf(t *testing.T) {
	renderErr := &worker.RenderError{Details: "boom"}
	if got := diagnosticsOf(fmt.Errorf("wrapped: %w", renderErr)); got != "boom" {
		t.Errorf("diagnosticsOf = %q", got)
	}
	if got := diagnosticsOf(fmt.Errorf("plain failure")); got != "plain failure" {
		t.Errorf("diagnosticsOf = %q", got)
	}
	if got := diagnosticsOf(nil); got != "" {
		t.Errorf("diagnosticsOf(nil) = %q", got)
	}
}
