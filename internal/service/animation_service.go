// Package service orchestrates the animation pipeline: generate code, lint
// and repair it, render it under the worker pool, and escalate through the
// repair tiers when the render fails. RenderAnimation never panics across its
// boundary and always returns a result, even for internal failures.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Suryansh777777/Mathmatika/internal/codegen"
	"github.com/Suryansh777777/Mathmatika/internal/config"
	"github.com/Suryansh777777/Mathmatika/internal/lint"
	"github.com/Suryansh777777/Mathmatika/internal/model"
	"github.com/Suryansh777777/Mathmatika/internal/prompt"
	"github.com/Suryansh777777/Mathmatika/internal/repair"
	"github.com/Suryansh777777/Mathmatika/internal/worker"
)

// User-facing error strings. Details carry the underlying diagnostics.
const (
	errGeneration = "Failed to generate animation code"
	errLint       = "Generated code failed validation"
	errRender     = "Failed to generate animation"
	errArtifact   = "Generated video file not found"
	errInternal   = "Internal server error"
)

// maxLintRounds bounds the lint-repair loop before the job fails outright.
const maxLintRounds = 2

// AnimationService owns the render pipeline.
type AnimationService struct {
	generator *codegen.Generator
	linter    *lint.Linter
	executor  *worker.Executor
	registry  *worker.Registry
	store     *JobStore

	defaultQuality model.Quality
	videosDir      string
	tempDir        string
}

func NewAnimationService(
	generator *codegen.Generator,
	linter *lint.Linter,
	executor *worker.Executor,
	registry *worker.Registry,
	store *JobStore,
	cfg *config.Config,
) *AnimationService {
	return &AnimationService{
		generator:      generator,
		linter:         linter,
		executor:       executor,
		registry:       registry,
		store:          store,
		defaultQuality: model.ParseQuality(cfg.Render.DefaultQuality, model.QualityLow),
		videosDir:      cfg.Paths.VideosDir,
		tempDir:        cfg.Paths.TempDir,
	}
}

func newJobID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("scene_%s_%s", time.Now().Format("20060102_150405"), suffix)
}

// sanitizeInput collapses whitespace runs. Concepts are prompt text, not
// shell arguments, so nothing stronger is needed.
func sanitizeInput(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RenderAnimation runs the full pipeline for one concept. It recovers from
// panics in the pipeline body so one bad job cannot take the server down.
func (s *AnimationService) RenderAnimation(ctx context.Context, concept, quality string) (result *model.AnimationResult) {
	q := model.ParseQuality(quality, s.defaultQuality)
	job := &model.RenderJob{
		ID:      newJobID(),
		Concept: sanitizeInput(concept),
		Quality: q,
		Status:  model.JobStatusPending,
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("service: panic in job %s: %v", job.ID, r)
			result = s.fail(job, errInternal, fmt.Sprint(r))
		}
	}()

	s.registry.Register(job.ID)
	defer s.registry.Unregister(job.ID)

	result = s.process(ctx, job)
	s.store.Save(job.ID, result)
	return result
}

func (s *AnimationService) process(ctx context.Context, job *model.RenderJob) *model.AnimationResult {
	workDir := filepath.Join(s.tempDir, job.ID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return s.fail(job, errInternal, err.Error())
	}
	defer os.RemoveAll(workDir)

	// Tier 0: generate.
	job.Status = model.JobStatusGenerating
	code, usedGeneration, err := s.generator.Generate(ctx, job.Concept)
	job.Record(model.StageGenerate, err == nil)
	if err != nil {
		return s.fail(job, errGeneration, err.Error())
	}
	job.Code = code
	job.UsedGeneration = usedGeneration

	// Static validation with bounded repair.
	if result := s.lintAndRepair(ctx, job); result != nil {
		return result
	}

	codeFile := filepath.Join(workDir, "scene.py")
	mediaDir := filepath.Join(workDir, "media")
	if err := os.WriteFile(codeFile, []byte(job.Code), 0o644); err != nil {
		return s.fail(job, errInternal, err.Error())
	}

	// First render pass.
	job.Status = model.JobStatusRendering
	renderErr := s.executor.Render(ctx, workDir, codeFile, mediaDir, job.Quality)
	job.Record(model.StageRender, renderErr == nil)

	if renderErr != nil {
		renderErr = s.escalate(ctx, job, workDir, codeFile, mediaDir, renderErr)
		if renderErr != nil {
			return s.fail(job, errRender, diagnosticsOf(renderErr))
		}
	}

	job.OutputPath = filepath.Join(s.videosDir, job.ID+".mp4")
	if err := s.executor.CollectArtifact(mediaDir, job.OutputPath); err != nil {
		log.Printf("service: job %s: %v", job.ID, err)
		return s.fail(job, errArtifact, "")
	}

	job.Status = model.JobStatusSucceeded
	return &model.AnimationResult{
		JobID:          job.ID,
		Success:        true,
		VideoURL:       "/static/videos/" + job.ID + ".mp4",
		Code:           job.Code,
		UsedGeneration: job.UsedGeneration,
		RenderQuality:  string(job.Quality),
		Attempts:       job.Attempts,
	}
}

// lintAndRepair validates job.Code and repairs it in place, at most
// maxLintRounds rounds. A skipped lint passes the code through untouched.
// Exactly one attempt entry is recorded for the whole phase, labeled with
// the last repair mechanism used. Returns a non-nil result only when the
// job must fail here.
func (s *AnimationService) lintAndRepair(ctx context.Context, job *model.RenderJob) *model.AnimationResult {
	report := s.linter.Check(ctx, job.Code)
	if report.Status == lint.StatusSkipped {
		return nil
	}
	if report.Status == lint.StatusPass {
		job.Record(model.StageLint, true)
		return nil
	}

	job.Status = model.JobStatusRepairing
	stage := model.StageLint

	for round := 0; round < maxLintRounds; round++ {
		changed := false

		if fixed, ok := repair.Fix(job.Code, report.Findings); ok {
			stage = model.StagePatternRepair
			job.Code = fixed
			changed = true
		} else if job.UsedGeneration {
			intent := prompt.Refine(job.Concept)
			fixed, err := s.generator.RepairCode(ctx, intent, job.Code, report.Findings, codegen.RepairModeLint)
			if err == nil && fixed != job.Code {
				stage = model.StageAIRepairLint
				job.Code = fixed
				changed = true
			}
		}

		if !changed {
			break
		}

		report = s.linter.Check(ctx, job.Code)
		if report.Status != lint.StatusFail {
			job.Record(stage, true)
			return nil
		}
	}

	job.Record(stage, false)
	return s.fail(job, errLint, report.Findings)
}

// repairTier is one escalation step after a failed render: produce new code,
// and render again only if the code actually changed.
type repairTier struct {
	stage model.Stage
	apply func(ctx context.Context, job *model.RenderJob, diagnostics string) (string, bool)
}

// escalate walks the repair tiers in order after a failed first render.
// Returns nil as soon as one tier renders successfully, otherwise the last
// render error seen.
func (s *AnimationService) escalate(ctx context.Context, job *model.RenderJob, workDir, codeFile, mediaDir string, firstErr error) error {
	job.Status = model.JobStatusRepairing
	lastErr := firstErr

	tiers := []repairTier{
		{
			stage: model.StagePatternRepairRender,
			apply: func(_ context.Context, job *model.RenderJob, diag string) (string, bool) {
				return repair.Fix(job.Code, diag)
			},
		},
		{
			stage: model.StageAIRepairRender,
			apply: func(ctx context.Context, job *model.RenderJob, diag string) (string, bool) {
				if !job.UsedGeneration {
					return "", false
				}
				intent := prompt.Refine(job.Concept)
				fixed, err := s.generator.RepairCode(ctx, intent, job.Code, diag, codegen.RepairModeRender)
				if err != nil {
					log.Printf("service: job %s: ai repair: %v", job.ID, err)
					return "", false
				}
				return fixed, fixed != job.Code
			},
		},
		{
			stage: model.StageRegenerate,
			apply: func(ctx context.Context, job *model.RenderJob, _ string) (string, bool) {
				code, usedGeneration, err := s.generator.Generate(ctx, job.Concept)
				if err != nil {
					log.Printf("service: job %s: regenerate: %v", job.ID, err)
					return "", false
				}
				job.UsedGeneration = usedGeneration
				return code, code != job.Code
			},
		},
	}

	for _, tier := range tiers {
		fixed, changed := tier.apply(ctx, job, diagnosticsOf(lastErr))
		if !changed {
			job.Record(tier.stage, false)
			continue
		}

		job.Code = fixed
		if err := os.WriteFile(codeFile, []byte(job.Code), 0o644); err != nil {
			job.Record(tier.stage, false)
			lastErr = err
			continue
		}

		job.Status = model.JobStatusRendering
		err := s.executor.Render(ctx, workDir, codeFile, mediaDir, job.Quality)
		job.Record(tier.stage, err == nil)
		if err == nil {
			return nil
		}
		lastErr = err
		job.Status = model.JobStatusRepairing
	}

	return lastErr
}

// diagnosticsOf extracts the subprocess details from a render error chain.
func diagnosticsOf(err error) string {
	var renderErr *worker.RenderError
	if errors.As(err, &renderErr) {
		return renderErr.Details
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func (s *AnimationService) fail(job *model.RenderJob, errMsg, details string) *model.AnimationResult {
	job.Status = model.JobStatusFailed
	return &model.AnimationResult{
		JobID:         job.ID,
		Success:       false,
		Error:         errMsg,
		Details:       details,
		RenderQuality: string(job.Quality),
		Attempts:      job.Attempts,
	}
}

// RenderMultiple renders each concept concurrently. Results keep the input
// order, each tagged with its concept. A panic in one job surfaces as that
// job's failure and never disturbs its siblings.
func (s *AnimationService) RenderMultiple(ctx context.Context, concepts []string, quality string) []*model.AnimationResult {
	results := make([]*model.AnimationResult, len(concepts))

	var wg sync.WaitGroup
	for i, concept := range concepts {
		wg.Add(1)
		go func(i int, concept string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = &model.AnimationResult{
						Success:       false,
						Error:         errRender,
						Details:       fmt.Sprint(r),
						RenderQuality: string(model.ParseQuality(quality, s.defaultQuality)),
					}
				}
			}()
			results[i] = s.RenderAnimation(ctx, concept, quality)
		}(i, concept)
	}
	wg.Wait()

	for i := range results {
		results[i].Concept = concepts[i]
	}
	return results
}

// ActiveCount reports how many renders are currently in flight.
func (s *AnimationService) ActiveCount() int {
	return s.registry.Count()
}

// ActiveJobs lists the ids of in-flight renders.
func (s *AnimationService) ActiveJobs() []string {
	return s.registry.Active()
}
