package model

// SceneName is the entry scene class the renderer invokes by name. Generated
// and templated code must declare it; the repair engine enforces it.
const SceneName = "MainScene"

// JobStatus tracks a render job through its state machine. Transitions are
// monotonic; a job never leaves succeeded or failed.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusGenerating JobStatus = "generating"
	JobStatusRendering  JobStatus = "rendering"
	JobStatusRepairing  JobStatus = "repairing"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
)

// Stage labels one pipeline step in a job's attempt history.
type Stage string

const (
	StageGenerate            Stage = "generate"
	StageLint                Stage = "lint"
	StagePatternRepair       Stage = "pattern-repair"
	StageAIRepairLint        Stage = "ai-repair-lint"
	StageRender              Stage = "render"
	StagePatternRepairRender Stage = "pattern-repair-render"
	StageAIRepairRender      Stage = "ai-repair-render"
	StageRegenerate          Stage = "regenerate"
)

// Attempt is one (stage, outcome) entry in a job's history.
type Attempt struct {
	Stage Stage `json:"stage"`
	OK    bool  `json:"ok"`
}

// RenderJob is the per-request unit of work, owned exclusively by the
// orchestrator for its lifetime.
type RenderJob struct {
	ID             string
	Concept        string
	Quality        Quality
	Code           string
	UsedGeneration bool
	Attempts       []Attempt
	OutputPath     string
	Status         JobStatus
}

// Record appends a stage outcome to the job's attempt history.
func (j *RenderJob) Record(stage Stage, ok bool) {
	j.Attempts = append(j.Attempts, Attempt{Stage: stage, OK: ok})
}
