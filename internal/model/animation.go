package model

// GenerateRequest is the body for POST /api/animations/generate.
type GenerateRequest struct {
	Concept string `json:"concept" validate:"required,min=1,max=1000"`
	Quality string `json:"quality" validate:"omitempty,oneof=low medium high"`
}

// GenerateMultipleRequest is the body for POST /api/animations/generate-multiple.
type GenerateMultipleRequest struct {
	Concepts []string `json:"concepts" validate:"required,min=1,max=10,dive,required,min=1,max=1000"`
	Quality  string   `json:"quality" validate:"omitempty,oneof=low medium high"`
}

// AnimationResult is the terminal report for one render job. The pipeline
// never raises across the component boundary; failures surface here as
// error/details fields. RenderQuality is always echoed back, even on failure.
type AnimationResult struct {
	JobID          string    `json:"jobId"`
	Success        bool      `json:"success"`
	VideoURL       string    `json:"videoUrl,omitempty"`
	Code           string    `json:"code,omitempty"`
	UsedGeneration bool      `json:"usedGeneration"`
	RenderQuality  string    `json:"renderQuality"`
	Error          string    `json:"error,omitempty"`
	Details        string    `json:"details,omitempty"`
	Concept        string    `json:"concept,omitempty"`
	Attempts       []Attempt `json:"attempts,omitempty"`
}
