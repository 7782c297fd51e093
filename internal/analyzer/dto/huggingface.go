package dto

// SentimentRequest is the payload for a Hugging Face sentiment inference
// call. Inputs supports batch mode.
type SentimentRequest struct {
	Inputs  []string         `json:"inputs"`
	Options InferenceOptions `json:"options"`
}

// InferenceOptions tunes Hugging Face inference behavior.
type InferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

// LabelScore is a single (label, score) pair from a classifier.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ZeroShotRequest is the payload for a zero-shot classification call over a
// closed label set.
type ZeroShotRequest struct {
	Inputs     []string           `json:"inputs"`
	Parameters ZeroShotParameters `json:"parameters"`
	Options    InferenceOptions   `json:"options"`
}

// ZeroShotParameters carries the candidate labels for zero-shot inference.
type ZeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// ZeroShotResult is the per-text result of a zero-shot call. Labels and
// Scores are parallel, ranked best first.
type ZeroShotResult struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}
