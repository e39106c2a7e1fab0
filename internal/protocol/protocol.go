// Package protocol defines the versioned job/result/status records exchanged
// with the coordinator, and the JSON codec for them.
package protocol

import "time"

// ProtocolVersion is the current protocol schema version. It must match the
// coordinator's expectation; a mismatch lets either side detect schema drift.
const ProtocolVersion = 1

// UnknownJobID is the synthetic job identifier used when the real job_id
// cannot be recovered from the input.
const UnknownJobID = "unknown"

// Default synthesis option values, applied for absent fields at decode time.
const (
	DefaultExaggeration = 0.5
	DefaultCFG          = 0.5
	DefaultTemperature  = 0.8
)

// JobOptions holds per-job synthesis tuning parameters.
// Values are accepted as-is at decode time; range clamping is the synthesis
// backend's responsibility.
type JobOptions struct {
	Exaggeration float64 `json:"exaggeration"`
	CFG          float64 `json:"cfg"`
	Temperature  float64 `json:"temperature"`
	VoiceRefHash string  `json:"voice_ref_hash,omitempty"`
}

// Job is a single synthesis request. It is immutable once decoded and
// consumed exactly once per process invocation.
type Job struct {
	Version   int        `json:"version"`
	JobID     string     `json:"job_id"`
	SessionID string     `json:"session_id"`
	ChapterID int        `json:"chapter_id"`
	ChunkID   int        `json:"chunk_id"`
	Text      string     `json:"text"`
	Options   JobOptions `json:"options"`
	CreatedAt string     `json:"created_at"`
}

// Status is the terminal state of a job.
type Status string

// Job terminal states.
const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusTimeout   Status = "timeout"
)

// Result is the terminal, immutable outcome record for a job. Optional
// fields are pointers and serialize as explicit null when absent so the
// coordinator always sees a stable shape.
type Result struct {
	Version        int     `json:"version"`
	JobID          string  `json:"job_id"`
	Status         Status  `json:"status"`
	DurationMS     *int64  `json:"duration_ms"`
	AudioSizeBytes *int64  `json:"audio_size_bytes"`
	AudioPath      *string `json:"audio_path"`
	Error          *string `json:"error"`
	CompletedAt    string  `json:"completed_at"`
}

// NewSuccessResult builds a completed Result with all success fields set.
func NewSuccessResult(jobID string, durationMS, audioSizeBytes int64, audioPath string) Result {
	return Result{
		Version:        ProtocolVersion,
		JobID:          jobID,
		Status:         StatusCompleted,
		DurationMS:     &durationMS,
		AudioSizeBytes: &audioSizeBytes,
		AudioPath:      &audioPath,
		CompletedAt:    now(),
	}
}

// NewFailureResult builds a failed Result carrying only the error message.
func NewFailureResult(jobID, errMsg string) Result {
	return Result{
		Version:     ProtocolVersion,
		JobID:       jobID,
		Status:      StatusFailed,
		Error:       &errMsg,
		CompletedAt: now(),
	}
}

// WorkerStatus is a point-in-time snapshot of this worker. It is recomputed
// fresh on every status query and never persisted. The JSON keys match the
// coordinator's wire protocol.
type WorkerStatus struct {
	Ready            bool   `json:"ready"`
	Device           string `json:"device"`
	WorkerVersion    string `json:"gen_audio_version"`
	BackendInstalled bool   `json:"chatterbox_installed"`
	JobsInProgress   int    `json:"jobs_in_progress"`
	AvailableDiskMB  int64  `json:"available_disk_mb"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
