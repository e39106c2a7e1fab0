package protocol

import (
	"encoding/json"
	"fmt"
)

// DecodeError reports a job that could not be decoded. JobID carries the
// best-available job identifier for keying the failure result; it falls back
// to UnknownJobID when nothing is recoverable from the input.
type DecodeError struct {
	JobID string
	// Field is set when a required field is absent.
	Field string
	// cause is set when the input is not valid JSON.
	cause error
}

func (e *DecodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid JSON: %v", e.cause)
	}
	return fmt.Sprintf("invalid job: missing field %q", e.Field)
}

func (e *DecodeError) Unwrap() error {
	return e.cause
}

// rawJob mirrors Job with pointer fields so absent and present-but-zero
// values can be told apart during decoding.
type rawJob struct {
	Version   *int        `json:"version"`
	JobID     *string     `json:"job_id"`
	SessionID *string     `json:"session_id"`
	ChapterID *int        `json:"chapter_id"`
	ChunkID   *int        `json:"chunk_id"`
	Text      *string     `json:"text"`
	Options   *rawOptions `json:"options"`
	CreatedAt *string     `json:"created_at"`
}

type rawOptions struct {
	Exaggeration *float64 `json:"exaggeration"`
	CFG          *float64 `json:"cfg"`
	Temperature  *float64 `json:"temperature"`
	VoiceRefHash *string  `json:"voice_ref_hash"`
}

// DecodeJob parses a Job from coordinator input. job_id and text are
// required; every other field defaults. The returned error is always a
// *DecodeError. No side effects.
func DecodeJob(data []byte) (*Job, error) {
	var raw rawJob
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodeError{JobID: UnknownJobID, cause: err}
	}

	if raw.JobID == nil || *raw.JobID == "" {
		return nil, &DecodeError{JobID: UnknownJobID, Field: "job_id"}
	}
	if raw.Text == nil {
		return nil, &DecodeError{JobID: *raw.JobID, Field: "text"}
	}

	job := &Job{
		Version: ProtocolVersion,
		JobID:   *raw.JobID,
		Text:    *raw.Text,
		Options: JobOptions{
			Exaggeration: DefaultExaggeration,
			CFG:          DefaultCFG,
			Temperature:  DefaultTemperature,
		},
		CreatedAt: now(),
	}

	if raw.Version != nil {
		job.Version = *raw.Version
	}
	if raw.SessionID != nil {
		job.SessionID = *raw.SessionID
	}
	if raw.ChapterID != nil {
		job.ChapterID = *raw.ChapterID
	}
	if raw.ChunkID != nil {
		job.ChunkID = *raw.ChunkID
	}
	if raw.CreatedAt != nil {
		job.CreatedAt = *raw.CreatedAt
	}
	if raw.Options != nil {
		if raw.Options.Exaggeration != nil {
			job.Options.Exaggeration = *raw.Options.Exaggeration
		}
		if raw.Options.CFG != nil {
			job.Options.CFG = *raw.Options.CFG
		}
		if raw.Options.Temperature != nil {
			job.Options.Temperature = *raw.Options.Temperature
		}
		if raw.Options.VoiceRefHash != nil {
			job.Options.VoiceRefHash = *raw.Options.VoiceRefHash
		}
	}

	return job, nil
}

// EncodeJob serializes a Job for the coordinator. Deterministic, no side
// effects.
func EncodeJob(job Job) ([]byte, error) {
	return json.Marshal(job)
}

// EncodeResult serializes a Result. Absent optional fields serialize as
// explicit null, never get dropped.
func EncodeResult(res Result) ([]byte, error) {
	return json.Marshal(res)
}

// EncodeStatus serializes a WorkerStatus snapshot.
func EncodeStatus(status WorkerStatus) ([]byte, error) {
	return json.Marshal(status)
}
