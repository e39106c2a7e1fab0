package protocol

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeJob_Full(t *testing.T) {
	input := `{
		"version": 1,
		"job_id": "abc",
		"session_id": "sess-1",
		"chapter_id": 3,
		"chunk_id": 7,
		"text": "hello world",
		"options": {
			"exaggeration": 1.2,
			"cfg": 0.3,
			"temperature": 0.9,
			"voice_ref_hash": "deadbeef"
		},
		"created_at": "2026-01-02T03:04:05Z"
	}`

	job, err := DecodeJob([]byte(input))
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}

	want := &Job{
		Version:   1,
		JobID:     "abc",
		SessionID: "sess-1",
		ChapterID: 3,
		ChunkID:   7,
		Text:      "hello world",
		Options: JobOptions{
			Exaggeration: 1.2,
			CFG:          0.3,
			Temperature:  0.9,
			VoiceRefHash: "deadbeef",
		},
		CreatedAt: "2026-01-02T03:04:05Z",
	}

	if !reflect.DeepEqual(job, want) {
		t.Errorf("DecodeJob() = %+v, want %+v", job, want)
	}
}

func TestDecodeJob_Defaults(t *testing.T) {
	job, err := DecodeJob([]byte(`{"job_id": "abc", "text": "hi"}`))
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}

	if job.Version != ProtocolVersion {
		t.Errorf("Version = %d, want %d", job.Version, ProtocolVersion)
	}
	if job.SessionID != "" {
		t.Errorf("SessionID = %q, want empty", job.SessionID)
	}
	if job.ChapterID != 0 || job.ChunkID != 0 {
		t.Errorf("ChapterID/ChunkID = %d/%d, want 0/0", job.ChapterID, job.ChunkID)
	}
	if job.Options.Exaggeration != DefaultExaggeration {
		t.Errorf("Exaggeration = %v, want %v", job.Options.Exaggeration, DefaultExaggeration)
	}
	if job.Options.CFG != DefaultCFG {
		t.Errorf("CFG = %v, want %v", job.Options.CFG, DefaultCFG)
	}
	if job.Options.Temperature != DefaultTemperature {
		t.Errorf("Temperature = %v, want %v", job.Options.Temperature, DefaultTemperature)
	}
	if job.Options.VoiceRefHash != "" {
		t.Errorf("VoiceRefHash = %q, want empty", job.Options.VoiceRefHash)
	}
	if job.CreatedAt == "" {
		t.Error("CreatedAt should default to the current time")
	}
}

func TestDecodeJob_ZeroOptionsNotDefaulted(t *testing.T) {
	// An explicit zero must survive decoding; clamping is the backend's
	// job, not the codec's.
	job, err := DecodeJob([]byte(`{"job_id": "abc", "text": "hi", "options": {"cfg": 0.0, "exaggeration": 10.0}}`))
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}
	if job.Options.CFG != 0.0 {
		t.Errorf("CFG = %v, want 0.0", job.Options.CFG)
	}
	if job.Options.Exaggeration != 10.0 {
		t.Errorf("Exaggeration = %v, want 10.0 (no clamping at decode time)", job.Options.Exaggeration)
	}
}

func TestDecodeJob_Malformed(t *testing.T) {
	_, err := DecodeJob([]byte("not json"))
	if err == nil {
		t.Fatal("expected error for malformed input")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if decodeErr.JobID != UnknownJobID {
		t.Errorf("JobID = %q, want %q", decodeErr.JobID, UnknownJobID)
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("error %q should contain 'invalid JSON'", err.Error())
	}
}

func TestDecodeJob_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
		wantJobID string
	}{
		{"no job_id", `{"text": "hi"}`, "job_id", UnknownJobID},
		{"empty job_id", `{"job_id": "", "text": "hi"}`, "job_id", UnknownJobID},
		{"no text", `{"job_id": "abc"}`, "text", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJob([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if decodeErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", decodeErr.Field, tt.wantField)
			}
			if decodeErr.JobID != tt.wantJobID {
				t.Errorf("JobID = %q, want %q", decodeErr.JobID, tt.wantJobID)
			}
		})
	}
}

func TestJob_RoundTrip(t *testing.T) {
	original, err := DecodeJob([]byte(`{"job_id": "rt-1", "text": "round trip", "options": {"voice_ref_hash": "cafe"}}`))
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}

	data, err := EncodeJob(*original)
	if err != nil {
		t.Fatalf("EncodeJob() error = %v", err)
	}

	decoded, err := DecodeJob(data)
	if err != nil {
		t.Fatalf("DecodeJob(encoded) error = %v", err)
	}

	if !reflect.DeepEqual(decoded, original) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestEncodeResult_FailureHasExplicitNulls(t *testing.T) {
	res := NewFailureResult("abc", "synthesis blew up")

	data, err := EncodeResult(res)
	if err != nil {
		t.Fatalf("EncodeResult() error = %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}

	// Absent optional fields must serialize as explicit null, not be
	// dropped, so the coordinator sees a stable shape.
	for _, key := range []string{"duration_ms", "audio_size_bytes", "audio_path"} {
		raw, ok := fields[key]
		if !ok {
			t.Errorf("field %q missing from encoded result", key)
			continue
		}
		if string(raw) != "null" {
			t.Errorf("field %q = %s, want null", key, raw)
		}
	}

	if string(fields["status"]) != `"failed"` {
		t.Errorf("status = %s, want \"failed\"", fields["status"])
	}
	if string(fields["error"]) != `"synthesis blew up"` {
		t.Errorf("error = %s, want the failure message", fields["error"])
	}
}

func TestEncodeResult_SuccessInvariant(t *testing.T) {
	res := NewSuccessResult("abc", 1200, 4096, "/tmp/output/abc.wav")

	if res.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", res.Status, StatusCompleted)
	}
	if res.DurationMS == nil || *res.DurationMS != 1200 {
		t.Error("DurationMS must be present on a completed result")
	}
	if res.AudioSizeBytes == nil || *res.AudioSizeBytes != 4096 {
		t.Error("AudioSizeBytes must be present on a completed result")
	}
	if res.AudioPath == nil || *res.AudioPath != "/tmp/output/abc.wav" {
		t.Error("AudioPath must be present on a completed result")
	}
	if res.Error != nil {
		t.Errorf("Error = %q, want absent on a completed result", *res.Error)
	}
	if res.Version != ProtocolVersion {
		t.Errorf("Version = %d, want %d", res.Version, ProtocolVersion)
	}
	if res.CompletedAt == "" {
		t.Error("CompletedAt must be set")
	}
}

func TestEncodeStatus_WireKeys(t *testing.T) {
	status := WorkerStatus{
		Ready:            true,
		Device:           "cpu",
		WorkerVersion:    "0.1.0",
		BackendInstalled: true,
		JobsInProgress:   0,
		AvailableDiskMB:  1024,
	}

	data, err := EncodeStatus(status)
	if err != nil {
		t.Fatalf("EncodeStatus() error = %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("status is not valid JSON: %v", err)
	}

	// Keys must match the coordinator's wire protocol exactly.
	for _, key := range []string{"ready", "device", "gen_audio_version", "chatterbox_installed", "jobs_in_progress", "available_disk_mb"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("field %q missing from encoded status", key)
		}
	}
}
