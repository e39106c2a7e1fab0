// Package worker drives single-job execution and status reporting.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/genaudio/gen-audio-worker-go/internal/backend"
	"github.com/genaudio/gen-audio-worker-go/internal/config"
	"github.com/genaudio/gen-audio-worker-go/internal/protocol"
	"github.com/genaudio/gen-audio-worker-go/internal/voicestore"
)

// Version is the worker version reported to the coordinator.
const Version = "0.1.0"

// ArtifactWriteError reports a failure to persist an audio or result
// artifact.
type ArtifactWriteError struct {
	Path string
	Err  error
}

func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("write artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactWriteError) Unwrap() error {
	return e.Err
}

// Driver executes exactly one job per invocation: decode, prepare the
// backend, resolve the voice reference, synthesize, persist, report.
type Driver struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *backend.Registry
	voices   *voicestore.Store
}

// NewDriver creates a driver over an explicit registry.
func NewDriver(cfg *config.Config, logger *slog.Logger, registry *backend.Registry) *Driver {
	return &Driver{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		voices:   voicestore.New(cfg.VoicesDir()),
	}
}

// Run reads one encoded job from input, executes it, writes the result
// artifact, and prints only that artifact's path to output. The returned
// process exit code is non-zero only for decode failures; post-decode
// failures are fully captured in the result artifact, so the coordinator can
// tell "job never ran" from "job ran and failed".
func (d *Driver) Run(ctx context.Context, input io.Reader, output io.Writer) int {
	data, err := io.ReadAll(input)
	if err != nil {
		d.logger.Error("failed to read job input", "error", err)
		res := protocol.NewFailureResult(protocol.UnknownJobID, fmt.Sprintf("read input: %v", err))
		d.reportResult(res, output)
		return 1
	}

	job, err := protocol.DecodeJob(data)
	if err != nil {
		jobID := protocol.UnknownJobID
		var decodeErr *protocol.DecodeError
		if errors.As(err, &decodeErr) {
			jobID = decodeErr.JobID
		}
		d.logger.Error("failed to decode job", "job_id", jobID, "error", err)
		res := protocol.NewFailureResult(jobID, err.Error())
		d.reportResult(res, output)
		return 1
	}

	d.logger.Info("job decoded",
		"job_id", job.JobID,
		"session_id", job.SessionID,
		"chapter_id", job.ChapterID,
		"chunk_id", job.ChunkID,
		"text_length", len(job.Text),
	)

	res := d.execute(ctx, job)
	if !d.reportResult(res, output) {
		// Without a result artifact the coordinator learns nothing, so
		// this is the one post-decode failure that must change the exit
		// code.
		return 1
	}

	return 0
}

// execute runs the post-decode states and always returns a terminal result.
// Errors from any state are converted into a failure result, never
// propagated.
func (d *Driver) execute(ctx context.Context, job *protocol.Job) protocol.Result {
	start := time.Now()

	// Preparing
	b, err := d.registry.Get(d.cfg.Backend)
	if err != nil {
		d.logger.Error("backend unavailable", "backend", d.cfg.Backend, "error", err)
		return protocol.NewFailureResult(job.JobID, err.Error())
	}
	if !b.IsLoaded() {
		if err := b.Load(); err != nil {
			d.logger.Error("backend load failed", "backend", b.Name(), "error", err)
			return protocol.NewFailureResult(job.JobID, err.Error())
		}
	}

	// Resolving-Voice
	opts := backend.SynthesisOptions{
		Exaggeration: job.Options.Exaggeration,
		CFG:          job.Options.CFG,
		Temperature:  job.Options.Temperature,
	}
	if hash := job.Options.VoiceRefHash; hash != "" {
		if path, ok := d.voices.Resolve(hash); ok {
			opts.VoiceRef = path
		} else {
			d.logger.Info("voice reference not found, using default voice",
				"job_id", job.JobID,
				"voice_ref_hash", hash,
			)
		}
	}

	// Synthesizing
	audio, err := b.Synthesize(ctx, job.Text, opts)
	if err != nil {
		d.logger.Error("synthesis failed", "job_id", job.JobID, "error", err)
		return protocol.NewFailureResult(job.JobID, err.Error())
	}

	// Persisting
	audioPath, err := d.writeAudio(job.JobID, audio)
	if err != nil {
		d.logger.Error("failed to write audio artifact", "job_id", job.JobID, "error", err)
		return protocol.NewFailureResult(job.JobID, err.Error())
	}

	durationMS := time.Since(start).Milliseconds()
	d.logger.Info("job completed",
		"job_id", job.JobID,
		"duration_ms", durationMS,
		"audio_size_bytes", len(audio),
		"audio_path", audioPath,
	)

	return protocol.NewSuccessResult(job.JobID, durationMS, int64(len(audio)), audioPath)
}

// writeAudio persists synthesized audio under output/{job_id}.wav and
// returns the absolute artifact path.
func (d *Driver) writeAudio(jobID string, audio []byte) (string, error) {
	if err := os.MkdirAll(d.cfg.OutputDir(), 0o755); err != nil {
		return "", &ArtifactWriteError{Path: d.cfg.OutputDir(), Err: err}
	}

	path := filepath.Join(d.cfg.OutputDir(), jobID+".wav")
	if err := writeFileAtomic(path, audio); err != nil {
		return "", &ArtifactWriteError{Path: path, Err: err}
	}

	return absPath(path), nil
}

// reportResult writes the result artifact under results/{job_id}.json and
// prints its absolute path to output, the only content allowed on the
// protocol channel. Reports whether the artifact was written.
func (d *Driver) reportResult(res protocol.Result, output io.Writer) bool {
	data, err := protocol.EncodeResult(res)
	if err != nil {
		d.logger.Error("failed to encode result", "job_id", res.JobID, "error", err)
		return false
	}

	if err := os.MkdirAll(d.cfg.ResultsDir(), 0o755); err != nil {
		d.logger.Error("failed to create results dir", "dir", d.cfg.ResultsDir(), "error", err)
		return false
	}

	path := filepath.Join(d.cfg.ResultsDir(), res.JobID+".json")
	if err := writeFileAtomic(path, data); err != nil {
		d.logger.Error("failed to write result artifact", "path", path, "error", err)
		return false
	}

	fmt.Fprintln(output, absPath(path))
	return true
}

// writeFileAtomic writes data to a uniquely named temp file in the target
// directory, then renames it into place. A partially written artifact is
// never visible under its final name.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp-" + uuid.New().String()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// absPath resolves path to absolute, falling back to the input on error.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
