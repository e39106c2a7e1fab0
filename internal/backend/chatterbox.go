package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"

	"github.com/genaudio/gen-audio-worker-go/internal/wav"
)

var (
	// ErrChatterboxNotFound is returned when the chatterbox binary is not found.
	ErrChatterboxNotFound = errors.New("chatterbox binary not found")
	// ErrSynthesisFailed is returned when synthesis fails.
	ErrSynthesisFailed = errors.New("synthesis failed")
)

// ChatterboxName is the registry name of the reference backend.
const ChatterboxName = "chatterbox"

// ChatterboxConfig holds configuration for the Chatterbox backend.
type ChatterboxConfig struct {
	// BinaryPath is the path to the chatterbox executable.
	BinaryPath string
	// ModelDir is the directory holding model weights. Empty uses the
	// binary's default.
	ModelDir string
	// Device selects the compute device. Empty means auto-detect.
	Device string
}

// Chatterbox drives the external chatterbox CLI for neural text-to-speech.
// It supports voice cloning from reference audio, expressiveness control,
// and GPU acceleration.
type Chatterbox struct {
	config ChatterboxConfig
	device string
	logger *slog.Logger
	loaded bool
}

// NewChatterbox creates a Chatterbox backend. The binary is not verified
// until Load.
func NewChatterbox(cfg ChatterboxConfig, logger *slog.Logger) *Chatterbox {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "chatterbox"
	}
	device := cfg.Device
	if device == "" {
		device = DetectDevice()
	}
	return &Chatterbox{
		config: cfg,
		device: device,
		logger: logger,
	}
}

// Name returns the backend identifier.
func (c *Chatterbox) Name() string {
	return ChatterboxName
}

// SampleRate returns the output sample rate in Hz.
func (c *Chatterbox) SampleRate() int {
	return wav.ChatterboxSampleRate
}

// Device returns the compute device in use.
func (c *Chatterbox) Device() string {
	return c.device
}

// IsLoaded reports whether Load has succeeded.
func (c *Chatterbox) IsLoaded() bool {
	return c.loaded
}

// Load verifies the chatterbox binary is available. No-op when already
// loaded.
func (c *Chatterbox) Load() error {
	if c.loaded {
		return nil
	}
	if _, err := exec.LookPath(c.config.BinaryPath); err != nil {
		return fmt.Errorf("%w: %s", ErrChatterboxNotFound, c.config.BinaryPath)
	}
	c.loaded = true
	c.logger.Info("chatterbox backend loaded",
		"binary", c.config.BinaryPath,
		"device", c.device,
	)
	return nil
}

// Unload clears the loaded flag. The model lives in the CLI subprocess, so
// there is nothing else to release here.
func (c *Chatterbox) Unload() {
	if !c.loaded {
		return
	}
	c.loaded = false
	c.logger.Debug("chatterbox backend unloaded")
}

// Synthesize converts text to WAV audio bytes. Numeric options are clamped
// into their documented ranges first. The per-call scratch directory is
// removed on every exit path, including failures.
func (c *Chatterbox) Synthesize(ctx context.Context, text string, opts SynthesisOptions) ([]byte, error) {
	if !c.loaded {
		if err := c.Load(); err != nil {
			return nil, err
		}
	}
	if text == "" {
		return nil, errors.New("empty text")
	}

	opts = opts.Clamped()

	// Scratch space for the CLI's transient buffers, released after every
	// attempt to bound peak usage across consecutive jobs.
	scratchDir, err := os.MkdirTemp("", "chatterbox-")
	if err != nil {
		return nil, fmt.Errorf("%w: create scratch dir: %v", ErrSynthesisFailed, err)
	}
	defer c.releaseScratch(scratchDir)

	args := []string{
		"--device", c.device,
		"--output-raw",
		"--scratch-dir", scratchDir,
		"--exaggeration", formatFloat(opts.Exaggeration),
		"--cfg-weight", formatFloat(opts.CFG),
		"--temperature", formatFloat(opts.Temperature),
	}
	if c.config.ModelDir != "" {
		args = append(args, "--model-dir", c.config.ModelDir)
	}
	if opts.VoiceRef != "" {
		args = append(args, "--voice-ref", opts.VoiceRef)
	}

	c.logger.Debug("running chatterbox",
		"binary", c.config.BinaryPath,
		"device", c.device,
		"voice_ref", opts.VoiceRef,
		"text_length", len(text),
	)

	cmd := exec.CommandContext(ctx, c.config.BinaryPath, args...)
	cmd.Stdin = bytes.NewReader([]byte(text))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("chatterbox failed",
			"error", err,
			"stderr", stderr.String(),
		)
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	rawAudio := stdout.Bytes()
	if len(rawAudio) == 0 {
		return nil, fmt.Errorf("%w: no audio output", ErrSynthesisFailed)
	}

	c.logger.Debug("chatterbox synthesis complete",
		"output_bytes", len(rawAudio),
	)

	// Chatterbox outputs raw 16-bit PCM mono at 24000 Hz.
	return wav.WrapRawPCM(rawAudio, wav.ChatterboxSampleRate, wav.ChatterboxChannels, wav.ChatterboxBitsPerSample), nil
}

// releaseScratch removes the per-call scratch directory. Failures are logged
// and swallowed.
func (c *Chatterbox) releaseScratch(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		c.logger.Warn("failed to remove scratch dir", "dir", dir, "error", err)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
