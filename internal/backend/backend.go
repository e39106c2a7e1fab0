// Package backend defines the capability contract for pluggable speech
// synthesis backends and the registry that manages their lifecycle.
package backend

import "context"

// Synthesis option domains. Values outside these ranges are clamped by the
// backend before use.
const (
	MinExaggeration = 0.25
	MaxExaggeration = 2.0
	MinCFG          = 0.0
	MaxCFG          = 1.0
	MinTemperature  = 0.05
	MaxTemperature  = 5.0
)

// SynthesisOptions are the per-call tuning parameters passed to Synthesize.
type SynthesisOptions struct {
	// Exaggeration controls expressiveness.
	Exaggeration float64
	// CFG is the pacing/classifier-free-guidance weight.
	CFG float64
	// Temperature controls sampling randomness.
	Temperature float64
	// VoiceRef is the path to a voice reference audio file for voice
	// conditioning. Empty means the backend's default voice.
	VoiceRef string
}

// Clamped returns a copy with each numeric option forced into its
// documented domain.
func (o SynthesisOptions) Clamped() SynthesisOptions {
	o.Exaggeration = clamp(o.Exaggeration, MinExaggeration, MaxExaggeration)
	o.CFG = clamp(o.CFG, MinCFG, MaxCFG)
	o.Temperature = clamp(o.Temperature, MinTemperature, MaxTemperature)
	return o
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Backend is the contract a speech synthesis implementation must satisfy.
// Implementations are not safe for concurrent Synthesize calls on the same
// instance.
type Backend interface {
	// Name returns the backend identifier.
	Name() string
	// SampleRate returns the output sample rate in Hz.
	SampleRate() int
	// Device returns the compute device in use (cuda, mps, cpu).
	Device() string
	// IsLoaded reports whether the backend is ready to synthesize.
	IsLoaded() bool
	// Load prepares the backend. Calling it while loaded is a no-op.
	Load() error
	// Unload releases backend resources. Idempotent, best-effort; it never
	// fails.
	Unload()
	// Synthesize converts text to audio bytes in a WAV container at the
	// backend's declared sample rate. Numeric options are clamped before
	// use. Transient resources are released on every exit path.
	Synthesize(ctx context.Context, text string, opts SynthesisOptions) ([]byte, error)
}
