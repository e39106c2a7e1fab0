package backend

import (
	"context"

	"github.com/genaudio/gen-audio-worker-go/internal/wav"
)

// MockName is the registry name of the in-process mock backend.
const MockName = "mock"

// Mock is an in-process backend producing silent WAV audio. It is used for
// offline runs and tests; FailWith injects synthesis failures.
type Mock struct {
	// FailWith, when non-nil, is returned by every Synthesize call.
	FailWith error

	loaded     bool
	lastOpts   SynthesisOptions
	synthCount int
}

// NewMock creates a mock backend.
func NewMock() *Mock {
	return &Mock{}
}

// Name returns the backend identifier.
func (m *Mock) Name() string {
	return MockName
}

// SampleRate returns the output sample rate in Hz.
func (m *Mock) SampleRate() int {
	return wav.ChatterboxSampleRate
}

// Device always reports cpu; the mock never touches an accelerator.
func (m *Mock) Device() string {
	return DeviceCPU
}

// IsLoaded reports whether Load has been called.
func (m *Mock) IsLoaded() bool {
	return m.loaded
}

// Load marks the backend loaded. Never fails.
func (m *Mock) Load() error {
	m.loaded = true
	return nil
}

// Unload clears the loaded flag.
func (m *Mock) Unload() {
	m.loaded = false
}

// Synthesize produces 0.25 seconds of silence in a WAV container, or
// FailWith when set. Options are clamped as a real backend would.
func (m *Mock) Synthesize(ctx context.Context, text string, opts SynthesisOptions) ([]byte, error) {
	if !m.loaded {
		if err := m.Load(); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.lastOpts = opts.Clamped()
	m.synthCount++

	if m.FailWith != nil {
		return nil, m.FailWith
	}

	numSamples := wav.ChatterboxSampleRate / 4
	return wav.CreateMinimalChatterbox(numSamples), nil
}

// LastOptions returns the clamped options of the most recent Synthesize
// call. Test hook.
func (m *Mock) LastOptions() SynthesisOptions {
	return m.lastOpts
}

// SynthesizeCount returns how many Synthesize calls were made. Test hook.
func (m *Mock) SynthesizeCount() int {
	return m.synthCount
}
