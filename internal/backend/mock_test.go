package backend

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/genaudio/gen-audio-worker-go/internal/wav"
)

func TestMock_SynthesizeProducesWAV(t *testing.T) {
	m := NewMock()

	audio, err := m.Synthesize(context.Background(), "hello", SynthesisOptions{
		Exaggeration: 0.5, CFG: 0.5, Temperature: 0.8,
	})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if len(audio) <= wav.HeaderSize {
		t.Errorf("audio too small: %d bytes", len(audio))
	}
	if !bytes.Equal(audio[0:4], []byte("RIFF")) {
		t.Error("audio is not a WAV container")
	}

	// Synthesize auto-loads
	if !m.IsLoaded() {
		t.Error("Synthesize should have loaded the backend")
	}
}

func TestMock_SynthesizeClampsOptions(t *testing.T) {
	m := NewMock()

	_, err := m.Synthesize(context.Background(), "hello", SynthesisOptions{
		Exaggeration: 10.0,
		CFG:          -1.0,
		Temperature:  0.0,
	})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	got := m.LastOptions()
	if got.Exaggeration != MaxExaggeration {
		t.Errorf("Exaggeration = %v, want clamped to %v", got.Exaggeration, MaxExaggeration)
	}
	if got.CFG != MinCFG {
		t.Errorf("CFG = %v, want clamped to %v", got.CFG, MinCFG)
	}
	if got.Temperature != MinTemperature {
		t.Errorf("Temperature = %v, want clamped to %v", got.Temperature, MinTemperature)
	}
}

func TestMock_FailureInjection(t *testing.T) {
	m := NewMock()
	m.FailWith = errors.New("model exploded")

	_, err := m.Synthesize(context.Background(), "hello", SynthesisOptions{})
	if err == nil || err.Error() != "model exploded" {
		t.Errorf("expected injected failure, got %v", err)
	}
}

func TestMock_SynthesizeCancelled(t *testing.T) {
	m := NewMock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Synthesize(ctx, "hello", SynthesisOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
