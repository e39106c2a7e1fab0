package worker

import (
	"os"
	"slices"

	"golang.org/x/sys/unix"

	"github.com/genaudio/gen-audio-worker-go/internal/backend"
	"github.com/genaudio/gen-audio-worker-go/internal/config"
	"github.com/genaudio/gen-audio-worker-go/internal/protocol"
)

// BuildStatus assembles a fresh worker status snapshot. Read-only: it probes
// the device and disk and queries the registry, with no protocol side
// effects. Probe errors degrade fields to safe defaults instead of failing
// the status operation.
func BuildStatus(cfg *config.Config, registry *backend.Registry) protocol.WorkerStatus {
	device := cfg.Device
	if device == "" {
		device = backend.DetectDevice()
	}

	return protocol.WorkerStatus{
		Ready:            true,
		Device:           device,
		WorkerVersion:    Version,
		BackendInstalled: slices.Contains(registry.ListAvailable(), backend.ChatterboxName),
		JobsInProgress:   0,
		AvailableDiskMB:  availableDiskMB(cfg.WorkerDir),
	}
}

// availableDiskMB probes free disk space for the worker root, falling back
// to the home directory when the root does not exist yet, and to 0 on any
// probe error. Advisory only; never gates job admission.
func availableDiskMB(root string) int64 {
	path := root
	if _, err := os.Stat(path); err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return 0
		}
		path = home
	}

	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0
	}

	return int64(st.Bavail) * int64(st.Bsize) / (1024 * 1024)
}
