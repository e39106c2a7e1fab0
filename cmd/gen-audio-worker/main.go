// Command gen-audio-worker is the TTS worker for gen-audio.
//
// It runs one operation per invocation:
//
//	gen-audio-worker status   print a worker status snapshot as JSON
//	gen-audio-worker run      read one job from stdin, synthesize, print
//	                          the result artifact path
//
// stdout carries only protocol output; all diagnostics go to stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/genaudio/gen-audio-worker-go/internal/backend"
	"github.com/genaudio/gen-audio-worker-go/internal/config"
	"github.com/genaudio/gen-audio-worker-go/internal/logging"
	"github.com/genaudio/gen-audio-worker-go/internal/protocol"
	"github.com/genaudio/gen-audio-worker-go/internal/worker"
)

func main() {
	// Load .env if present; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use stderr before logger is initialized
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	registry := backend.NewRegistry()
	registry.Register(backend.ChatterboxName, func() (backend.Backend, error) {
		return backend.NewChatterbox(backend.ChatterboxConfig{
			BinaryPath: cfg.ChatterboxPath,
			ModelDir:   cfg.ChatterboxModelDir,
			Device:     cfg.Device,
		}, logger), nil
	})
	registry.Register(backend.MockName, func() (backend.Backend, error) {
		return backend.NewMock(), nil
	})

	switch os.Args[1] {
	case "status":
		data, err := protocol.EncodeStatus(worker.BuildStatus(cfg, registry))
		if err != nil {
			logger.Error("failed to encode status", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(data))

	case "run":
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("starting job run",
			"version", worker.Version,
			"backend", cfg.Backend,
			"worker_dir", cfg.WorkerDir,
		)

		driver := worker.NewDriver(cfg, logger, registry)
		code := driver.Run(ctx, os.Stdin, os.Stdout)
		registry.UnloadAll()
		os.Exit(code)

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	os.Stderr.WriteString("usage: gen-audio-worker <status|run>\n")
}
