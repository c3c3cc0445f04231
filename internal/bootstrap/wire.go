package bootstrap

import (
	"go.uber.org/zap"

	"hummatch/internal/audio"
	"hummatch/internal/config"
	"hummatch/internal/logger"
	"hummatch/internal/ports"
	"hummatch/internal/recognizer"
	"hummatch/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Recorder     *usecase.Recorder
	Orchestrator *usecase.Orchestrator
	Monitor      *usecase.StatusMonitor
	Client       *recognizer.Client
	Config       config.Config
	Logger       *zap.Logger
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink, clipboard ports.Clipboard, opts ...config.Option) (Services, error) {
	cfg, err := config.Load(opts...)
	if err != nil {
		return Services{}, err
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		OutputPath: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return Services{}, err
	}

	client := recognizer.NewClient(recognizer.Config{
		BaseURL:           cfg.Service.BaseURL,
		Timeout:           cfg.Service.RequestTimeout,
		RequestsPerSecond: cfg.Service.RateLimit,
		Burst:             cfg.Service.RateBurst,
		TempDir:           cfg.Audio.TempDir,
	}, log)

	recorder := usecase.NewRecorder(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand, log),
		eventSink,
		log,
		usecase.RecorderConfig{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			ChunkSize:    cfg.Session.ChunkSize,
			TickInterval: cfg.Session.TickInterval,
		},
	)

	orchestrator := usecase.NewOrchestrator(client, clipboard, eventSink, log, usecase.OrchestratorConfig{
		CopyBestMatch: cfg.Session.CopyBestMatch,
	})

	monitor := usecase.NewStatusMonitor(client, eventSink, log, cfg.Service.ProbeTimeout)

	log.Debug("services wired",
		zap.String("api", cfg.Service.BaseURL),
		zap.String("input", cfg.Audio.InputFormat+":"+cfg.Audio.InputDevice),
	)

	return Services{
		Recorder:     recorder,
		Orchestrator: orchestrator,
		Monitor:      monitor,
		Client:       client,
		Config:       cfg,
		Logger:       log,
	}, nil
}
