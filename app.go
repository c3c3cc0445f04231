package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"hummatch/internal/bootstrap"
	"hummatch/internal/config"
	"hummatch/internal/domain"
	"hummatch/internal/presenter"
	"hummatch/internal/usecase"
)

const (
	eventRecording = "hummatch:recording"
	eventTick      = "hummatch:tick"
	eventAnalysis  = "hummatch:analysis"
	eventStatus    = "hummatch:status"
	eventError     = "hummatch:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	recorder     *usecase.Recorder
	orchestrator *usecase.Orchestrator
	monitor      *usecase.StatusMonitor
	cfg          config.Config
	bootErr      error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, &wailsClipboard{})
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.recorder = services.Recorder
	a.orchestrator = services.Orchestrator
	a.monitor = services.Monitor
	a.RecordingStateChanged(a.recorder.Status(), domain.RecordingReasonReady)

	go a.monitor.Run(ctx)
}

// StartRecording opens the microphone and starts a new take.
func (a *App) StartRecording() (domain.RecordingStatus, error) {
	if err := a.requireReady(); err != nil {
		return domain.RecordingStatus{}, err
	}
	if err := a.recorder.Start(a.ctx); err != nil {
		return a.recorder.Status(), err
	}
	return a.recorder.Status(), nil
}

// StopRecording ends the take and submits it for analysis. Stopping while
// idle returns the current analysis unchanged.
func (a *App) StopRecording() (domain.AnalysisRequest, error) {
	if err := a.requireReady(); err != nil {
		return domain.AnalysisRequest{}, err
	}
	artifact, ok := a.recorder.Stop()
	if !ok {
		return a.orchestrator.Snapshot(), nil
	}
	if err := a.orchestrator.Submit(a.ctx, artifact); err != nil {
		a.SessionError(domain.ErrorCodeAnalysis, err.Error())
		return a.orchestrator.Snapshot(), err
	}
	return a.orchestrator.Snapshot(), nil
}

// AbortRecording discards an in-progress recording.
func (a *App) AbortRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.recorder.Abort(); err != nil && !errors.Is(err, usecase.ErrNoActiveSession) {
		return err
	}
	return nil
}

// GetRecordingStatus returns the recorder snapshot.
func (a *App) GetRecordingStatus() domain.RecordingStatus {
	if a.recorder == nil {
		return domain.RecordingStatus{State: domain.RecordingStateIdle}
	}
	return a.recorder.Status()
}

// GetAnalysis returns the current analysis request.
func (a *App) GetAnalysis() domain.AnalysisRequest {
	if a.orchestrator == nil {
		return domain.AnalysisRequest{Status: domain.AnalysisStatusIdle}
	}
	return a.orchestrator.Snapshot()
}

// GetResultView returns the rendered match panel for the last analysis.
func (a *App) GetResultView() presenter.View {
	return presenter.Render(a.GetAnalysis().Result)
}

// GetServiceStatus returns the startup probe result.
func (a *App) GetServiceStatus() domain.ServiceStatus {
	if a.monitor == nil {
		return domain.ServiceStatus{}
	}
	return a.monitor.Status()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"apiBase":          a.cfg.Service.BaseURL,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"sampleRate":       fmt.Sprint(a.cfg.Audio.SampleRate),
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.recorder == nil || a.orchestrator == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// RecordingStateChanged emits recorder transitions to the frontend.
func (a *App) RecordingStateChanged(status domain.RecordingStatus, reason domain.RecordingReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventRecording, map[string]any{
		"state":          string(status.State),
		"reason":         string(reason),
		"message":        recordingReasonMessage(reason),
		"elapsedSeconds": status.ElapsedSeconds,
	})
}

// RecordingTick emits the elapsed-seconds counter.
func (a *App) RecordingTick(elapsed int) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTick, map[string]int{"elapsedSeconds": elapsed})
}

// AnalysisChanged emits the analysis request together with its rendered view.
func (a *App) AnalysisChanged(request domain.AnalysisRequest) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventAnalysis, map[string]any{
		"request": request,
		"view":    presenter.Render(request.Result),
	})
}

// ServiceStatusChanged emits service probe updates.
func (a *App) ServiceStatusChanged(status domain.ServiceStatus) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventStatus, status)
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func recordingReasonMessage(reason domain.RecordingReason) string {
	switch reason {
	case domain.RecordingReasonReady:
		return "Ready to record"
	case domain.RecordingReasonStarted:
		return "Recording... hum your melody"
	case domain.RecordingReasonFinalizing:
		return "Finishing recording"
	case domain.RecordingReasonStopped:
		return "Recording stopped. Analyzing..."
	case domain.RecordingReasonDiscarded:
		return "Recording discarded"
	case domain.RecordingReasonDeviceLost:
		return "Microphone disconnected; recording discarded"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodePermissionDenied:
		return "Microphone access denied"
	case domain.ErrorCodeDeviceUnavailable:
		return "Microphone unavailable"
	case domain.ErrorCodeAudioStop:
		return "Audio stop issue"
	case domain.ErrorCodeAudioStream:
		return "Audio streaming issue"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	case domain.ErrorCodeAnalysis:
		if detail == "" {
			return "Analysis failed"
		}
		return detail
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
