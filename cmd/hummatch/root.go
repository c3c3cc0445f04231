package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"hummatch/internal/bootstrap"
	"hummatch/internal/config"
	"hummatch/internal/domain"
	"hummatch/internal/presenter"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hummatch",
		Short:         "Hum a melody and find the song.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRecordCmd(),
		newIdentifyCmd(),
		newStatusCmd(),
		newSongsCmd(),
		newSongCmd(),
	)
	return root
}

// cliLogLevel keeps routine log lines off the terminal shared with the tick
// display unless HUMMATCH_LOG_LEVEL asks for them.
const cliLogLevel = "warn"

// buildServices wires the backend with terminal event output. The clipboard is
// left unset so results are only printed.
func buildServices(cmd *cobra.Command) (bootstrap.Services, error) {
	return bootstrap.Build(newTerminalEvents(cmd.ErrOrStderr()), nil, config.WithLogLevel(cliLogLevel))
}

// printAnalysis writes the result panel or the failure message.
func printAnalysis(out io.Writer, request domain.AnalysisRequest) error {
	switch request.Status {
	case domain.AnalysisStatusSucceeded:
		view := presenter.Render(request.Result)
		if view.Empty() {
			fmt.Fprintln(out, "No matches found.")
			return nil
		}
		fmt.Fprint(out, presenter.Text(view))
		return nil
	case domain.AnalysisStatusFailed:
		return fmt.Errorf("%s", request.Error)
	default:
		return fmt.Errorf("analysis did not finish (%s)", request.Status)
	}
}

// terminalEvents prints recorder progress and errors for the CLI.
type terminalEvents struct {
	mu  sync.Mutex
	out io.Writer
}

func newTerminalEvents(out io.Writer) *terminalEvents {
	return &terminalEvents{out: out}
}

func (e *terminalEvents) RecordingStateChanged(status domain.RecordingStatus, reason domain.RecordingReason) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch reason {
	case domain.RecordingReasonStarted:
		fmt.Fprintln(e.out, "Recording... hum your melody (Enter to stop, Ctrl+C to cancel)")
	case domain.RecordingReasonStopped:
		fmt.Fprintf(e.out, "\nRecorded %ds\n", status.ElapsedSeconds)
	case domain.RecordingReasonDeviceLost:
		fmt.Fprintln(e.out, "\nMicrophone disconnected; recording discarded")
	}
}

func (e *terminalEvents) RecordingTick(elapsed int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.out, "\r%ds", elapsed)
}

func (e *terminalEvents) AnalysisChanged(request domain.AnalysisRequest) {
	if request.Status != domain.AnalysisStatusPending {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.out, "Analyzing...")
}

func (e *terminalEvents) ServiceStatusChanged(domain.ServiceStatus) {}

func (e *terminalEvents) SessionError(code domain.ErrorCode, detail string) {
	// Analysis failures are returned by the command itself.
	if code == domain.ErrorCodeAnalysis {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.out, "error [%s]: %s\n", code, detail)
}

func withCommandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
