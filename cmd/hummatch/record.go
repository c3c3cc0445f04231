package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"hummatch/internal/audio"
	"hummatch/internal/domain"
)

var (
	errRecordingLost      = errors.New("recording ended before it could be analyzed")
	errRecordingCancelled = errors.New("recording cancelled")
)

func newRecordCmd() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a hum from the microphone and identify it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := buildServices(cmd)
			if err != nil {
				return err
			}
			defer services.Logger.Sync()

			ctx := withCommandContext(cmd)
			if err := services.Recorder.Start(ctx); err != nil {
				return err
			}

			// Ctrl+C reaches ffmpeg too, so it cancels; Enter stops and keeps the take.
			interrupted, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			enter := make(chan struct{})
			go func() {
				if _, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n'); err == nil {
					close(enter)
				}
			}()

			var deadline <-chan time.Time
			if duration > 0 {
				timer := time.NewTimer(duration)
				defer timer.Stop()
				deadline = timer.C
			}

			poll := time.NewTicker(100 * time.Millisecond)
			defer poll.Stop()
		wait:
			for {
				select {
				case <-interrupted.Done():
					_ = services.Recorder.Abort()
					return errRecordingCancelled
				case <-enter:
					break wait
				case <-deadline:
					break wait
				case <-poll.C:
					if services.Recorder.State() != domain.RecordingStateRecording {
						return errRecordingLost
					}
				}
			}

			artifact, ok := services.Recorder.Stop()
			if !ok {
				return errRecordingLost
			}
			request, err := services.Orchestrator.Analyze(ctx, artifact)
			if err != nil {
				return err
			}
			return printAnalysis(cmd.OutOrStdout(), request)
		},
	}
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "stop automatically after this long (default: until Enter)")
	return cmd
}

func newIdentifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identify FILE.wav",
		Short: "Identify a hum from a WAV recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			artifact, err := audio.LoadWAV(args[0])
			if err != nil {
				return err
			}

			services, err := buildServices(cmd)
			if err != nil {
				return err
			}
			defer services.Logger.Sync()

			fmt.Fprintf(cmd.ErrOrStderr(), "Loaded %s (%ds, %s)\n", args[0], artifact.Duration, humanize.Bytes(uint64(artifact.Size())))
			request, err := services.Orchestrator.Analyze(withCommandContext(cmd), artifact)
			if err != nil {
				return err
			}
			return printAnalysis(cmd.OutOrStdout(), request)
		},
	}
}
