package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"hummatch/internal/domain"
	"hummatch/internal/ports"
)

var ErrAnalysisPending = errors.New("an analysis is already pending")

const networkFailureMessage = "Network error: unable to reach recognition service"

// OrchestratorConfig controls post-analysis behavior.
type OrchestratorConfig struct {
	CopyBestMatch bool
}

// Orchestrator feeds finished recordings to the recognition service and
// holds the single in-flight AnalysisRequest.
type Orchestrator struct {
	client    ports.RecognitionClient
	events    ports.EventSink
	finalizer resultFinalizer
	log       *zap.Logger

	mu      sync.Mutex
	request domain.AnalysisRequest
	done    chan struct{}
}

func NewOrchestrator(
	client ports.RecognitionClient,
	clipboard ports.Clipboard,
	events ports.EventSink,
	log *zap.Logger,
	cfg OrchestratorConfig,
) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		client:    client,
		events:    events,
		finalizer: newResultFinalizer(clipboard, events, cfg.CopyBestMatch),
		log:       log.Named("orchestrator"),
		request:   domain.AnalysisRequest{Status: domain.AnalysisStatusIdle},
	}
}

// Submit starts analysing artifact and returns without waiting for the
// service. A submission while another is pending is rejected with
// ErrAnalysisPending and leaves the pending request untouched.
func (o *Orchestrator) Submit(ctx context.Context, artifact domain.Artifact) error {
	_, err := o.submit(ctx, artifact)
	return err
}

// Analyze submits artifact and blocks until the request reaches a terminal
// state or ctx is done. The upload itself is never aborted.
func (o *Orchestrator) Analyze(ctx context.Context, artifact domain.Artifact) (domain.AnalysisRequest, error) {
	done, err := o.submit(ctx, artifact)
	if err != nil {
		return o.Snapshot(), err
	}
	select {
	case <-done:
		return o.Snapshot(), nil
	case <-ctx.Done():
		return o.Snapshot(), ctx.Err()
	}
}

// Snapshot returns a copy of the current AnalysisRequest.
func (o *Orchestrator) Snapshot() domain.AnalysisRequest {
	o.mu.Lock()
	defer o.mu.Unlock()
	return copyRequest(o.request)
}

// Wait blocks until the pending request, if any, completes.
func (o *Orchestrator) Wait(ctx context.Context) error {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) submit(ctx context.Context, artifact domain.Artifact) (<-chan struct{}, error) {
	o.mu.Lock()
	if o.request.Status == domain.AnalysisStatusPending {
		o.mu.Unlock()
		o.log.Warn("rejected artifact while analysis pending", zap.Int("bytes", artifact.Size()))
		return nil, ErrAnalysisPending
	}
	o.request = domain.AnalysisRequest{Status: domain.AnalysisStatusPending}
	done := make(chan struct{})
	o.done = done
	snapshot := copyRequest(o.request)
	o.mu.Unlock()

	o.log.Info("analysis submitted",
		zap.Int("seconds", artifact.Duration),
		zap.String("size", humanize.Bytes(uint64(artifact.Size()))),
	)
	o.events.AnalysisChanged(snapshot)

	go o.run(context.WithoutCancel(ctx), artifact, done)
	return done, nil
}

func (o *Orchestrator) run(ctx context.Context, artifact domain.Artifact, done chan struct{}) {
	defer close(done)

	payload, err := o.client.UploadAudio(ctx, artifact)

	o.mu.Lock()
	if err != nil {
		o.request = domain.AnalysisRequest{Status: domain.AnalysisStatusFailed, Error: failureMessage(err)}
	} else {
		result := payload
		o.request = domain.AnalysisRequest{Status: domain.AnalysisStatusSucceeded, Result: &result}
	}
	snapshot := copyRequest(o.request)
	o.mu.Unlock()

	if err != nil {
		o.log.Warn("analysis failed", zap.Error(err))
		o.events.SessionError(domain.ErrorCodeAnalysis, snapshot.Error)
	} else {
		fields := []zap.Field{zap.Int("matches", len(payload.TopMatches))}
		if payload.BestMatch != nil {
			fields = append(fields, zap.String("best", payload.BestMatch.Title), zap.Float64("similarity", payload.BestMatch.Similarity))
		}
		o.log.Info("analysis succeeded", fields...)
		o.finalizer.Finalize(ctx, payload)
	}
	o.events.AnalysisChanged(snapshot)
}

// failureMessage turns an upload error into the user-visible message.
func failureMessage(err error) string {
	var serviceErr *domain.ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Message
	}
	var networkErr *domain.NetworkError
	if errors.As(err, &networkErr) {
		return networkFailureMessage
	}
	if errors.Is(err, domain.ErrEmptyArtifact) {
		return domain.ErrEmptyArtifact.Error()
	}
	return err.Error()
}

func copyRequest(in domain.AnalysisRequest) domain.AnalysisRequest {
	out := in
	if in.Result != nil {
		result := *in.Result
		result.TopMatches = append([]domain.MatchEntry(nil), in.Result.TopMatches...)
		if in.Result.BestMatch != nil {
			best := *in.Result.BestMatch
			result.BestMatch = &best
		}
		out.Result = &result
	}
	return out
}
