package domain

import "time"

// RecordingState models the microphone capture lifecycle.
type RecordingState string

const (
	RecordingStateIdle       RecordingState = "idle"
	RecordingStateRecording  RecordingState = "recording"
	RecordingStateFinalizing RecordingState = "finalizing"
)

// RecordingReason provides a structured reason for recorder transitions.
type RecordingReason string

const (
	RecordingReasonReady      RecordingReason = "ready"
	RecordingReasonStarted    RecordingReason = "recording_started"
	RecordingReasonFinalizing RecordingReason = "recording_finalizing"
	RecordingReasonStopped    RecordingReason = "recording_stopped"
	RecordingReasonDiscarded  RecordingReason = "recording_discarded"
	RecordingReasonDeviceLost RecordingReason = "device_lost"
)

// AnalysisStatus models the lifecycle of one recognition attempt.
type AnalysisStatus string

const (
	AnalysisStatusIdle      AnalysisStatus = "idle"
	AnalysisStatusPending   AnalysisStatus = "pending"
	AnalysisStatusSucceeded AnalysisStatus = "succeeded"
	AnalysisStatusFailed    AnalysisStatus = "failed"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup           ErrorCode = "startup"
	ErrorCodePermissionDenied  ErrorCode = "permission_denied"
	ErrorCodeDeviceUnavailable ErrorCode = "device_unavailable"
	ErrorCodeAudioStop         ErrorCode = "audio_stop"
	ErrorCodeAudioStream       ErrorCode = "audio_stream"
	ErrorCodeAnalysis          ErrorCode = "analysis"
	ErrorCodeClipboard         ErrorCode = "clipboard"
)

// MediaTypeWAV tags finished recordings.
const MediaTypeWAV = "audio/wav"

// Artifact is a finished recording. Data holds the captured chunks
// concatenated in arrival order as little-endian PCM.
type Artifact struct {
	Data       []byte `json:"-"`
	MediaType  string `json:"mediaType"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bitDepth"`
	Duration   int    `json:"durationSeconds"`
}

// Size returns the artifact length in bytes.
func (a Artifact) Size() int {
	return len(a.Data)
}

// Empty reports whether the artifact holds less than one 16-bit sample.
func (a Artifact) Empty() bool {
	return len(a.Data) < 2
}

// RecordingStatus is a snapshot of the recorder.
type RecordingStatus struct {
	State          RecordingState `json:"state"`
	SessionID      string         `json:"sessionId,omitempty"`
	StartedAt      time.Time      `json:"startedAt,omitempty"`
	ElapsedSeconds int            `json:"elapsedSeconds"`
	Chunks         int            `json:"chunks"`
	Bytes          int            `json:"bytes"`
}

// MatchEntry is one ranked song returned by the recognition service.
type MatchEntry struct {
	SongID      int     `json:"song_id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Similarity  float64 `json:"similarity"`
	PitchScore  float64 `json:"pitch_score"`
	MFCCScore   float64 `json:"mfcc_score"`
	ChromaScore float64 `json:"chroma_score"`
}

// MatchPayload is the recognition response. TopMatches is ordered by
// descending similarity and holds at most five entries.
type MatchPayload struct {
	Success    bool         `json:"success"`
	BestMatch  *MatchEntry  `json:"best_match"`
	TopMatches []MatchEntry `json:"top_matches"`
}

// AnalysisRequest is the single outstanding recognition attempt.
type AnalysisRequest struct {
	Status AnalysisStatus `json:"status"`
	Error  string         `json:"error,omitempty"`
	Result *MatchPayload  `json:"result,omitempty"`
}

// ServiceStatus is the ambient service indicator refreshed at startup.
type ServiceStatus struct {
	Reachable   bool `json:"reachable"`
	CatalogSize int  `json:"catalogSize"`
	Checked     bool `json:"checked"`
}

// Song describes one catalog entry.
type Song struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Duration float64 `json:"duration"`
}
