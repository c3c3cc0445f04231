package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hummatch/internal/audio"
	"hummatch/internal/domain"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"

	uploadFailed      = "Upload failed"
	songsFailed       = "Failed to fetch songs"
	healthFailed      = "Health check failed"
	songDetailsFailed = "Failed to fetch song"

	uploadField    = "audio"
	uploadFilename = "humming.wav"

	maxResponseBytes = 4 << 20
)

// Config controls the recognition service client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	// TempDir stages WAV rendering; empty means os.TempDir.
	TempDir string
}

// Client implements ports.RecognitionClient over HTTP. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	tempDir string
	log     *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		tempDir: cfg.TempDir,
		log:     log.Named("recognizer"),
	}
}

// UploadAudio sends artifact to the recognition endpoint as a multipart WAV attachment.
func (c *Client) UploadAudio(ctx context.Context, artifact domain.Artifact) (domain.MatchPayload, error) {
	wavData, err := audio.EncodeWAV(artifact, c.tempDir)
	if err != nil {
		return domain.MatchPayload{}, &domain.EncodeError{Err: err}
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, uploadFilename))
	header.Set("Content-Type", domain.MediaTypeWAV)
	part, err := writer.CreatePart(header)
	if err != nil {
		return domain.MatchPayload{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return domain.MatchPayload{}, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.MatchPayload{}, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-humming", body)
	if err != nil {
		return domain.MatchPayload{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var payload uploadResponse
	if err := c.do(req, "upload", uploadFailed, &payload); err != nil {
		return domain.MatchPayload{}, err
	}
	if payload.Error != "" {
		return domain.MatchPayload{}, &domain.ServiceError{Message: payload.Error, StatusCode: http.StatusOK}
	}
	return payload.MatchPayload, nil
}

// FetchCatalogSize returns the number of indexed songs.
func (c *Client) FetchCatalogSize(ctx context.Context) (int, error) {
	songs, err := c.fetchSongs(ctx)
	if err != nil {
		return 0, err
	}
	return songs.Count, nil
}

// ListSongs returns the indexed catalog.
func (c *Client) ListSongs(ctx context.Context) ([]domain.Song, error) {
	songs, err := c.fetchSongs(ctx)
	if err != nil {
		return nil, err
	}
	return songs.Songs, nil
}

// FetchSong returns details for one catalog entry.
func (c *Client) FetchSong(ctx context.Context, id int) (domain.Song, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/match-results/"+strconv.Itoa(id), nil)
	if err != nil {
		return domain.Song{}, err
	}
	var song domain.Song
	if err := c.do(req, "song", songDetailsFailed, &song); err != nil {
		return domain.Song{}, err
	}
	return song, nil
}

// ProbeLiveness succeeds only on a 2xx health response.
func (c *Client) ProbeLiveness(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, "health", healthFailed, nil)
}

func (c *Client) fetchSongs(ctx context.Context) (songsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/songs", nil)
	if err != nil {
		return songsResponse{}, err
	}
	var songs songsResponse
	if err := c.do(req, "songs", songsFailed, &songs); err != nil {
		return songsResponse{}, err
	}
	return songs, nil
}

// do performs req and decodes a 2xx JSON body into out (when non-nil).
// Non-2xx responses become a ServiceError carrying the body's error field,
// or fallback when the body has none.
func (c *Client) do(req *http.Request, op string, fallback string, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("op", op), zap.Error(err))
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	c.log.Debug("request finished",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ServiceError{Message: errorMessage(raw, fallback), StatusCode: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.ServiceError{Message: fallback, StatusCode: resp.StatusCode}
	}
	return nil
}

func errorMessage(raw []byte, fallback string) string {
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return fallback
	}
	if msg := strings.TrimSpace(body.Error); msg != "" {
		return body.Error
	}
	return fallback
}
