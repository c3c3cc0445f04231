package recognizer

import "hummatch/internal/domain"

type uploadResponse struct {
	domain.MatchPayload
	Error string `json:"error,omitempty"`
}

type songsResponse struct {
	Songs []domain.Song `json:"songs"`
	Count int           `json:"count"`
}

// errorResponse is the service's structured failure body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
