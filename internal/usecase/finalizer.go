package usecase

import (
	"context"
	"fmt"
	"strings"

	"hummatch/internal/domain"
	"hummatch/internal/ports"
)

// resultFinalizer copies the best match to the clipboard once an analysis succeeds.
type resultFinalizer struct {
	clipboard ports.Clipboard
	events    ports.EventSink
	enabled   bool
}

func newResultFinalizer(clipboard ports.Clipboard, events ports.EventSink, enabled bool) resultFinalizer {
	return resultFinalizer{clipboard: clipboard, events: events, enabled: enabled && clipboard != nil}
}

// Finalize reports whether the best match was copied. Clipboard failures are non-fatal.
func (f resultFinalizer) Finalize(ctx context.Context, payload domain.MatchPayload) bool {
	if !f.enabled {
		return false
	}
	text := matchSummary(payload)
	if text == "" {
		return false
	}
	if err := f.clipboard.SetText(ctx, text); err != nil {
		f.events.SessionError(domain.ErrorCodeClipboard, "match ready but clipboard write failed")
		return false
	}
	return true
}

func matchSummary(payload domain.MatchPayload) string {
	best := payload.BestMatch
	if best == nil && len(payload.TopMatches) > 0 {
		best = &payload.TopMatches[0]
	}
	if best == nil {
		return ""
	}
	title := strings.TrimSpace(best.Title)
	artist := strings.TrimSpace(best.Artist)
	if artist == "" {
		return title
	}
	return fmt.Sprintf("%s - %s", title, artist)
}
