// Package presenter turns recognition payloads into display-ready views.
package presenter

import (
	"fmt"
	"strconv"
	"strings"

	"hummatch/internal/domain"
)

const (
	// RankedLimit is the fixed size of the ranked list.
	RankedLimit = 5
	// BarWidth is the number of cells in a full similarity bar.
	BarWidth = 40
)

// BestMatchView is the highlighted block for the top result.
type BestMatchView struct {
	SongID          int     `json:"songId"`
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	Similarity      float64 `json:"similarity"`
	SimilarityLabel string  `json:"similarityLabel"`
	// BarPercent is the similarity clamped to 0..100; BarCells scales it to BarWidth.
	BarPercent  float64 `json:"barPercent"`
	BarCells    int     `json:"barCells"`
	MelodyLabel string  `json:"melodyLabel"`
	PitchLabel  string  `json:"pitchLabel"`
}

// RankedRow is one line of the ranked list.
type RankedRow struct {
	Rank            int     `json:"rank"`
	SongID          int     `json:"songId"`
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	Similarity      float64 `json:"similarity"`
	SimilarityLabel string  `json:"similarityLabel"`
}

// View is what the result screen binds to.
type View struct {
	Best   *BestMatchView `json:"best,omitempty"`
	Ranked []RankedRow    `json:"ranked"`
}

func (v View) Empty() bool {
	return v.Best == nil && len(v.Ranked) == 0
}

// Render builds the view for payload. Entries keep the payload's order.
func Render(payload *domain.MatchPayload) View {
	if payload == nil {
		return View{}
	}

	view := View{}
	if best := payload.BestMatch; best != nil {
		bar := clampPercent(best.Similarity)
		view.Best = &BestMatchView{
			SongID:          best.SongID,
			Title:           best.Title,
			Artist:          best.Artist,
			Similarity:      best.Similarity,
			SimilarityLabel: Percent(best.Similarity),
			BarPercent:      bar,
			BarCells:        int(bar / 100 * BarWidth),
			// The service reports no separate melody score.
			MelodyLabel: Percent(best.PitchScore),
			PitchLabel:  Percent(best.PitchScore),
		}
	}

	matches := payload.TopMatches
	if len(matches) > RankedLimit {
		matches = matches[:RankedLimit]
	}
	for i, match := range matches {
		view.Ranked = append(view.Ranked, RankedRow{
			Rank:            i + 1,
			SongID:          match.SongID,
			Title:           match.Title,
			Artist:          match.Artist,
			Similarity:      match.Similarity,
			SimilarityLabel: Percent(match.Similarity),
		})
	}
	return view
}

// Percent formats a score like the service reports it, e.g. "91%" or "88.5%".
func Percent(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "%"
}

func clampPercent(value float64) float64 {
	switch {
	case value < 0:
		return 0
	case value > 100:
		return 100
	default:
		return value
	}
}

// Text renders view for a terminal.
func Text(view View) string {
	if view.Empty() {
		return ""
	}

	var b strings.Builder
	if best := view.Best; best != nil {
		b.WriteString("Best Match\n")
		fmt.Fprintf(&b, "  %s\n", best.Title)
		if best.Artist != "" {
			fmt.Fprintf(&b, "  %s\n", best.Artist)
		}
		fmt.Fprintf(&b, "  [%s%s] %s Match\n",
			strings.Repeat("#", best.BarCells),
			strings.Repeat(".", BarWidth-best.BarCells),
			best.SimilarityLabel,
		)
		fmt.Fprintf(&b, "  Melody: %s  Pitch: %s\n", best.MelodyLabel, best.PitchLabel)
	}
	if len(view.Ranked) > 0 {
		if view.Best != nil {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Top %d Matches\n", RankedLimit)
		for _, row := range view.Ranked {
			fmt.Fprintf(&b, "  #%d  %s - %s  %s\n", row.Rank, row.Title, row.Artist, row.SimilarityLabel)
		}
	}
	return b.String()
}
