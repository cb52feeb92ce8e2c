package tools

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/amaumene/sonarr-mcp/internal/services/sonarr"
)

const ellipsis = "..."

// Overview limits per shape
const (
	calendarOverviewLimit = 200
	lookupOverviewLimit   = 300
	detailsOverviewLimit  = 500
)

// maxGenres caps genres in list and lookup shapes
const maxGenres = 3

// truncate keeps the first limit runes of s and marks the cut with an
// ellipsis. Strings of at most limit runes are returned as is.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}

// firstN returns up to n leading elements, never nil
func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	return orEmpty(items)
}

// orEmpty turns a nil slice into an empty one so it marshals as []
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// progress is the completed percentage of a download rounded to two
// decimals. The size divisor is floored at 1.
func progress(size, sizeLeft float64) float64 {
	pct := (1 - sizeLeft/math.Max(size, 1)) * 100
	return math.Round(pct*100) / 100
}

func seriesTitle(ref *sonarr.SeriesRef) string {
	if ref == nil {
		return ""
	}
	return ref.Title
}

// Statistics is an upstream statistics block passed through as received
type Statistics map[string]interface{}

// passthrough decodes a raw statistics block keeping every key and the exact
// number literals. Absent, null or non-object blocks become {}.
func passthrough(raw json.RawMessage) Statistics {
	out := Statistics{}
	if len(raw) == 0 {
		return out
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil || out == nil {
		return Statistics{}
	}
	return out
}

// episodeParts unpacks an embedded episode reference
func episodeParts(ref *sonarr.EpisodeRef) (title string, season, episode int) {
	if ref == nil {
		return "", 0, 0
	}
	return ref.Title, ref.SeasonNumber, ref.EpisodeNumber
}
