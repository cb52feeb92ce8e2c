package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/amaumene/sonarr-mcp/internal/metrics"
	"github.com/amaumene/sonarr-mcp/internal/services/sonarr"
)

// Resource URI templates
const (
	SeriesPosterTemplate   = "sonarr://series/{series_id}/poster"
	EpisodeDetailsTemplate = "sonarr://episode/{episode_id}"
)

const posterCoverType = "poster"

// SeriesPoster returns the absolute URL of the series poster. Resources
// report problems as plain text, so no error is ever returned.
func (t *Tools) SeriesPoster(ctx context.Context, seriesID string) string {
	var series sonarr.Series
	if err := t.client.Get(ctx, "series/"+url.PathEscape(seriesID), &series); err != nil {
		t.logger.WithField("series_id", seriesID).WithError(err).Error("Error getting series poster")
		t.countRead("series_poster", metrics.OutcomeError)
		return fmt.Sprintf("Error retrieving poster: %v", err)
	}

	for _, image := range series.Images {
		if image.CoverType == posterCoverType {
			t.countRead("series_poster", metrics.OutcomeSuccess)
			return t.client.BaseURL() + image.URL
		}
	}
	t.countRead("series_poster", metrics.OutcomeNotFound)
	return fmt.Sprintf("No poster image found for series %s", seriesID)
}

// EpisodeInfo groups descriptive episode fields
type EpisodeInfo struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	AirDate       string `json:"air_date"`
	Overview      string `json:"overview"`
	HasFile       bool   `json:"has_file"`
	Monitored     bool   `json:"monitored"`
}

// EpisodeSeriesInfo names the series an episode belongs to
type EpisodeSeriesInfo struct {
	SeriesID    int    `json:"series_id"`
	SeriesTitle string `json:"series_title"`
}

// EpisodeFileInfo describes the file backing an episode
type EpisodeFileInfo struct {
	FileID       int             `json:"file_id"`
	RelativePath string          `json:"relative_path"`
	Path         string          `json:"path"`
	Size         int64           `json:"size"`
	Quality      string          `json:"quality"`
	MediaInfo    json.RawMessage `json:"media_info"`
}

// EpisodeDetails is the document served by the episode resource
type EpisodeDetails struct {
	EpisodeInfo EpisodeInfo       `json:"episode_info"`
	SeriesInfo  EpisodeSeriesInfo `json:"series_info"`
	FileInfo    *EpisodeFileInfo  `json:"file_info,omitempty"`
}

func episodeDetails(ep sonarr.Episode) EpisodeDetails {
	details := EpisodeDetails{
		EpisodeInfo: EpisodeInfo{
			ID:            ep.ID,
			Title:         ep.Title,
			SeasonNumber:  ep.SeasonNumber,
			EpisodeNumber: ep.EpisodeNumber,
			AirDate:       ep.AirDate,
			Overview:      ep.Overview,
			HasFile:       ep.HasFile,
			Monitored:     ep.Monitored,
		},
		SeriesInfo: EpisodeSeriesInfo{
			SeriesID:    ep.SeriesID,
			SeriesTitle: seriesTitle(ep.Series),
		},
	}

	if ep.EpisodeFile.Present() {
		f := ep.EpisodeFile
		// an explicit null is kept, only a missing block becomes {}
		mediaInfo := f.MediaInfo
		if len(bytes.TrimSpace(mediaInfo)) == 0 {
			mediaInfo = json.RawMessage("{}")
		}
		details.FileInfo = &EpisodeFileInfo{
			FileID:       f.ID,
			RelativePath: f.RelativePath,
			Path:         f.Path,
			Size:         f.Size,
			Quality:      f.Quality.Name(),
			MediaInfo:    mediaInfo,
		}
	}
	return details
}

// EpisodeDetails returns the episode, its series and file as indented JSON
func (t *Tools) EpisodeDetails(ctx context.Context, episodeID string) string {
	var episode sonarr.Episode
	if err := t.client.Get(ctx, "episode/"+url.PathEscape(episodeID), &episode); err != nil {
		t.logger.WithField("episode_id", episodeID).WithError(err).Error("Error getting episode details")
		t.countRead("episode_details", metrics.OutcomeError)
		return fmt.Sprintf("Error retrieving episode details: %v", err)
	}

	out, err := json.MarshalIndent(episodeDetails(episode), "", "  ")
	if err != nil {
		t.countRead("episode_details", metrics.OutcomeError)
		return fmt.Sprintf("Error retrieving episode details: %v", err)
	}

	t.countRead("episode_details", metrics.OutcomeSuccess)
	return string(out)
}
