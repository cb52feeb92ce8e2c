package tools

import (
	"context"
	"net/url"
	"strconv"

	"github.com/amaumene/sonarr-mcp/internal/services/sonarr"
	"github.com/sirupsen/logrus"
)

const (
	defaultHistoryPage     = 1
	defaultHistoryPageSize = 20
)

// HistoryInput are the arguments of get_history
type HistoryInput struct {
	Page     *int `json:"page,omitempty" jsonschema:"Page number (default 1)" validate:"omitempty,gt=0"`
	PageSize *int `json:"page_size,omitempty" jsonschema:"Records per page (default 20)" validate:"omitempty,gt=0"`
	SeriesID *int `json:"series_id,omitempty" jsonschema:"Only history of this series"`
}

// HistoryItem is one history record
type HistoryItem struct {
	ID             int    `json:"id"`
	EpisodeID      int    `json:"episode_id"`
	SeriesTitle    string `json:"series_title"`
	EpisodeTitle   string `json:"episode_title"`
	SeasonNumber   int    `json:"season_number"`
	EpisodeNumber  int    `json:"episode_number"`
	Quality        string `json:"quality"`
	EventType      string `json:"event_type"`
	Date           string `json:"date"`
	DownloadClient string `json:"download_client"`
	SourceTitle    string `json:"source_title"`
}

// History is the data of get_history
type History struct {
	Page          int           `json:"page"`
	PageSize      int           `json:"page_size"`
	TotalRecords  int           `json:"total_records"`
	RecordsOnPage int           `json:"records_on_page"`
	History       []HistoryItem `json:"history"`
}

func historyItem(rec sonarr.HistoryRecord) HistoryItem {
	title, season, episode := episodeParts(rec.Episode)
	return HistoryItem{
		ID:             rec.ID,
		EpisodeID:      rec.EpisodeID,
		SeriesTitle:    seriesTitle(rec.Series),
		EpisodeTitle:   title,
		SeasonNumber:   season,
		EpisodeNumber:  episode,
		Quality:        rec.Quality.Name(),
		EventType:      rec.EventType,
		Date:           rec.Date,
		DownloadClient: rec.DataString("downloadClient"),
		SourceTitle:    rec.SourceTitle,
	}
}

// History retrieves activity history, most recent first
func (t *Tools) History(ctx context.Context, in HistoryInput) Result[History] {
	data, err := t.history(ctx, in)
	return respond(t, "get_history", data, err)
}

func (t *Tools) history(ctx context.Context, in HistoryInput) (*History, error) {
	if err := t.validateInput(in); err != nil {
		return nil, err
	}

	page, pageSize := defaultHistoryPage, defaultHistoryPageSize
	if in.Page != nil {
		page = *in.Page
	}
	if in.PageSize != nil {
		pageSize = *in.PageSize
	}

	fields := logrus.Fields{"page": page, "page_size": pageSize}
	if in.SeriesID != nil {
		fields["series_id"] = *in.SeriesID
	}
	t.logger.WithFields(fields).Info("Getting history")

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("sortKey", "date")
	params.Set("sortDirection", "descending")
	params.Set("includeSeries", "true")
	params.Set("includeEpisode", "true")
	if in.SeriesID != nil && *in.SeriesID != 0 {
		params.Set("seriesId", strconv.Itoa(*in.SeriesID))
	}

	var resp sonarr.HistoryPage
	if err := t.client.Get(ctx, "history?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	h := &History{
		Page:          page,
		PageSize:      pageSize,
		TotalRecords:  resp.TotalRecords,
		RecordsOnPage: len(resp.Records),
		History:       make([]HistoryItem, 0, len(resp.Records)),
	}
	for _, rec := range resp.Records {
		h.History = append(h.History, historyItem(rec))
	}

	t.logger.WithField("count", h.RecordsOnPage).Debug("Retrieved history items")
	return h, nil
}
