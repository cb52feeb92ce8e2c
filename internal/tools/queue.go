package tools

import (
	"context"
	"net/url"

	"github.com/amaumene/sonarr-mcp/internal/services/sonarr"
)

// Queue statuses used for classification
const (
	queueStatusDownloading = "downloading"
	queueStatusQueued      = "queued"
	queueStatusCompleted   = "completed"
)

// QueueInput are the arguments of get_queue
type QueueInput struct {
	IncludeUnknownSeriesItems *bool `json:"include_unknown_series_items,omitempty" jsonschema:"Include items Sonarr could not match to a series"`
}

// QueueItem is one download in the queue
type QueueItem struct {
	ID                    int     `json:"id"`
	SeriesTitle           string  `json:"series_title"`
	EpisodeTitle          string  `json:"episode_title"`
	SeasonNumber          int     `json:"season_number"`
	EpisodeNumber         int     `json:"episode_number"`
	Quality               string  `json:"quality"`
	Size                  float64 `json:"size"`
	SizeLeft              float64 `json:"sizeleft"`
	Status                string  `json:"status"`
	TrackedDownloadStatus string  `json:"tracked_download_status"`
	DownloadClient        string  `json:"download_client"`
	OutputPath            string  `json:"output_path"`
	Progress              float64 `json:"progress"`
}

// Queue is the data of get_queue
type Queue struct {
	TotalItems      int         `json:"total_items"`
	ActiveDownloads int         `json:"active_downloads"`
	CompletedItems  int         `json:"completed_items"`
	Queue           []QueueItem `json:"queue"`
}

func queueItem(rec sonarr.QueueRecord) QueueItem {
	title, season, episode := episodeParts(rec.Episode)
	return QueueItem{
		ID:                    rec.ID,
		SeriesTitle:           seriesTitle(rec.Series),
		EpisodeTitle:          title,
		SeasonNumber:          season,
		EpisodeNumber:         episode,
		Quality:               rec.Quality.Name(),
		Size:                  rec.Size,
		SizeLeft:              rec.SizeLeft,
		Status:                rec.Status,
		TrackedDownloadStatus: rec.TrackedDownloadStatus,
		DownloadClient:        rec.DownloadClient,
		OutputPath:            rec.OutputPath,
		Progress:              progress(rec.Size, rec.SizeLeft),
	}
}

// Queue retrieves the download queue with progress per item
func (t *Tools) Queue(ctx context.Context, in QueueInput) Result[Queue] {
	includeUnknown := in.IncludeUnknownSeriesItems != nil && *in.IncludeUnknownSeriesItems
	t.logger.WithField("include_unknown_series_items", includeUnknown).Info("Getting queue")

	data, err := t.queue(ctx, includeUnknown)
	return respond(t, "get_queue", data, err)
}

func (t *Tools) queue(ctx context.Context, includeUnknown bool) (*Queue, error) {
	params := url.Values{}
	params.Set("includeSeries", "true")
	params.Set("includeEpisode", "true")
	if includeUnknown {
		params.Set("includeUnknownSeriesItems", "true")
	}

	var page sonarr.QueuePage
	if err := t.client.Get(ctx, "queue?"+params.Encode(), &page); err != nil {
		return nil, err
	}

	q := &Queue{
		TotalItems: len(page.Records),
		Queue:      make([]QueueItem, 0, len(page.Records)),
	}
	for _, rec := range page.Records {
		item := queueItem(rec)
		switch item.Status {
		case queueStatusDownloading, queueStatusQueued:
			q.ActiveDownloads++
		case queueStatusCompleted:
			q.CompletedItems++
		}
		q.Queue = append(q.Queue, item)
	}

	t.logger.WithField("count", q.TotalItems).Debug("Retrieved queue items")
	return q, nil
}
