package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/amaumene/sonarr-mcp/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesPoster(t *testing.T) {
	up := newFakeUpstream()
	up.responses["series/1"] = `{"id":1,"images":[
		{"coverType":"banner","url":"/MediaCover/1/banner.jpg"},
		{"coverType":"poster","url":"/MediaCover/1/poster.jpg?lastWrite=1"}
	]}`
	up.responses["series/2"] = `{"id":2,"images":[{"coverType":"fanart","url":"/MediaCover/2/fanart.jpg"}]}`
	up.failures["series/3"] = errors.New("500 Internal Server Error for url http://sonarr:8989/api/v3/series/3")

	m := metrics.New()
	tools := newTestTools(up, WithMetrics(m))

	assert.Equal(t, "http://sonarr:8989/MediaCover/1/poster.jpg?lastWrite=1", tools.SeriesPoster(context.Background(), "1"))
	assert.Equal(t, "No poster image found for series 2", tools.SeriesPoster(context.Background(), "2"))
	assert.Equal(t,
		"Error retrieving poster: Sonarr API request failed: 500 Internal Server Error for url http://sonarr:8989/api/v3/series/3",
		tools.SeriesPoster(context.Background(), "3"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ResourceReads.WithLabelValues("series_poster", metrics.OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ResourceReads.WithLabelValues("series_poster", metrics.OutcomeNotFound)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ResourceReads.WithLabelValues("series_poster", metrics.OutcomeError)))
}

func TestEpisodeDetails(t *testing.T) {
	up := newFakeUpstream()
	up.responses["episode/70"] = `{"id":70,"seriesId":7,"title":"Boundaries","seasonNumber":2,"episodeNumber":4,
		"airDate":"2024-03-14","overview":"Jimmy sets limits.","hasFile":true,"monitored":true,
		"series":{"id":7,"title":"Shrinking"},
		"episodeFile":{"id":55,"relativePath":"Season 02/S02E04.mkv","path":"/tv/Shrinking/Season 02/S02E04.mkv",
		 "size":734003200,"quality":{"quality":{"name":"HDTV-720p"}},"mediaInfo":{"videoCodec":"x264"}}}`
	up.responses["episode/71"] = `{"id":71,"seriesId":7,"title":"Unaired","seasonNumber":2,"episodeNumber":5,"hasFile":false}`
	up.responses["episode/72"] = `{"id":72,"hasFile":true,"episodeFile":{"id":56,"path":"/tv/x.mkv","mediaInfo":null}}`
	up.responses["episode/73"] = `{"id":73,"hasFile":true,"episodeFile":{"size":123,"quality":{"quality":{"name":"WEBDL-1080p"}}}}`
	up.responses["episode/74"] = `{"id":74,"hasFile":false,"episodeFile":{}}`
	tools := newTestTools(up)

	t.Run("with file", func(t *testing.T) {
		out := tools.EpisodeDetails(context.Background(), "70")
		assert.JSONEq(t, `{
			"episode_info": {"id":70,"title":"Boundaries","season_number":2,"episode_number":4,
				"air_date":"2024-03-14","overview":"Jimmy sets limits.","has_file":true,"monitored":true},
			"series_info": {"series_id":7,"series_title":"Shrinking"},
			"file_info": {"file_id":55,"relative_path":"Season 02/S02E04.mkv","path":"/tv/Shrinking/Season 02/S02E04.mkv",
				"size":734003200,"quality":"HDTV-720p","media_info":{"videoCodec":"x264"}}
		}`, out)
		assert.Contains(t, out, "\n  \"episode_info\"")
	})

	t.Run("without file", func(t *testing.T) {
		var details map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(tools.EpisodeDetails(context.Background(), "71")), &details))
		assert.Contains(t, details, "episode_info")
		assert.Contains(t, details, "series_info")
		assert.NotContains(t, details, "file_info")
		assert.JSONEq(t, `{"series_id":7,"series_title":""}`, string(details["series_info"]))
	})

	t.Run("null media info", func(t *testing.T) {
		out := tools.EpisodeDetails(context.Background(), "72")
		assert.Contains(t, out, `"media_info": null`)

		var details EpisodeDetails
		require.NoError(t, json.Unmarshal([]byte(out), &details))
		require.NotNil(t, details.FileInfo)
		assert.Equal(t, 56, details.FileInfo.FileID)
		assert.Equal(t, "", details.FileInfo.Quality)
	})

	t.Run("file without id or path", func(t *testing.T) {
		var details EpisodeDetails
		require.NoError(t, json.Unmarshal([]byte(tools.EpisodeDetails(context.Background(), "73")), &details))
		require.NotNil(t, details.FileInfo)
		assert.Equal(t, 0, details.FileInfo.FileID)
		assert.Equal(t, int64(123), details.FileInfo.Size)
		assert.Equal(t, "WEBDL-1080p", details.FileInfo.Quality)
		assert.JSONEq(t, `{}`, string(details.FileInfo.MediaInfo))
	})

	t.Run("empty file object", func(t *testing.T) {
		var details map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(tools.EpisodeDetails(context.Background(), "74")), &details))
		assert.NotContains(t, details, "file_info")
	})

	t.Run("upstream failure", func(t *testing.T) {
		out := tools.EpisodeDetails(context.Background(), "404")
		assert.Equal(t, "Error retrieving episode details: Sonarr API request failed: 404 Not Found for url episode/404", out)
	})
}
