package tools

import (
	"context"
	"net/url"

	"github.com/amaumene/sonarr-mcp/internal/services/sonarr"
	"github.com/sirupsen/logrus"
)

const (
	dateLayout = "2006-01-02"

	calendarDaysBack    = 7
	calendarDaysForward = 30
)

// CalendarInput are the arguments of get_calendar
type CalendarInput struct {
	Start       *string `json:"start,omitempty" jsonschema:"First day (YYYY-MM-DD), defaults to 7 days ago" validate:"omitempty,datetime=2006-01-02"`
	End         *string `json:"end,omitempty" jsonschema:"Last day (YYYY-MM-DD), defaults to 30 days from now" validate:"omitempty,datetime=2006-01-02"`
	Unmonitored *bool   `json:"unmonitored,omitempty" jsonschema:"Include unmonitored episodes"`
}

// CalendarEpisode is one calendar entry
type CalendarEpisode struct {
	EpisodeID     int    `json:"episode_id"`
	SeriesTitle   string `json:"series_title"`
	SeriesID      int    `json:"series_id"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Title         string `json:"title"`
	AirDate       string `json:"air_date"`
	AirDateUTC    string `json:"air_date_utc"`
	HasFile       bool   `json:"has_file"`
	Monitored     bool   `json:"monitored"`
	Overview      string `json:"overview"`
}

// Calendar is the data of get_calendar. EpisodesByDate marshals with its
// keys in ascending order, which for YYYY-MM-DD keys is date order.
type Calendar struct {
	DateRange         string                       `json:"date_range"`
	TotalEpisodes     int                          `json:"total_episodes"`
	EpisodesWithFiles int                          `json:"episodes_with_files"`
	EpisodesByDate    map[string][]CalendarEpisode `json:"episodes_by_date"`
	AllEpisodes       []CalendarEpisode            `json:"all_episodes"`
}

func calendarEpisode(ep sonarr.Episode) CalendarEpisode {
	return CalendarEpisode{
		EpisodeID:     ep.ID,
		SeriesTitle:   seriesTitle(ep.Series),
		SeriesID:      ep.SeriesID,
		SeasonNumber:  ep.SeasonNumber,
		EpisodeNumber: ep.EpisodeNumber,
		Title:         ep.Title,
		AirDate:       ep.AirDate,
		AirDateUTC:    ep.AirDateUTC,
		HasFile:       ep.HasFile,
		Monitored:     ep.Monitored,
		Overview:      truncate(ep.Overview, calendarOverviewLimit),
	}
}

// calendarRange resolves the requested range, filling gaps relative to now
func (t *Tools) calendarRange(in CalendarInput) (start, end string) {
	now := t.now()
	start = now.AddDate(0, 0, -calendarDaysBack).Format(dateLayout)
	end = now.AddDate(0, 0, calendarDaysForward).Format(dateLayout)
	if in.Start != nil {
		start = *in.Start
	}
	if in.End != nil {
		end = *in.End
	}
	return start, end
}

// Calendar retrieves upcoming and recent episodes grouped by air date
func (t *Tools) Calendar(ctx context.Context, in CalendarInput) Result[Calendar] {
	data, err := t.calendar(ctx, in)
	return respond(t, "get_calendar", data, err)
}

func (t *Tools) calendar(ctx context.Context, in CalendarInput) (*Calendar, error) {
	if err := t.validateInput(in); err != nil {
		return nil, err
	}

	start, end := t.calendarRange(in)
	unmonitored := in.Unmonitored != nil && *in.Unmonitored
	t.logger.WithFields(logrus.Fields{
		"start":       start,
		"end":         end,
		"unmonitored": unmonitored,
	}).Info("Getting calendar")

	params := url.Values{}
	params.Set("start", start)
	params.Set("end", end)
	params.Set("includeSeries", "true")
	if unmonitored {
		params.Set("unmonitored", "true")
	}

	var entries []sonarr.Episode
	if err := t.client.Get(ctx, "calendar?"+params.Encode(), &entries); err != nil {
		return nil, err
	}

	cal := &Calendar{
		DateRange:      start + " to " + end,
		TotalEpisodes:  len(entries),
		EpisodesByDate: make(map[string][]CalendarEpisode),
		AllEpisodes:    make([]CalendarEpisode, 0, len(entries)),
	}
	for _, entry := range entries {
		ep := calendarEpisode(entry)
		if ep.HasFile {
			cal.EpisodesWithFiles++
		}
		cal.EpisodesByDate[ep.AirDate] = append(cal.EpisodesByDate[ep.AirDate], ep)
		cal.AllEpisodes = append(cal.AllEpisodes, ep)
	}

	t.logger.WithField("count", cal.TotalEpisodes).Debug("Retrieved calendar episodes")
	return cal, nil
}
