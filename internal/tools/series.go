package tools

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/amaumene/sonarr-mcp/internal/services/sonarr"
	"github.com/sirupsen/logrus"
)

const (
	// defaultLanguageProfileID is sent with every new series
	defaultLanguageProfileID = 1
	maxLookupResults         = 10
)

// Errors reported by add_series preconditions
var (
	ErrNoRootFolders     = errors.New("No root folders configured in Sonarr")
	ErrNoQualityProfiles = errors.New("No quality profiles configured in Sonarr")
)

// SeriesListInput are the arguments of get_series_list
type SeriesListInput struct {
	Monitored *bool `json:"monitored,omitempty" jsonschema:"Only return series whose monitored flag matches this value"`
	// IncludeSeasonImages has no effect. It is kept so existing callers that
	// send it keep validating.
	IncludeSeasonImages *bool `json:"include_season_images,omitempty" jsonschema:"Accepted for compatibility, currently ignored"`
}

// EpisodeCounts summarizes episode availability of a series
type EpisodeCounts struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Missing   int `json:"missing"`
}

// SeriesSummary is one entry of get_series_list
type SeriesSummary struct {
	ID             int           `json:"id"`
	Title          string        `json:"title"`
	Status         string        `json:"status"`
	Monitored      bool          `json:"monitored"`
	Year           int           `json:"year"`
	Seasons        int           `json:"seasons"`
	Episodes       EpisodeCounts `json:"episodes"`
	QualityProfile int           `json:"quality_profile"`
	Path           string        `json:"path"`
	Network        string        `json:"network"`
	Genres         []string      `json:"genres"`
}

// SeriesList is the data of get_series_list
type SeriesList struct {
	TotalSeries    int             `json:"total_series"`
	MonitoredCount int             `json:"monitored_count"`
	Series         []SeriesSummary `json:"series"`
}

func summarizeSeries(s sonarr.Series) SeriesSummary {
	st := s.Stats()
	return SeriesSummary{
		ID:        s.ID,
		Title:     s.Title,
		Status:    s.Status,
		Monitored: s.Monitored,
		Year:      s.Year,
		Seasons:   len(s.Seasons),
		Episodes: EpisodeCounts{
			Total:     st.EpisodeCount,
			Available: st.EpisodeFileCount,
			Missing:   st.EpisodeCount - st.EpisodeFileCount,
		},
		QualityProfile: s.QualityProfileID,
		Path:           s.Path,
		Network:        s.Network,
		Genres:         firstN(s.Genres, maxGenres),
	}
}

// SeriesList retrieves all series, optionally filtered by monitored flag
func (t *Tools) SeriesList(ctx context.Context, in SeriesListInput) Result[SeriesList] {
	fields := logrus.Fields{}
	if in.Monitored != nil {
		fields["monitored"] = *in.Monitored
	}
	if in.IncludeSeasonImages != nil {
		fields["include_season_images"] = *in.IncludeSeasonImages
	}
	t.logger.WithFields(fields).Info("Getting series list")

	data, err := t.seriesList(ctx, in)
	return respond(t, "get_series_list", data, err)
}

func (t *Tools) seriesList(ctx context.Context, in SeriesListInput) (*SeriesList, error) {
	var all []sonarr.Series
	if err := t.client.Get(ctx, "series", &all); err != nil {
		return nil, err
	}

	list := &SeriesList{
		TotalSeries: len(all),
		Series:      make([]SeriesSummary, 0, len(all)),
	}
	for _, s := range all {
		if in.Monitored != nil && s.Monitored != *in.Monitored {
			continue
		}
		summary := summarizeSeries(s)
		if summary.Monitored {
			list.MonitoredCount++
		}
		list.Series = append(list.Series, summary)
	}

	t.logger.WithField("count", len(list.Series)).Debug("Retrieved series")
	return list, nil
}

// SeriesIDInput identifies a single series
type SeriesIDInput struct {
	SeriesID int `json:"series_id" jsonschema:"Sonarr series id" validate:"gt=0"`
}

// SeriesBasicInfo groups descriptive series fields
type SeriesBasicInfo struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	SortTitle     string   `json:"sort_title"`
	Status        string   `json:"status"`
	Overview      string   `json:"overview"`
	Network       string   `json:"network"`
	AirTime       string   `json:"air_time"`
	Runtime       int      `json:"runtime"`
	Year          int      `json:"year"`
	Genres        []string `json:"genres"`
	Certification string   `json:"certification"`
	ImdbID        string   `json:"imdb_id"`
	TvdbID        int      `json:"tvdb_id"`
}

// SeriesMonitoring groups monitoring flags
type SeriesMonitoring struct {
	Monitored         bool `json:"monitored"`
	SeasonFolder      bool `json:"season_folder"`
	QualityProfileID  int  `json:"quality_profile_id"`
	LanguageProfileID int  `json:"language_profile_id"`
}

// SeriesFileInfo describes where a series lives on disk
type SeriesFileInfo struct {
	Path       string `json:"path"`
	SizeOnDisk int64  `json:"size_on_disk"`
}

// SeasonSummary is one season of a series
type SeasonSummary struct {
	SeasonNumber int        `json:"season_number"`
	Monitored    bool       `json:"monitored"`
	Statistics   Statistics `json:"statistics"`
}

// SeriesDetails is the data of get_series_details
type SeriesDetails struct {
	BasicInfo  SeriesBasicInfo  `json:"basic_info"`
	Monitoring SeriesMonitoring `json:"monitoring"`
	Statistics Statistics       `json:"statistics"`
	FileInfo   SeriesFileInfo   `json:"file_info"`
	Seasons    []SeasonSummary  `json:"seasons"`
}

func detailSeries(s sonarr.Series) *SeriesDetails {
	st := s.Stats()
	details := &SeriesDetails{
		BasicInfo: SeriesBasicInfo{
			ID:            s.ID,
			Title:         s.Title,
			SortTitle:     s.SortTitle,
			Status:        s.Status,
			Overview:      truncate(s.Overview, detailsOverviewLimit),
			Network:       s.Network,
			AirTime:       s.AirTime,
			Runtime:       s.Runtime,
			Year:          s.Year,
			Genres:        orEmpty(s.Genres),
			Certification: s.Certification,
			ImdbID:        s.ImdbID,
			TvdbID:        s.TvdbID,
		},
		Monitoring: SeriesMonitoring{
			Monitored:         s.Monitored,
			SeasonFolder:      s.SeasonFolder,
			QualityProfileID:  s.QualityProfileID,
			LanguageProfileID: s.LanguageProfileID,
		},
		Statistics: passthrough(s.Statistics),
		FileInfo: SeriesFileInfo{
			Path:       s.Path,
			SizeOnDisk: st.SizeOnDisk,
		},
		Seasons: make([]SeasonSummary, 0, len(s.Seasons)),
	}

	for _, season := range s.Seasons {
		details.Seasons = append(details.Seasons, SeasonSummary{
			SeasonNumber: season.SeasonNumber,
			Monitored:    season.Monitored,
			Statistics:   passthrough(season.Statistics),
		})
	}
	return details
}

// SeriesDetails retrieves one series with its seasons
func (t *Tools) SeriesDetails(ctx context.Context, in SeriesIDInput) Result[SeriesDetails] {
	t.logger.WithField("series_id", in.SeriesID).Info("Getting series details")

	if err := t.validateInput(in); err != nil {
		return respond[SeriesDetails](t, "get_series_details", nil, err)
	}

	var series sonarr.Series
	if err := t.client.Get(ctx, "series/"+strconv.Itoa(in.SeriesID), &series); err != nil {
		return respond[SeriesDetails](t, "get_series_details", nil, err)
	}

	details := detailSeries(series)
	t.logger.WithField("title", details.BasicInfo.Title).Debug("Retrieved series details")
	return respond(t, "get_series_details", details, nil)
}

// SearchSeriesInput are the arguments of search_series
type SearchSeriesInput struct {
	Term string `json:"term" jsonschema:"Series name or external id such as tvdb:12345" validate:"required"`
}

// LookupResult is one candidate returned by search_series
type LookupResult struct {
	Title    string         `json:"title"`
	Year     int            `json:"year"`
	TvdbID   int            `json:"tvdb_id"`
	ImdbID   string         `json:"imdb_id"`
	Overview string         `json:"overview"`
	Network  string         `json:"network"`
	Status   string         `json:"status"`
	Genres   []string       `json:"genres"`
	Runtime  int            `json:"runtime"`
	Seasons  int            `json:"seasons"`
	Images   []sonarr.Image `json:"images"`
}

// SearchResults is the data of search_series
type SearchResults struct {
	SearchTerm   string         `json:"search_term"`
	ResultsCount int            `json:"results_count"`
	Results      []LookupResult `json:"results"`
}

func lookupResult(s sonarr.Series) LookupResult {
	return LookupResult{
		Title:    s.Title,
		Year:     s.Year,
		TvdbID:   s.TvdbID,
		ImdbID:   s.ImdbID,
		Overview: truncate(s.Overview, lookupOverviewLimit),
		Network:  s.Network,
		Status:   s.Status,
		Genres:   firstN(s.Genres, maxGenres),
		Runtime:  s.Runtime,
		Seasons:  len(s.Seasons),
		Images:   orEmpty(s.Images),
	}
}

// SearchSeries looks up series that can be added to the library
func (t *Tools) SearchSeries(ctx context.Context, in SearchSeriesInput) Result[SearchResults] {
	t.logger.WithField("term", in.Term).Info("Searching for series")

	data, err := t.searchSeries(ctx, in)
	return respond(t, "search_series", data, err)
}

func (t *Tools) searchSeries(ctx context.Context, in SearchSeriesInput) (*SearchResults, error) {
	if err := t.validateInput(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Term) == "" {
		return nil, errors.New("invalid input: term must not be blank")
	}

	var found []sonarr.Series
	if err := t.client.Get(ctx, "series/lookup?"+url.Values{"term": {in.Term}}.Encode(), &found); err != nil {
		return nil, err
	}

	found = firstN(found, maxLookupResults)
	results := &SearchResults{
		SearchTerm:   in.Term,
		ResultsCount: len(found),
		Results:      make([]LookupResult, 0, len(found)),
	}
	for _, s := range found {
		results.Results = append(results.Results, lookupResult(s))
	}

	t.logger.WithFields(logrus.Fields{
		"term":  in.Term,
		"count": results.ResultsCount,
	}).Debug("Series lookup completed")
	return results, nil
}

// AddSeriesInput are the arguments of add_series
type AddSeriesInput struct {
	TvdbID           int     `json:"tvdb_id" jsonschema:"TVDB id of the series to add" validate:"gt=0"`
	Title            string  `json:"title" jsonschema:"Series title, used only when the lookup returns none" validate:"required"`
	RootFolderPath   *string `json:"root_folder_path,omitempty" jsonschema:"Root folder, defaults to the first configured one"`
	QualityProfileID *int    `json:"quality_profile_id,omitempty" jsonschema:"Quality profile id, defaults to the first configured one"`
	Monitored        *bool   `json:"monitored,omitempty" jsonschema:"Monitor the new series (default true)"`
}

// AddedSeries summarizes the series Sonarr created
type AddedSeries struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	TvdbID           int    `json:"tvdb_id"`
	Path             string `json:"path"`
	Monitored        bool   `json:"monitored"`
	QualityProfileID int    `json:"quality_profile_id"`
	Seasons          int    `json:"seasons"`
}

// AddSeriesResult is the data of add_series
type AddSeriesResult struct {
	AddedSeries AddedSeries `json:"added_series"`
	Message     string      `json:"message"`
}

// AddSeries adds a series, resolving root folder and quality profile
// defaults from Sonarr when they are not given.
func (t *Tools) AddSeries(ctx context.Context, in AddSeriesInput) Result[AddSeriesResult] {
	t.logger.WithFields(logrus.Fields{
		"title":   in.Title,
		"tvdb_id": in.TvdbID,
	}).Info("Adding series")

	data, err := t.addSeries(ctx, in)
	return respond(t, "add_series", data, err)
}

func (t *Tools) addSeries(ctx context.Context, in AddSeriesInput) (*AddSeriesResult, error) {
	if err := t.validateInput(in); err != nil {
		return nil, err
	}

	// 1. Root folder
	var rootFolderPath string
	if in.RootFolderPath != nil {
		rootFolderPath = *in.RootFolderPath
	} else {
		var folders []sonarr.RootFolder
		if err := t.client.Get(ctx, "rootfolder", &folders); err != nil {
			return nil, err
		}
		if len(folders) == 0 {
			return nil, ErrNoRootFolders
		}
		rootFolderPath = folders[0].Path
		t.logger.WithField("root_folder", rootFolderPath).Info("Using default root folder")
	}

	// 2. Quality profile
	var qualityProfileID int
	if in.QualityProfileID != nil {
		qualityProfileID = *in.QualityProfileID
	} else {
		var profiles []sonarr.QualityProfile
		if err := t.client.Get(ctx, "qualityprofile", &profiles); err != nil {
			return nil, err
		}
		if len(profiles) == 0 {
			return nil, ErrNoQualityProfiles
		}
		qualityProfileID = profiles[0].ID
		t.logger.WithField("quality_profile_id", qualityProfileID).Info("Using default quality profile")
	}

	// 3. Canonical series data
	var found []sonarr.Series
	term := fmt.Sprintf("tvdb:%d", in.TvdbID)
	if err := t.client.Get(ctx, "series/lookup?"+url.Values{"term": {term}}.Encode(), &found); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("Could not find series with TVDB ID: %d", in.TvdbID)
	}
	canonical := found[0]

	// 4. Create request
	title := canonical.Title
	if title == "" {
		title = in.Title
	}
	monitored := true
	if in.Monitored != nil {
		monitored = *in.Monitored
	}
	req := sonarr.AddSeriesRequest{
		Title:             title,
		QualityProfileID:  qualityProfileID,
		LanguageProfileID: defaultLanguageProfileID,
		RootFolderPath:    rootFolderPath,
		Monitored:         monitored,
		AddOptions: sonarr.AddOptions{
			Monitor:                  "all",
			SearchForMissingEpisodes: true,
		},
		TvdbID:    in.TvdbID,
		TitleSlug: canonical.TitleSlug,
		Images:    orEmpty(canonical.Images),
		Seasons:   orEmpty(canonical.Seasons),
	}

	// 5. Submit
	var created sonarr.Series
	if err := t.client.Post(ctx, "series", req, &created); err != nil {
		return nil, err
	}

	t.logger.WithFields(logrus.Fields{
		"series_id": created.ID,
		"title":     created.Title,
	}).Info("Successfully added series")

	return &AddSeriesResult{
		AddedSeries: AddedSeries{
			ID:               created.ID,
			Title:            created.Title,
			TvdbID:           created.TvdbID,
			Path:             created.Path,
			Monitored:        created.Monitored,
			QualityProfileID: created.QualityProfileID,
			Seasons:          len(created.Seasons),
		},
		Message: fmt.Sprintf("Successfully added '%s' to Sonarr", created.Title),
	}, nil
}
