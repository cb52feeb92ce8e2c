package sonarr

import "encoding/json"

// Image is an artwork reference attached to a series
type Image struct {
	CoverType string `json:"coverType"`
	URL       string `json:"url,omitempty"`
	RemoteURL string `json:"remoteUrl,omitempty"`
}

// SeriesStatistics holds the counts read from a statistics block. The block
// itself is kept raw on Series and Season so it can be passed on unchanged.
type SeriesStatistics struct {
	SeasonCount       int     `json:"seasonCount"`
	EpisodeFileCount  int     `json:"episodeFileCount"`
	EpisodeCount      int     `json:"episodeCount"`
	TotalEpisodeCount int     `json:"totalEpisodeCount"`
	SizeOnDisk        int64   `json:"sizeOnDisk"`
	PercentOfEpisodes float64 `json:"percentOfEpisodes"`
}

// ParseStatistics decodes the counts of a raw statistics block. An absent,
// null or malformed block yields zero counts.
func ParseStatistics(raw json.RawMessage) SeriesStatistics {
	var st SeriesStatistics
	if len(raw) == 0 {
		return st
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return SeriesStatistics{}
	}
	return st
}

// Season represents a season in a series
type Season struct {
	SeasonNumber int             `json:"seasonNumber"`
	Monitored    bool            `json:"monitored"`
	Statistics   json.RawMessage `json:"statistics,omitempty"`
}

// Series represents a series from the series and lookup endpoints
type Series struct {
	ID                int             `json:"id"`
	Title             string          `json:"title"`
	SortTitle         string          `json:"sortTitle"`
	TitleSlug         string          `json:"titleSlug"`
	Status            string          `json:"status"`
	Overview          string          `json:"overview"`
	Network           string          `json:"network"`
	AirTime           string          `json:"airTime"`
	Runtime           int             `json:"runtime"`
	Year              int             `json:"year"`
	Genres            []string        `json:"genres"`
	Certification     string          `json:"certification"`
	ImdbID            string          `json:"imdbId"`
	TvdbID            int             `json:"tvdbId"`
	Monitored         bool            `json:"monitored"`
	SeasonFolder      bool            `json:"seasonFolder"`
	QualityProfileID  int             `json:"qualityProfileId"`
	LanguageProfileID int             `json:"languageProfileId"`
	Path              string          `json:"path"`
	Seasons           []Season        `json:"seasons"`
	Statistics        json.RawMessage `json:"statistics"`
	Images            []Image         `json:"images"`
}

// Stats returns the counts of the statistics block, zero when absent
func (s Series) Stats() SeriesStatistics {
	return ParseStatistics(s.Statistics)
}

// AddOptions controls what Sonarr does right after a series is added
type AddOptions struct {
	Monitor                  string `json:"monitor"`
	SearchForMissingEpisodes bool   `json:"searchForMissingEpisodes"`
}

// AddSeriesRequest is the body of POST /series
type AddSeriesRequest struct {
	Title             string     `json:"title"`
	QualityProfileID  int        `json:"qualityProfileId"`
	LanguageProfileID int        `json:"languageProfileId"`
	RootFolderPath    string     `json:"rootFolderPath"`
	Monitored         bool       `json:"monitored"`
	AddOptions        AddOptions `json:"addOptions"`
	TvdbID            int        `json:"tvdbId"`
	TitleSlug         string     `json:"titleSlug"`
	Images            []Image    `json:"images"`
	Seasons           []Season   `json:"seasons"`
}

// RootFolder is a configured library root
type RootFolder struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
}

// QualityProfile is a configured quality profile
type QualityProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// QualityWrapper mirrors the doubly nested quality object Sonarr returns
type QualityWrapper struct {
	Quality struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"quality"`
}

// Name returns the inner quality name
func (q *QualityWrapper) Name() string {
	if q == nil {
		return ""
	}
	return q.Quality.Name
}

// SeriesRef is the series summary embedded in episodes, queue and history records
type SeriesRef struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// EpisodeRef is the episode summary embedded in queue and history records
type EpisodeRef struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
}

// EpisodeFile is the file attached to an episode
type EpisodeFile struct {
	ID           int             `json:"id"`
	RelativePath string          `json:"relativePath"`
	Path         string          `json:"path"`
	Size         int64           `json:"size"`
	Quality      *QualityWrapper `json:"quality"`
	MediaInfo    json.RawMessage `json:"mediaInfo"`

	// empty is set when the file was decoded from {}
	empty bool
}

// UnmarshalJSON decodes the file and records whether the object had any keys
func (f *EpisodeFile) UnmarshalJSON(data []byte) error {
	type plain EpisodeFile
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*f = EpisodeFile(p)
	f.empty = len(keys) == 0
	return nil
}

// Present reports whether the file exists and was not an empty object
func (f *EpisodeFile) Present() bool {
	return f != nil && !f.empty
}

// Episode is returned by the episode and calendar endpoints
type Episode struct {
	ID            int          `json:"id"`
	SeriesID      int          `json:"seriesId"`
	Title         string       `json:"title"`
	SeasonNumber  int          `json:"seasonNumber"`
	EpisodeNumber int          `json:"episodeNumber"`
	AirDate       string       `json:"airDate"`
	AirDateUTC    string       `json:"airDateUtc"`
	Overview      string       `json:"overview"`
	HasFile       bool         `json:"hasFile"`
	Monitored     bool         `json:"monitored"`
	Series        *SeriesRef   `json:"series"`
	EpisodeFile   *EpisodeFile `json:"episodeFile"`
}

// QueueRecord represents a record in the Sonarr queue
type QueueRecord struct {
	ID                    int             `json:"id"`
	Series                *SeriesRef      `json:"series"`
	Episode               *EpisodeRef     `json:"episode"`
	Quality               *QualityWrapper `json:"quality"`
	Size                  float64         `json:"size"`
	SizeLeft              float64         `json:"sizeleft"`
	Status                string          `json:"status"`
	TrackedDownloadStatus string          `json:"trackedDownloadStatus"`
	DownloadClient        string          `json:"downloadClient"`
	OutputPath            string          `json:"outputPath"`
}

// QueuePage is the paginated response from /queue
type QueuePage struct {
	Page         int           `json:"page"`
	PageSize     int           `json:"pageSize"`
	TotalRecords int           `json:"totalRecords"`
	Records      []QueueRecord `json:"records"`
}

// HistoryRecord is an item from /history
type HistoryRecord struct {
	ID          int                    `json:"id"`
	EpisodeID   int                    `json:"episodeId"`
	SeriesID    int                    `json:"seriesId"`
	EventType   string                 `json:"eventType"`
	Date        string                 `json:"date"`
	SourceTitle string                 `json:"sourceTitle"`
	Series      *SeriesRef             `json:"series"`
	Episode     *EpisodeRef            `json:"episode"`
	Quality     *QualityWrapper        `json:"quality"`
	Data        map[string]interface{} `json:"data"`
}

// DataString returns a string entry of the event data, or "" when the key
// is missing or holds another type
func (h HistoryRecord) DataString(key string) string {
	v, _ := h.Data[key].(string)
	return v
}

// HistoryPage is the paginated response from /history
type HistoryPage struct {
	Page         int             `json:"page"`
	PageSize     int             `json:"pageSize"`
	TotalRecords int             `json:"totalRecords"`
	Records      []HistoryRecord `json:"records"`
}

// CommandRequest is the body of POST /command
type CommandRequest struct {
	Name     string `json:"name"`
	SeriesID int    `json:"seriesId,omitempty"`
}

// Command is Sonarr's view of a submitted command
type Command struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Queued string `json:"queued"`
}

// SystemStatus is returned by /system/status
type SystemStatus struct {
	Version           string `json:"version"`
	BuildTime         string `json:"buildTime"`
	StartupPath       string `json:"startupPath"`
	AppData           string `json:"appData"`
	OsName            string `json:"osName"`
	OsVersion         string `json:"osVersion"`
	IsDebug           bool   `json:"isDebug"`
	IsProduction      bool   `json:"isProduction"`
	IsAdmin           bool   `json:"isAdmin"`
	IsUserInteractive bool   `json:"isUserInteractive"`
	Branch            string `json:"branch"`
	Authentication    string `json:"authentication"`
	MigrationVersion  int    `json:"migrationVersion"`
	URLBase           string `json:"urlBase"`
	RuntimeVersion    string `json:"runtimeVersion"`
}

// HealthIssue is an item from /health
type HealthIssue struct {
	Source  string `json:"source"`
	Type    string `json:"type"`
	Message string `json:"message"`
	WikiURL string `json:"wikiUrl"`
}

// DeleteResult is the fixed document returned for DELETE calls
type DeleteResult struct {
	Status string `json:"status"`
}
