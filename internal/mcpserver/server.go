// Package mcpserver assembles the MCP server exposing the Sonarr tools and
// resource templates over stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"net/http"

	"github.com/amaumene/sonarr-mcp/internal/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/yosida95/uritemplate/v3"
)

// DefaultName is the implementation name reported to MCP clients
const DefaultName = "Sonarr MCP Server"

const instructions = `This server manages a Sonarr instance.
Use get_series_list or search_series to find series ids, get_series_details
for one series, get_calendar, get_queue and get_history for episode activity,
add_series and trigger_series_search to change the library, and
get_system_status to check Sonarr health. Tool results are JSON documents with
either {"status":"success","data":...} or {"error":...}.`

// Info describes what the server exposes
type Info struct {
	Name              string   `json:"name"`
	Version           string   `json:"version"`
	Tools             []string `json:"tools"`
	ResourceTemplates []string `json:"resource_templates"`
}

// Server wraps the MCP server with the registered Sonarr handlers
type Server struct {
	mcp    *mcp.Server
	tools  *tools.Tools
	logger *logrus.Logger
	info   Info
}

// New creates the MCP server and registers every tool and resource template.
// instance is the configured Sonarr name; anything other than "sonarr" is
// appended to the implementation name.
func New(t *tools.Tools, logger *logrus.Logger, instance, version string) *Server {
	name := DefaultName
	if instance != "" && instance != "sonarr" {
		name += " (" + instance + ")"
	}

	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    name,
			Version: version,
		}, &mcp.ServerOptions{
			Instructions: instructions,
		}),
		tools:  t,
		logger: logger,
		info: Info{
			Name:              name,
			Version:           version,
			Tools:             []string{},
			ResourceTemplates: []string{},
		},
	}

	s.registerTools()
	s.registerResources()

	logger.WithFields(logrus.Fields{
		"tools":              len(s.info.Tools),
		"resource_templates": len(s.info.ResourceTemplates),
	}).Info("MCP server initialized")
	return s
}

// MCP returns the underlying SDK server
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Info returns the server name, version and registered capabilities
func (s *Server) Info() Info {
	return s.info
}

// Handler returns the streamable HTTP handler serving this server
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

// ServeStdio serves a single client over stdin/stdout until ctx is done or
// the client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("Serving MCP over stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	addTool(s, "get_series_list",
		"Get all TV series in Sonarr, optionally only monitored or unmonitored ones",
		s.tools.SeriesList)
	addTool(s, "get_series_details",
		"Get detailed information about one series including its seasons",
		s.tools.SeriesDetails)
	addTool(s, "search_series",
		"Search for new series to add by name or external id (for example tvdb:12345)",
		s.tools.SearchSeries)
	addTool(s, "add_series",
		"Add a series by TVDB id; root folder and quality profile default to the first configured ones",
		s.tools.AddSeries)
	addTool(s, "get_calendar",
		"Get episodes airing between two dates, grouped by air date",
		s.tools.Calendar)
	addTool(s, "get_queue",
		"Get the download queue with progress of each item",
		s.tools.Queue)
	addTool(s, "get_history",
		"Get download and import history, most recent first",
		s.tools.History)
	addTool(s, "trigger_series_search",
		"Queue a search for missing episodes of a series",
		s.tools.TriggerSeriesSearch)
	addTool(s, "get_system_status",
		"Get Sonarr version information and health check results",
		s.tools.SystemStatus)
}

// addTool registers a handler whose result document is returned as the
// structured tool output. Domain failures travel inside the document.
func addTool[In, Out any](s *Server, name, description string, handle func(context.Context, In) tools.Result[Out]) {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, tools.Result[Out], error) {
		s.logger.WithField("tool", name).Debug("Tool called")
		return nil, handle(ctx, in), nil
	})
	s.info.Tools = append(s.info.Tools, name)
}

func (s *Server) registerResources() {
	s.addResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: tools.SeriesPosterTemplate,
		Name:        "series_poster",
		Description: "Absolute URL of the series poster image",
		MIMEType:    "text/plain",
	}, "series_id", s.tools.SeriesPoster)

	s.addResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: tools.EpisodeDetailsTemplate,
		Name:        "episode_details",
		Description: "Episode, series and file information as JSON",
		MIMEType:    "application/json",
	}, "episode_id", s.tools.EpisodeDetails)
}

func (s *Server) addResourceTemplate(tpl *mcp.ResourceTemplate, param string, read func(context.Context, string) string) {
	matcher := uritemplate.MustNew(tpl.URITemplate)

	s.mcp.AddResourceTemplate(tpl, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		values := matcher.Match(uri)
		if values == nil {
			return nil, mcp.ResourceNotFoundError(uri)
		}

		id := values.Get(param).String()
		s.logger.WithFields(logrus.Fields{
			"resource": tpl.Name,
			param:      id,
		}).Debug("Resource read")

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      uri,
				MIMEType: tpl.MIMEType,
				Text:     read(ctx, id),
			}},
		}, nil
	})
	s.info.ResourceTemplates = append(s.info.ResourceTemplates, tpl.URITemplate)
}
