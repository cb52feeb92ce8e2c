package tools

import (
	"context"
	"fmt"

	"github.com/amaumene/sonarr-mcp/internal/services/sonarr"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

const seriesSearchCommand = "SeriesSearch"

// Health status values
const (
	HealthHealthy   = "healthy"
	HealthHasIssues = "has_issues"
)

// CommandResult is the data of trigger_series_search
type CommandResult struct {
	CommandID   int    `json:"command_id"`
	CommandName string `json:"command_name"`
	SeriesID    int    `json:"series_id"`
	Status      string `json:"status"`
	QueuedAt    string `json:"queued_at"`
	Message     string `json:"message"`
}

// TriggerSeriesSearch queues a search for missing episodes of a series
func (t *Tools) TriggerSeriesSearch(ctx context.Context, in SeriesIDInput) Result[CommandResult] {
	t.logger.WithField("series_id", in.SeriesID).Info("Triggering series search")

	data, err := t.triggerSeriesSearch(ctx, in)
	return respond(t, "trigger_series_search", data, err)
}

func (t *Tools) triggerSeriesSearch(ctx context.Context, in SeriesIDInput) (*CommandResult, error) {
	if err := t.validateInput(in); err != nil {
		return nil, err
	}

	var cmd sonarr.Command
	req := sonarr.CommandRequest{Name: seriesSearchCommand, SeriesID: in.SeriesID}
	if err := t.client.Post(ctx, "command", req, &cmd); err != nil {
		return nil, err
	}

	t.logger.WithField("command_id", cmd.ID).Info("Series search triggered")
	return &CommandResult{
		CommandID:   cmd.ID,
		CommandName: cmd.Name,
		SeriesID:    in.SeriesID,
		Status:      cmd.Status,
		QueuedAt:    cmd.Queued,
		Message:     fmt.Sprintf("Search command queued for series ID %d", in.SeriesID),
	}, nil
}

// SystemStatusInput takes no arguments
type SystemStatusInput struct{}

// SystemInfo is the reshaped /system/status document
type SystemInfo struct {
	Version           string `json:"version"`
	BuildTime         string `json:"build_time"`
	StartupPath       string `json:"startup_path"`
	AppData           string `json:"app_data"`
	OsName            string `json:"os_name"`
	OsVersion         string `json:"os_version"`
	IsDebug           bool   `json:"is_debug"`
	IsProduction      bool   `json:"is_production"`
	IsAdmin           bool   `json:"is_admin"`
	IsUserInteractive bool   `json:"is_user_interactive"`
	Branch            string `json:"branch"`
	Authentication    string `json:"authentication"`
	MigrationVersion  int    `json:"migration_version"`
	URLBase           string `json:"url_base"`
	RuntimeVersion    string `json:"runtime_version"`
}

// HealthIssue is one reported health check failure
type HealthIssue struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	WikiURL string `json:"wiki_url"`
}

// HealthSummary aggregates health issues
type HealthSummary struct {
	TotalIssues int           `json:"total_issues"`
	Issues      []HealthIssue `json:"issues"`
	Status      string        `json:"status"`
}

// SystemStatus is the data of get_system_status
type SystemStatus struct {
	System SystemInfo    `json:"system"`
	Health HealthSummary `json:"health"`
}

func systemInfo(s sonarr.SystemStatus) SystemInfo {
	return SystemInfo{
		Version:           s.Version,
		BuildTime:         s.BuildTime,
		StartupPath:       s.StartupPath,
		AppData:           s.AppData,
		OsName:            s.OsName,
		OsVersion:         s.OsVersion,
		IsDebug:           s.IsDebug,
		IsProduction:      s.IsProduction,
		IsAdmin:           s.IsAdmin,
		IsUserInteractive: s.IsUserInteractive,
		Branch:            s.Branch,
		Authentication:    s.Authentication,
		MigrationVersion:  s.MigrationVersion,
		URLBase:           s.URLBase,
		RuntimeVersion:    s.RuntimeVersion,
	}
}

func healthSummary(issues []sonarr.HealthIssue) HealthSummary {
	summary := HealthSummary{
		TotalIssues: len(issues),
		Issues:      make([]HealthIssue, 0, len(issues)),
		Status:      HealthHealthy,
	}
	for _, issue := range issues {
		summary.Issues = append(summary.Issues, HealthIssue{
			Type:    issue.Type,
			Message: issue.Message,
			WikiURL: issue.WikiURL,
		})
	}
	if summary.TotalIssues > 0 {
		summary.Status = HealthHasIssues
	}
	return summary
}

// SystemStatus reports Sonarr version information and health checks
func (t *Tools) SystemStatus(ctx context.Context, _ SystemStatusInput) Result[SystemStatus] {
	t.logger.Info("Getting system status and health")

	data, err := t.systemStatus(ctx)
	return respond(t, "get_system_status", data, err)
}

func (t *Tools) systemStatus(ctx context.Context) (*SystemStatus, error) {
	var (
		status sonarr.SystemStatus
		health []sonarr.HealthIssue
	)

	// Both requests are started before either is awaited; the first failure
	// cancels the other one and is the error returned.
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		return t.client.Get(ctx, "system/status", &status)
	})
	p.Go(func(ctx context.Context) error {
		return t.client.Get(ctx, "health", &health)
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	result := &SystemStatus{
		System: systemInfo(status),
		Health: healthSummary(health),
	}

	t.logger.WithFields(logrus.Fields{
		"version":       result.System.Version,
		"health_issues": result.Health.TotalIssues,
	}).Debug("System status retrieved")
	return result, nil
}
