package realtime

import (
	"context"
	"net/http"

	"crewwatch/internal/models"
)

type JobUpdateResult struct {
	Result
}

type ActiveJobsResult struct {
	Result
	Jobs []models.ActiveJob `json:"jobs"`
}

type DashboardStatsResult struct {
	Result
	Stats models.DashboardStats `json:"stats"`
}

// UpdateJob reports progress on a job. Transition rules are enforced by the
// server; nothing is checked here.
func (c *Client) UpdateJob(ctx context.Context, update models.JobUpdate) JobUpdateResult {
	var out JobUpdateResult
	c.call(ctx, http.MethodPost, "/jobs/update", update, &out, "Failed to update job")
	return out
}

func (c *Client) GetActiveJobs(ctx context.Context) ActiveJobsResult {
	var out ActiveJobsResult
	c.call(ctx, http.MethodGet, "/jobs/active", nil, &out, "Failed to fetch active jobs")
	return out
}

func (c *Client) GetDashboardStats(ctx context.Context) DashboardStatsResult {
	var out DashboardStatsResult
	c.call(ctx, http.MethodGet, "/dashboard/stats", nil, &out, "Failed to fetch dashboard stats")
	return out
}
