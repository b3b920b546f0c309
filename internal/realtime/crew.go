package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"crewwatch/internal/models"
)

type LocationWriteResult struct {
	Result
	LocationID string `json:"location_id,omitempty"`
}

type CrewLocationsResult struct {
	Result
	Crews []models.CrewLocation `json:"crews"`
}

type StatusWriteResult struct {
	Result
	StatusID string `json:"status_id,omitempty"`
}

type StatusHistoryResult struct {
	Result
	History []models.StatusHistoryEntry `json:"history"`
}

// UpdateCrewLocation posts one GPS fix for a crew.
func (c *Client) UpdateCrewLocation(ctx context.Context, update models.LocationUpdate) LocationWriteResult {
	var out LocationWriteResult
	c.call(ctx, http.MethodPost, "/crew/location", update, &out, "Failed to update crew location")
	return out
}

// GetCrewLocations returns the latest location of every crew.
func (c *Client) GetCrewLocations(ctx context.Context) CrewLocationsResult {
	var out CrewLocationsResult
	c.call(ctx, http.MethodGet, "/crew/locations", nil, &out, "Failed to fetch crew locations")
	return out
}

func (c *Client) UpdateCrewStatus(ctx context.Context, update models.StatusUpdate) StatusWriteResult {
	var out StatusWriteResult
	c.call(ctx, http.MethodPost, "/crew/status", update, &out, "Failed to update crew status")
	return out
}

// GetCrewStatusHistory returns up to limit status changes; limit <= 0 lets
// the server pick.
func (c *Client) GetCrewStatusHistory(ctx context.Context, crewID string, limit int) StatusHistoryResult {
	var out StatusHistoryResult
	path := "/crew/" + url.PathEscape(crewID) + "/status-history" + limitQuery(limit)
	c.call(ctx, http.MethodGet, path, nil, &out, "Failed to fetch crew status history")
	return out
}

func limitQuery(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf("?limit=%d", limit)
}
