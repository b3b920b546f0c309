package models

import "time"

// CrewStatus represents what a crew is doing right now
type CrewStatus string

const (
	CrewStatusAvailable CrewStatus = "available"
	CrewStatusAssigned  CrewStatus = "assigned"
	CrewStatusEnRoute   CrewStatus = "en_route"
	CrewStatusOnSite    CrewStatus = "on_site"
	CrewStatusOnBreak   CrewStatus = "on_break"
	CrewStatusOffline   CrewStatus = "offline"
)

// CrewLocation is the latest server-side snapshot for one crew
type CrewLocation struct {
	CrewID      string     `json:"crew_id"`
	CrewName    string     `json:"crew_name"`
	Phone       string     `json:"phone,omitempty"`
	GroupID     string     `json:"group_id,omitempty"`
	GroupName   string     `json:"group_name,omitempty"`
	GroupColor  string     `json:"group_color,omitempty"`
	Status      CrewStatus `json:"status"`
	StatusSince *time.Time `json:"status_since,omitempty"`

	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"` // meters
	Heading   *float64 `json:"heading,omitempty"`  // 0-360 degrees
	Speed     *float64 `json:"speed,omitempty"`    // m/s
	Address   *string  `json:"address,omitempty"`

	// Absent until the device reports them
	BatteryLevel   *int `json:"battery_level,omitempty"`
	SignalStrength *int `json:"signal_strength,omitempty"`

	LastUpdate time.Time   `json:"last_update"`
	CurrentJob *CrewJobRef `json:"current_job,omitempty"`
}

// CrewJobRef links a crew to the job it is working
type CrewJobRef struct {
	JobID           string    `json:"job_id"`
	JobNumber       string    `json:"job_number"`
	Status          JobStatus `json:"status"`
	Address         string    `json:"address,omitempty"`
	ServiceName     string    `json:"service_name,omitempty"`
	ServiceCategory string    `json:"service_category,omitempty"`
	Progress        int       `json:"progress"`
}

// LocationUpdate is the body for POST /crew/location
type LocationUpdate struct {
	CrewID         string   `json:"crew_id"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Accuracy       *float64 `json:"accuracy,omitempty"`
	Heading        *float64 `json:"heading,omitempty"`
	Speed          *float64 `json:"speed,omitempty"`
	BatteryLevel   *int     `json:"battery_level,omitempty"`
	SignalStrength *int     `json:"signal_strength,omitempty"`
	Address        *string  `json:"address,omitempty"`
}

// StatusUpdate is the body for POST /crew/status
type StatusUpdate struct {
	CrewID string     `json:"crew_id"`
	Status CrewStatus `json:"status"`
	Reason *string    `json:"reason,omitempty"`
	JobID  *string    `json:"job_id,omitempty"`
}

// StatusHistoryEntry is one row of GET /crew/:id/status-history
type StatusHistoryEntry struct {
	ID             string      `json:"id"`
	CrewID         string      `json:"crew_id"`
	Status         CrewStatus  `json:"status"`
	PreviousStatus *CrewStatus `json:"previous_status,omitempty"`
	Reason         *string     `json:"reason,omitempty"`
	JobID          *string     `json:"job_id,omitempty"`
	ChangedAt      time.Time   `json:"changed_at"`
}
