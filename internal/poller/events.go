package poller

import (
	"time"

	"crewwatch/internal/models"
	"crewwatch/internal/transport"
)

// KindCircuitOpen marks error events emitted while polling is paused.
const KindCircuitOpen transport.Kind = "circuit_open"

// CrewLocationsEvent is emitted on eventbus.TopicCrewLocations.
type CrewLocationsEvent struct {
	Crews      []models.CrewLocation `json:"crews"`
	Timestamp  string                `json:"timestamp,omitempty"`
	ReceivedAt time.Time             `json:"received_at"`
}

// ActiveJobsEvent is emitted on eventbus.TopicActiveJobs.
type ActiveJobsEvent struct {
	Jobs       []models.ActiveJob `json:"jobs"`
	Timestamp  string             `json:"timestamp,omitempty"`
	ReceivedAt time.Time          `json:"received_at"`
}

// DashboardStatsEvent is emitted on eventbus.TopicDashboardStats.
type DashboardStatsEvent struct {
	Stats      models.DashboardStats `json:"stats"`
	Timestamp  string                `json:"timestamp,omitempty"`
	ReceivedAt time.Time             `json:"received_at"`
}

// ErrorEvent is emitted on eventbus.TopicError.
type ErrorEvent struct {
	Kind              transport.Kind `json:"kind"`
	Resource          string         `json:"resource,omitempty"` // which read failed, empty for offline/circuit
	Message           string         `json:"message"`
	Err               error          `json:"-"`
	ConsecutiveErrors int            `json:"consecutive_errors"`
	At                time.Time      `json:"at"`
}

// Outcome summarizes what one timer firing did.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeOffline     Outcome = "offline"
	OutcomeCircuitOpen Outcome = "circuit_open"
	OutcomeFailed      Outcome = "failed"
	OutcomeSkipped     Outcome = "skipped" // previous tick still in flight
)

// TickReport is handed to observers after every firing.
type TickReport struct {
	StartedAt         time.Time
	Duration          time.Duration
	Outcome           Outcome
	ConsecutiveErrors int
	ErrorKind         transport.Kind
	Message           string
}
