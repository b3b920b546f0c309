package models

import "time"

// JobStatus represents where a wash job is in its lifecycle
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"     // Booked, no crew yet
	JobStatusAssigned   JobStatus = "assigned"    // Crew assigned
	JobStatusEnRoute    JobStatus = "en_route"    // Crew driving to the address
	JobStatusInProgress JobStatus = "in_progress" // Washing
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
	JobStatusOnHold     JobStatus = "on_hold"
)

var validJobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusAssigned, JobStatusCancelled, JobStatusOnHold},
	JobStatusAssigned:   {JobStatusEnRoute, JobStatusCancelled, JobStatusOnHold},
	JobStatusEnRoute:    {JobStatusInProgress, JobStatusCancelled, JobStatusOnHold},
	JobStatusInProgress: {JobStatusCompleted, JobStatusCancelled, JobStatusOnHold},
	JobStatusOnHold:     {JobStatusAssigned, JobStatusEnRoute, JobStatusInProgress, JobStatusCancelled},
	JobStatusCompleted:  {},
	JobStatusCancelled:  {},
}

// CanTransition reports whether a job may move from one status to another
func CanTransition(from, to JobStatus) bool {
	allowed, ok := validJobTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true for completed and cancelled jobs
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// ActiveJob is a job the server still considers live
type ActiveJob struct {
	ID        string    `json:"id"`
	JobNumber string    `json:"job_number"`
	Status    JobStatus `json:"status"`

	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name,omitempty"`

	ServiceAddress string   `json:"service_address"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`

	ScheduledStart    time.Time  `json:"scheduled_start"`
	ActualStart       *time.Time `json:"actual_start,omitempty"`
	EstimatedDuration int        `json:"estimated_duration"` // minutes

	TotalAmount         float64 `json:"total_amount"`
	SpecialInstructions *string `json:"special_instructions,omitempty"`

	AssignedCrew *JobCrew   `json:"assigned_crew,omitempty"`
	Service      JobService `json:"service"`
	CrewGroup    *CrewGroup `json:"crew_group,omitempty"`
	Progress     int        `json:"progress"`
}

// JobCrew is the crew snapshot embedded in an active job
type JobCrew struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Phone     string   `json:"phone,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type JobService struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	WashType string `json:"wash_type,omitempty"`
	Duration int    `json:"duration"` // minutes
}

type CrewGroup struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// JobUpdate is the body for POST /jobs/update
type JobUpdate struct {
	JobID     string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Progress  *int      `json:"progress,omitempty"`
	Stage     *string   `json:"stage,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	PhotoURLs []string  `json:"photo_urls,omitempty"`
}
