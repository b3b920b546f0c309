package views

import (
	"sort"
	"time"

	"crewwatch/internal/models"
)

const (
	DefaultVehicleType = "van"
	DefaultRating      = 4.8
	LowBatteryPercent  = 20
)

// CrewMarker is a flattened crew location ready for a map layer.
type CrewMarker struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Phone       string            `json:"phone,omitempty"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Heading     float64           `json:"heading"`
	Status      models.CrewStatus `json:"status"`
	StatusColor string            `json:"status_color"`
	GroupName   string            `json:"group_name,omitempty"`
	GroupColor  string            `json:"group_color"`
	VehicleType string            `json:"vehicle_type"`
	Rating      float64           `json:"rating"`
	Address     string            `json:"address,omitempty"`
	Battery     *int              `json:"battery,omitempty"`
	LowBattery  bool              `json:"low_battery"`
	LastUpdate  time.Time         `json:"last_update"`

	JobID       string `json:"job_id,omitempty"`
	JobNumber   string `json:"job_number,omitempty"`
	JobStatus   string `json:"job_status,omitempty"`
	JobAddress  string `json:"job_address,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	Progress    int    `json:"progress"`

	// Set by SortByDistance
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// CrewMarkers converts crew locations into map markers, filling defaults
// for anything the server did not report.
func CrewMarkers(crews []models.CrewLocation) []CrewMarker {
	markers := make([]CrewMarker, 0, len(crews))
	for _, c := range crews {
		statusColor := StatusColor(string(c.Status))
		m := CrewMarker{
			ID:          c.CrewID,
			Name:        c.CrewName,
			Phone:       c.Phone,
			Latitude:    c.Latitude,
			Longitude:   c.Longitude,
			Status:      c.Status,
			StatusColor: statusColor,
			GroupName:   c.GroupName,
			GroupColor:  c.GroupColor,
			VehicleType: DefaultVehicleType,
			Rating:      DefaultRating,
			Battery:     c.BatteryLevel,
			LastUpdate:  c.LastUpdate,
		}
		if m.GroupColor == "" {
			m.GroupColor = statusColor
		}
		if c.Heading != nil {
			m.Heading = *c.Heading
		}
		if c.Address != nil {
			m.Address = *c.Address
		}
		if c.BatteryLevel != nil && *c.BatteryLevel <= LowBatteryPercent {
			m.LowBattery = true
		}
		if j := c.CurrentJob; j != nil {
			m.JobID = j.JobID
			m.JobNumber = j.JobNumber
			m.JobStatus = string(j.Status)
			m.JobAddress = j.Address
			m.ServiceName = j.ServiceName
			m.Progress = j.Progress
		}
		markers = append(markers, m)
	}
	return markers
}

// SortByDistance annotates each marker with its distance from lat/lng and
// orders them nearest first.
func SortByDistance(markers []CrewMarker, lat, lng float64) {
	for i := range markers {
		d := DistanceKm(lat, lng, markers[i].Latitude, markers[i].Longitude)
		markers[i].DistanceKm = &d
	}
	sort.SliceStable(markers, func(i, j int) bool {
		return *markers[i].DistanceKm < *markers[j].DistanceKm
	})
}
