package models

// DashboardStats aggregates counts and revenue for the live operations view
type DashboardStats struct {
	Crews   CrewCounts    `json:"crews"`
	Jobs    JobCounts     `json:"jobs"`
	Revenue RevenueTotals `json:"revenue"`
}

type CrewCounts struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Assigned  int `json:"assigned"`
	EnRoute   int `json:"en_route"`
	OnSite    int `json:"on_site"`
	OnBreak   int `json:"on_break"`
	Offline   int `json:"offline"`
}

type JobCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Assigned   int `json:"assigned"`
	EnRoute    int `json:"en_route"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	OnHold     int `json:"on_hold"`
}

type RevenueTotals struct {
	Today float64 `json:"today"`
	Week  float64 `json:"week"`
	Month float64 `json:"month"`
}

// Active returns jobs that are neither finished nor waiting to be booked
func (c JobCounts) Active() int {
	return c.Assigned + c.EnRoute + c.InProgress
}
