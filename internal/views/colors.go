package views

const fallbackColor = "#6B7280" // gray

var statusColors = map[string]string{
	// crew
	"available": "#10B981",
	"assigned":  "#6366F1",
	"en_route":  "#3B82F6",
	"on_site":   "#F59E0B",
	"on_break":  "#8B5CF6",
	"offline":   "#6B7280",

	// job
	"pending":     "#F97316",
	"in_progress": "#F59E0B",
	"completed":   "#10B981",
	"cancelled":   "#EF4444",
	"on_hold":     "#EAB308",
}

// StatusColor maps a crew or job status to its display color.
func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return fallbackColor
}
