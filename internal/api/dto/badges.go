package dto

import "strings"

// StatusClass picks the badge style for a status. Unknown values get the
// neutral style.
func StatusClass(status string) string {
	switch strings.ToLower(status) {
	case "open":
		return "badge-green"
	case "closed":
		return "badge-gray"
	default:
		return "badge-blue"
	}
}

// PriorityClass picks the badge style for a priority.
func PriorityClass(priority string) string {
	switch strings.ToLower(priority) {
	case "high":
		return "badge-red"
	case "medium":
		return "badge-yellow"
	case "low":
		return "badge-blue"
	default:
		return "badge-gray"
	}
}

// PriorityBarClass picks the fill colour of a priority distribution bar.
func PriorityBarClass(priority string) string {
	switch strings.ToLower(priority) {
	case "high":
		return "bar-red"
	case "medium":
		return "bar-yellow"
	default:
		return "bar-blue"
	}
}
