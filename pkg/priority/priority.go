// Package priority derives consultation-queue urgency from a visit's type.
//
// Priority is never selected manually: it is computed from the visit_type
// chosen at visit creation, which keeps queue ordering consistent. Lower
// number = higher urgency.
package priority

import "strings"

// Urgency values returned by FromVisitType.
const (
	Emergency = 0
	High      = 1
	Medium    = 2
	Low       = 3
)

// FromVisitType maps a visit type to its numeric urgency. Unrecognized
// types fall through to Low; this is the documented default, not an error.
func FromVisitType(visitType string) int {
	switch strings.ToLower(visitType) {
	case "emergency":
		return Emergency
	case "follow_up", "follow-up":
		return High
	case "consultation":
		return Medium
	default:
		return Low
	}
}

// Label maps a numeric urgency to its display label.
func Label(priority int) string {
	switch {
	case priority <= Emergency:
		return "Emergency"
	case priority == High:
		return "High"
	case priority == Medium:
		return "Medium"
	default:
		return "Low"
	}
}

// Style maps a numeric urgency to one of four fixed badge style classes.
func Style(priority int) string {
	return StyleForLabel(Label(priority))
}

// StyleForLabel maps a display label to its badge style class. Unknown
// labels get the neutral class.
func StyleForLabel(label string) string {
	switch label {
	case "Emergency":
		return "badge-danger"
	case "High":
		return "badge-warning"
	case "Medium":
		return "badge-caution"
	case "Low":
		return "badge-success"
	default:
		return "badge-neutral"
	}
}
