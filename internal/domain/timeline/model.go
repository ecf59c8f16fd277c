// Package timeline flattens a patient's clinical history across the
// records, consultation, laboratory, radiology, pharmacy, and nursing
// subsystems into one reverse-chronological feed grouped by calendar day.
package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/emr/journey/internal/records"
	"github.com/emr/journey/pkg/priority"
)

// Kind tags the subsystem an event came from.
type Kind string

const (
	KindEncounter    Kind = "encounter"
	KindSession      Kind = "session"
	KindLabResult    Kind = "lab"
	KindImaging      Kind = "imaging"
	KindPrescription Kind = "prescription"
	KindVitals       Kind = "vital"
)

// Event is one normalized clinical occurrence. Events are value objects
// rebuilt per request; Date is always a YYYY-MM-DD string by the time an
// event enters the aggregation.
type Event struct {
	ID          string      `json:"id"`
	Kind        Kind        `json:"kind"`
	Date        string      `json:"date"`
	Time        string      `json:"time,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      string      `json:"status,omitempty"`
	Staff       string      `json:"staff,omitempty"`
	Details     interface{} `json:"details,omitempty"`
}

// Group is all events sharing one calendar day, most recent first.
type Group struct {
	Date   string  `json:"date"`
	Events []Event `json:"events"`
}

// Timeline is the aggregation result for one patient.
type Timeline struct {
	Groups []Group `json:"groups"`
	Total  int     `json:"total"`
}

// Collections bundles the raw per-subsystem fetches feeding one
// aggregation. Any slice may be nil when its fetch degraded.
type Collections struct {
	Visits        []records.Visit
	Sessions      []records.Session
	LabResults    []records.LabResult
	Imaging       []records.ImagingResult
	Prescriptions []records.Prescription
	Vitals        []records.VitalsReading
}

// normalizeDate reduces any upstream date or timestamp representation to
// a YYYY-MM-DD string. Returns "" for values no event can be placed by.
func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Format("2006-01-02")
	}
	if len(raw) >= 10 {
		if _, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			return raw[:10]
		}
	}
	return ""
}

// timeOfDay extracts the HH:MM:SS portion of a timestamp, or "" when the
// value carries no time component.
func timeOfDay(raw string) string {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Format("15:04:05")
	}
	return ""
}

// titleCase renders an upstream snake_case or kebab-case code as a
// human-readable label, e.g. "follow_up" becomes "Follow Up".
func titleCase(code string) string {
	words := strings.FieldsFunc(code, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func eventFromVisit(v records.Visit) Event {
	title := "Clinic Visit"
	if v.VisitType != "" {
		title = titleCase(v.VisitType)
	}
	desc := v.ChiefComplaint
	if desc == "" {
		desc = v.ClinicalNotes
	}
	return Event{
		ID:          fmt.Sprintf("encounter-%d", v.ID),
		Kind:        KindEncounter,
		Date:        normalizeDate(v.Date),
		Time:        v.Time,
		Title:       title,
		Description: desc,
		Status:      priority.Label(priority.FromVisitType(v.VisitType)),
		Staff:       v.DoctorName,
	}
}

func eventFromSession(s records.Session) Event {
	desc := s.ChiefComplaint
	if desc == "" && s.RoomName != "" {
		desc = s.RoomName
	}
	return Event{
		ID:          fmt.Sprintf("session-%d", s.ID),
		Kind:        KindSession,
		Date:        normalizeDate(s.StartedAt),
		Time:        timeOfDay(s.StartedAt),
		Title:       "Consultation",
		Description: desc,
		Status:      s.Status,
		Staff:       s.DoctorName,
	}
}

func eventFromLabResult(r records.LabResult) Event {
	title := r.Test
	if title == "" {
		title = "Lab Result"
	}
	return Event{
		ID:          fmt.Sprintf("lab-%d", r.ID),
		Kind:        KindLabResult,
		Date:        normalizeDate(r.Date),
		Time:        timeOfDay(r.Date),
		Title:       title,
		Description: r.Result,
	}
}

func eventFromImaging(ir records.ImagingResult) Event {
	title := ir.StudyType
	if title == "" {
		title = "Imaging Study"
	}
	desc := ir.Description
	if desc == "" {
		desc = ir.Result
	}
	return Event{
		ID:          fmt.Sprintf("imaging-%d", ir.ID),
		Kind:        KindImaging,
		Date:        normalizeDate(ir.Date),
		Time:        timeOfDay(ir.Date),
		Title:       title,
		Description: desc,
	}
}

func eventFromPrescription(rx records.Prescription) Event {
	count := rx.ItemCount()
	noun := "medications"
	if count == 1 {
		noun = "medication"
	}
	return Event{
		ID:          fmt.Sprintf("prescription-%d", rx.ID),
		Kind:        KindPrescription,
		Date:        normalizeDate(rx.PrescribedAt),
		Time:        timeOfDay(rx.PrescribedAt),
		Title:       "Prescription",
		Description: fmt.Sprintf("%d %s prescribed", count, noun),
		Staff:       rx.DoctorName,
	}
}

func eventFromVitals(r records.VitalsReading) Event {
	var parts []string
	if r.BloodPressureSystolic != nil && r.BloodPressureDiastolic != nil {
		parts = append(parts, fmt.Sprintf("BP %d/%d", *r.BloodPressureSystolic, *r.BloodPressureDiastolic))
	}
	if r.Temperature != nil {
		parts = append(parts, fmt.Sprintf("Temp %.1f°C", *r.Temperature))
	}
	if r.HeartRate != nil {
		parts = append(parts, fmt.Sprintf("HR %d", *r.HeartRate))
	}
	date := r.Date
	if date == "" {
		date = r.RecordedAt
	}
	return Event{
		ID:          fmt.Sprintf("vital-%d", r.ID),
		Kind:        KindVitals,
		Date:        normalizeDate(date),
		Time:        timeOfDay(r.RecordedAt),
		Title:       "Vitals Recorded",
		Description: strings.Join(parts, " | "),
		Staff:       r.RecordedByName,
	}
}
