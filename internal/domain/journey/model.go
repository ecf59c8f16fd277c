package journey

import (
	"fmt"
	"strconv"

	"github.com/emr/journey/internal/records"
	"github.com/emr/journey/pkg/priority"
)

// StepState is the lifecycle state of one journey step.
type StepState string

const (
	StateCompleted  StepState = "completed"
	StateInProgress StepState = "in_progress"
	StatePending    StepState = "pending"
)

// Fixed step identifiers. The pending-step inference keys off the
// identifier of the last emitted step, so these are part of the contract.
const (
	StepEncounterCreated     = "encounter-created"
	StepSentToNursing        = "sent-nursing"
	StepVitalsRecorded       = "vitals-recorded"
	StepConsultationStarted  = "consultation-started"
	StepLabOrders            = "lab-orders"
	StepPrescriptions        = "prescriptions"
	StepEncounterCompleted   = "encounter-completed"
	StepAwaitingNursing      = "next-nursing"
	StepAwaitingConsultation = "next-consultation"
)

// Step is one derived milestone in an encounter's cross-department
// progress. Steps are value objects rebuilt on every request; they are
// never persisted or mutated.
type Step struct {
	ID          string      `json:"id"`
	Seq         int         `json:"step"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Module      string      `json:"module"`
	Location    string      `json:"location,omitempty"`
	State       StepState   `json:"status"`
	Timestamp   string      `json:"timestamp,omitempty"`
	Staff       string      `json:"staff,omitempty"`
	Details     interface{} `json:"details,omitempty"`
}

// Encounter is the normalized view of an upstream visit record. Urgency
// is derived from the visit type, never stored upstream.
type Encounter struct {
	ID             string `json:"id"`
	NumericID      int64  `json:"numeric_id"`
	PatientRef     int64  `json:"patient_ref"`
	Date           string `json:"date"`
	Time           string `json:"time,omitempty"`
	Type           string `json:"type"`
	Department     string `json:"department,omitempty"`
	Doctor         string `json:"doctor"`
	Status         string `json:"status"`
	ChiefComplaint string `json:"chief_complaint,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Priority       int    `json:"priority"`
	PriorityLabel  string `json:"priority_label"`
}

// PatientSummary is the minimal patient identification shown alongside a
// journey.
type PatientSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Journey is the full reconstruction result for one encounter.
type Journey struct {
	Steps     []Step          `json:"steps"`
	Encounter *Encounter      `json:"encounter"`
	Patient   *PatientSummary `json:"patient,omitempty"`
}

// NotFoundError reports that an identifier resolved to zero visits after
// both the direct lookup and the text-search fallback.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("visit %q not found", e.Identifier)
}

// normalizeVisit maps the upstream visit shape to the Encounter view.
// All per-source field fallbacks live here, not in the pipeline.
func normalizeVisit(v *records.Visit) *Encounter {
	visitType := v.VisitType
	if visitType == "" {
		visitType = "consultation"
	}
	status := v.Status
	if status == "" {
		status = "scheduled"
	}
	doctor := v.DoctorName
	if doctor == "" {
		doctor = "Doctor"
	}
	p := priority.FromVisitType(visitType)
	return &Encounter{
		ID:             displayVisitID(v),
		NumericID:      v.ID,
		PatientRef:     v.Patient,
		Date:           v.Date,
		Time:           v.Time,
		Type:           visitType,
		Department:     v.Clinic,
		Doctor:         doctor,
		Status:         status,
		ChiefComplaint: v.ChiefComplaint,
		Notes:          v.ClinicalNotes,
		Priority:       p,
		PriorityLabel:  priority.Label(p),
	}
}

// normalizePatient maps the upstream patient shape to the summary view.
func normalizePatient(p *records.Patient) *PatientSummary {
	id := p.PatientID
	if id == "" {
		id = strconv.FormatInt(p.ID, 10)
	}
	name := p.FullName
	if name == "" {
		name = p.FirstName + " " + p.Surname
	}
	return &PatientSummary{ID: id, Name: name}
}

func displayVisitID(v *records.Visit) string {
	if v.VisitID != "" {
		return v.VisitID
	}
	return strconv.FormatInt(v.ID, 10)
}
