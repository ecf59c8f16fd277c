// Package journey reconstructs a single encounter's cross-department
// progress from four independently-owned record sources: the visit record
// itself, nursing vitals, consultation sessions, and the laboratory and
// pharmacy order books. None of those subsystems know about each other;
// the builder merges their facts into one causally-ordered step sequence
// and infers the next pending milestone when the visit is still open.
package journey

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/emr/journey/internal/records"
)

// DefaultSearchPageSize bounds the text-search fallback when an
// identifier does not parse as a numeric visit ID.
const DefaultSearchPageSize = 100

// Source is the slice of the records API the builder consumes. The
// records.Client satisfies it; tests use in-memory fakes.
type Source interface {
	VisitByID(ctx context.Context, id int64) (*records.Visit, error)
	SearchVisits(ctx context.Context, search string, pageSize int) ([]records.Visit, error)
	PatientByID(ctx context.Context, id int64) (*records.Patient, error)
	VitalsByPatient(ctx context.Context, patientID int64) ([]records.VitalsReading, error)
	SessionsByPatient(ctx context.Context, patientID int64) ([]records.Session, error)
	LabOrdersByPatient(ctx context.Context, patientID int64) ([]records.LabOrder, error)
	PrescriptionsByPatient(ctx context.Context, patientID int64) ([]records.Prescription, error)
}

// Builder assembles encounter journeys. It holds no per-build state:
// every Build call is an independent, re-entrant, read-only pipeline, so
// concurrent or repeated builds never interfere.
type Builder struct {
	src            Source
	logger         zerolog.Logger
	searchPageSize int
}

func NewBuilder(src Source, logger zerolog.Logger) *Builder {
	return &Builder{src: src, logger: logger, searchPageSize: DefaultSearchPageSize}
}

// SetSearchPageSize overrides the fallback-search result cap.
func (b *Builder) SetSearchPageSize(n int) {
	if n > 0 {
		b.searchPageSize = n
	}
}

// Build resolves the visit behind identifier and assembles its journey.
//
// Only two failures abort the build: the identifier resolving to no visit
// (NotFoundError) and refused credentials on any fetch
// (records.ErrUnauthenticated). Every other failure on a secondary
// category fetch degrades that single step to absent and the pipeline
// continues; an incomplete journey is a legitimate clinical state, not an
// error.
func (b *Builder) Build(ctx context.Context, identifier string) (*Journey, error) {
	visit, err := b.resolveVisit(ctx, identifier)
	if err != nil {
		return nil, err
	}

	j := &Journey{Encounter: normalizeVisit(visit)}

	// Patient summary is best-effort: its absence must not block the
	// category fetches below.
	if p, err := b.src.PatientByID(ctx, visit.Patient); err != nil {
		if records.IsUnauthenticated(err) {
			return nil, err
		}
		b.logger.Warn().Err(err).Int64("patient", visit.Patient).Msg("patient fetch degraded")
	} else {
		j.Patient = normalizePatient(p)
	}

	seq := 0
	push := func(s Step) {
		seq++
		s.Seq = seq
		j.Steps = append(j.Steps, s)
	}

	// 1. Encounter Created — always present.
	createdAt := visit.CreatedAt
	if createdAt == "" {
		createdAt = visit.Date
	}
	push(Step{
		ID:          StepEncounterCreated,
		Title:       "Encounter Created",
		Description: fmt.Sprintf("Visit %s created", displayVisitID(visit)),
		Module:      "Medical Records",
		Location:    "Reception",
		State:       StateCompleted,
		Timestamp:   createdAt,
	})

	// 2. Sent to Nursing Pool — implied by the visit having left
	// "scheduled".
	if visit.Status == "in_progress" || visit.Status == "completed" {
		push(Step{
			ID:          StepSentToNursing,
			Title:       "Sent to Nursing Pool",
			Description: "Patient forwarded to nursing for vitals",
			Module:      "Nursing",
			Location:    "Nursing Pool",
			State:       StateCompleted,
			Timestamp:   visit.UpdatedAt,
		})
	}

	// 3. Vitals Recorded — readings on the visit's date.
	if readings, err := b.src.VitalsByPatient(ctx, visit.Patient); err != nil {
		if records.IsUnauthenticated(err) {
			return nil, err
		}
		b.logger.Warn().Err(err).Msg("vitals fetch degraded")
	} else if matched := matchVitals(readings, visit.Date); len(matched) > 0 {
		// Readings arrive in recording order; the last one is the most
		// recent measurement for the day.
		last := matched[len(matched)-1]
		staff := last.RecordedByName
		if staff == "" {
			staff = "Nurse"
		}
		push(Step{
			ID:          StepVitalsRecorded,
			Title:       "Vitals Recorded",
			Description: fmt.Sprintf("BP: %s | Temp: %s°C", bloodPressure(last), temperature(last)),
			Module:      "Nursing",
			Location:    "Nursing Pool",
			State:       StateCompleted,
			Timestamp:   last.RecordedAt,
			Staff:       staff,
		})
	}

	// 4. Consultation — sessions on the visit's date or linked to it.
	if sessions, err := b.src.SessionsByPatient(ctx, visit.Patient); err != nil {
		if records.IsUnauthenticated(err) {
			return nil, err
		}
		b.logger.Warn().Err(err).Msg("sessions fetch degraded")
	} else if matched := matchSessions(sessions, visit); len(matched) > 0 {
		session := matched[0]
		state := StateInProgress
		if session.Status == "completed" {
			state = StateCompleted
		}
		desc := session.ChiefComplaint
		if desc == "" {
			desc = "Consultation in progress"
		}
		location := session.RoomName
		if location == "" {
			location = session.Clinic
		}
		if location == "" {
			location = "Consultation Room"
		}
		push(Step{
			ID:          StepConsultationStarted,
			Title:       "Consultation Started",
			Description: desc,
			Module:      "Consultation",
			Location:    location,
			State:       state,
			Timestamp:   session.StartedAt,
			Staff:       session.DoctorName,
			Details:     session,
		})
	}

	// 5. Lab orders linked to this visit.
	if orders, err := b.src.LabOrdersByPatient(ctx, visit.Patient); err != nil {
		if records.IsUnauthenticated(err) {
			return nil, err
		}
		b.logger.Warn().Err(err).Msg("lab orders fetch degraded")
	} else if matched := matchLabOrders(orders, visit.ID); len(matched) > 0 {
		count := 0
		for _, o := range matched {
			count += len(o.Tests)
		}
		push(Step{
			ID:          StepLabOrders,
			Title:       "Lab Tests Ordered",
			Description: fmt.Sprintf("%d %s ordered", count, plural(count, "test", "tests")),
			Module:      "Laboratory",
			Location:    "Laboratory",
			State:       StateCompleted,
			Timestamp:   matched[0].OrderedAt,
			Staff:       matched[0].DoctorName,
			Details:     matched,
		})
	}

	// 6. Prescriptions linked to this visit.
	if prescriptions, err := b.src.PrescriptionsByPatient(ctx, visit.Patient); err != nil {
		if records.IsUnauthenticated(err) {
			return nil, err
		}
		b.logger.Warn().Err(err).Msg("prescriptions fetch degraded")
	} else if matched := matchPrescriptions(prescriptions, visit.ID); len(matched) > 0 {
		count := 0
		for _, rx := range matched {
			count += rx.ItemCount()
		}
		push(Step{
			ID:          StepPrescriptions,
			Title:       "Prescriptions Created",
			Description: fmt.Sprintf("%d %s prescribed", count, plural(count, "medication", "medications")),
			Module:      "Pharmacy",
			Location:    "Pharmacy",
			State:       StateCompleted,
			Timestamp:   matched[0].PrescribedAt,
			Staff:       matched[0].DoctorName,
			Details:     matched,
		})
	}

	// 7. Encounter Completed.
	if visit.Status == "completed" {
		location := visit.Clinic
		if location == "" {
			location = "Clinic"
		}
		push(Step{
			ID:          StepEncounterCompleted,
			Title:       "Encounter Completed",
			Description: "Patient visit concluded",
			Module:      "Medical Records",
			Location:    location,
			State:       StateCompleted,
			Timestamp:   visit.UpdatedAt,
		})
	}

	// 8. Pending-step inference. Only two transitions are known; any
	// other trailing step yields no synthetic entry.
	if visit.Status != "completed" && len(j.Steps) > 0 {
		switch j.Steps[len(j.Steps)-1].ID {
		case StepEncounterCreated:
			push(Step{
				ID:          StepAwaitingNursing,
				Title:       "Awaiting Nursing",
				Description: "Waiting to be sent to nursing pool",
				Module:      "Nursing",
				State:       StatePending,
			})
		case StepVitalsRecorded:
			push(Step{
				ID:          StepAwaitingConsultation,
				Title:       "Awaiting Consultation",
				Description: "Waiting for consultation",
				Module:      "Consultation",
				State:       StatePending,
			})
		}
	}

	return j, nil
}

// resolveVisit fetches the visit by numeric ID, falling back to a bounded
// text search matched on the display identifier.
func (b *Builder) resolveVisit(ctx context.Context, identifier string) (*records.Visit, error) {
	if n, err := strconv.ParseInt(identifier, 10, 64); err == nil && n > 0 {
		visit, err := b.src.VisitByID(ctx, n)
		if err != nil {
			if records.IsNotFound(err) {
				return nil, &NotFoundError{Identifier: identifier}
			}
			return nil, err
		}
		return visit, nil
	}

	visits, err := b.src.SearchVisits(ctx, identifier, b.searchPageSize)
	if err != nil {
		return nil, err
	}
	for _, v := range visits {
		if displayVisitID(&v) == identifier {
			// Refetch by numeric ID: search results may carry a
			// trimmed representation.
			visit, err := b.src.VisitByID(ctx, v.ID)
			if err != nil {
				if records.IsNotFound(err) {
					return nil, &NotFoundError{Identifier: identifier}
				}
				return nil, err
			}
			return visit, nil
		}
	}
	return nil, &NotFoundError{Identifier: identifier}
}

// matchVitals keeps readings taken on the visit's calendar date.
func matchVitals(readings []records.VitalsReading, visitDate string) []records.VitalsReading {
	var matched []records.VitalsReading
	for _, r := range readings {
		if dateOf(r.Date, r.RecordedAt) == visitDate {
			matched = append(matched, r)
		}
	}
	return matched
}

// matchSessions keeps sessions started on the visit's date or explicitly
// linked to the visit. "First match wins" downstream: the source order is
// preserved as returned, with no secondary sort.
func matchSessions(sessions []records.Session, visit *records.Visit) []records.Session {
	var matched []records.Session
	for _, s := range sessions {
		if dateOf("", s.StartedAt) == visit.Date || (s.Visit != 0 && s.Visit == visit.ID) {
			matched = append(matched, s)
		}
	}
	return matched
}

func matchLabOrders(orders []records.LabOrder, visitID int64) []records.LabOrder {
	var matched []records.LabOrder
	for _, o := range orders {
		if o.Visit != 0 && o.Visit == visitID {
			matched = append(matched, o)
		}
	}
	return matched
}

func matchPrescriptions(prescriptions []records.Prescription, visitID int64) []records.Prescription {
	var matched []records.Prescription
	for _, rx := range prescriptions {
		if rx.Visit != 0 && rx.Visit == visitID {
			matched = append(matched, rx)
		}
	}
	return matched
}

// dateOf returns the calendar date for a record that carries either a
// bare date field or only a timestamp.
func dateOf(date, timestamp string) string {
	if date != "" {
		return date
	}
	if timestamp == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, timestamp); err == nil {
		return t.UTC().Format("2006-01-02")
	}
	if len(timestamp) >= 10 {
		if _, err := time.Parse("2006-01-02", timestamp[:10]); err == nil {
			return timestamp[:10]
		}
	}
	return ""
}

func bloodPressure(r records.VitalsReading) string {
	if r.BloodPressureSystolic == nil || r.BloodPressureDiastolic == nil {
		return "-"
	}
	return fmt.Sprintf("%d/%d", *r.BloodPressureSystolic, *r.BloodPressureDiastolic)
}

func temperature(r records.VitalsReading) string {
	if r.Temperature == nil {
		return "-"
	}
	return strconv.FormatFloat(*r.Temperature, 'f', -1, 64)
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
