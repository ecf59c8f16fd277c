package records

// Wire shapes of the clinical records API. Field naming follows the
// upstream snake_case contract; each subsystem owns its own shape and the
// shapes are normalized by the consuming domain packages, not here.

// Visit is one clinic visit as served by the medical-records subsystem.
type Visit struct {
	ID             int64  `json:"id"`
	VisitID        string `json:"visit_id"`
	Patient        int64  `json:"patient"`
	Date           string `json:"date"`
	Time           string `json:"time,omitempty"`
	VisitType      string `json:"visit_type"`
	Clinic         string `json:"clinic,omitempty"`
	DoctorName     string `json:"doctor_name,omitempty"`
	Status         string `json:"status"`
	ChiefComplaint string `json:"chief_complaint,omitempty"`
	ClinicalNotes  string `json:"clinical_notes,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// Patient is the patient summary served by the records subsystem.
type Patient struct {
	ID        int64  `json:"id"`
	PatientID string `json:"patient_id"`
	FullName  string `json:"full_name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Surname   string `json:"surname,omitempty"`
}

// VitalsReading is a nursing measurement. Some deployments send a bare
// date, others only recorded_at; consumers must handle both.
type VitalsReading struct {
	ID                     int64    `json:"id"`
	Visit                  int64    `json:"visit,omitempty"`
	Patient                int64    `json:"patient"`
	Date                   string   `json:"date,omitempty"`
	Temperature            *float64 `json:"temperature,omitempty"`
	BloodPressureSystolic  *int     `json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *int     `json:"blood_pressure_diastolic,omitempty"`
	HeartRate              *int     `json:"heart_rate,omitempty"`
	RecordedAt             string   `json:"recorded_at,omitempty"`
	RecordedByName         string   `json:"recorded_by_name,omitempty"`
}

// Session is a consultation session. Visit is the optional linked-visit
// reference; sessions may also be tied to a visit only by date.
type Session struct {
	ID             int64  `json:"id"`
	SessionID      string `json:"session_id,omitempty"`
	Room           int64  `json:"room,omitempty"`
	RoomName       string `json:"room_name,omitempty"`
	Clinic         string `json:"clinic,omitempty"`
	Patient        int64  `json:"patient"`
	DoctorName     string `json:"doctor_name,omitempty"`
	Visit          int64  `json:"visit,omitempty"`
	Status         string `json:"status"`
	ChiefComplaint string `json:"chief_complaint,omitempty"`
	StartedAt      string `json:"started_at,omitempty"`
	EndedAt        string `json:"ended_at,omitempty"`
}

// LabTest is one line item on a lab order.
type LabTest struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
	Result string `json:"result,omitempty"`
}

// LabOrder is a laboratory request issued during a visit.
type LabOrder struct {
	ID         int64     `json:"id"`
	Patient    int64     `json:"patient"`
	Visit      int64     `json:"visit,omitempty"`
	Tests      []LabTest `json:"tests,omitempty"`
	DoctorName string    `json:"doctor_name,omitempty"`
	OrderedAt  string    `json:"ordered_at,omitempty"`
}

// LabResult is a verified laboratory result.
type LabResult struct {
	ID      int64  `json:"id"`
	Patient int64  `json:"patient"`
	Date    string `json:"date,omitempty"`
	Test    string `json:"test,omitempty"`
	Result  string `json:"result,omitempty"`
}

// PrescriptionItem is one medication line on a prescription.
type PrescriptionItem struct {
	ID         int64  `json:"id"`
	Medication string `json:"medication"`
	Dosage     string `json:"dosage,omitempty"`
}

// Prescription is a pharmacy request issued during a visit. Items and
// Medications are alternate field names for the same list across
// deployments; ItemCount folds them.
type Prescription struct {
	ID             int64              `json:"id"`
	PrescriptionID string             `json:"prescription_id,omitempty"`
	Patient        int64              `json:"patient"`
	Visit          int64              `json:"visit,omitempty"`
	Items          []PrescriptionItem `json:"items,omitempty"`
	Medications    []PrescriptionItem `json:"medications,omitempty"`
	DoctorName     string             `json:"doctor_name,omitempty"`
	PrescribedAt   string             `json:"prescribed_at,omitempty"`
}

// ItemCount returns the number of medication lines regardless of which
// field name the deployment uses.
func (p Prescription) ItemCount() int {
	if len(p.Items) > 0 {
		return len(p.Items)
	}
	return len(p.Medications)
}

// ImagingResult is a radiology study result.
type ImagingResult struct {
	ID          int64  `json:"id"`
	Patient     int64  `json:"patient"`
	Date        string `json:"date,omitempty"`
	StudyType   string `json:"study_type,omitempty"`
	Description string `json:"description,omitempty"`
	Result      string `json:"result,omitempty"`
}
