package timeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/emr/journey/internal/records"
)

type fakeSource struct {
	patient       *records.Patient
	visits        []records.Visit
	sessions      []records.Session
	labResults    []records.LabResult
	imaging       []records.ImagingResult
	prescriptions []records.Prescription
	vitals        []records.VitalsReading

	patientErr  error
	visitsErr   error
	sessionsErr error
	labErr      error
	imagingErr  error
	rxErr       error
	vitalsErr   error
}

func (f *fakeSource) PatientByID(_ context.Context, _ int64) (*records.Patient, error) {
	if f.patientErr != nil {
		return nil, f.patientErr
	}
	if f.patient == nil {
		return nil, records.ErrNotFound
	}
	return f.patient, nil
}

func (f *fakeSource) VisitsByPatient(_ context.Context, _ int64) ([]records.Visit, error) {
	return f.visits, f.visitsErr
}

func (f *fakeSource) SessionsByPatient(_ context.Context, _ int64) ([]records.Session, error) {
	return f.sessions, f.sessionsErr
}

func (f *fakeSource) LabResultsByPatient(_ context.Context, _ int64) ([]records.LabResult, error) {
	return f.labResults, f.labErr
}

func (f *fakeSource) ImagingByPatient(_ context.Context, _ int64) ([]records.ImagingResult, error) {
	return f.imaging, f.imagingErr
}

func (f *fakeSource) PrescriptionsByPatient(_ context.Context, _ int64) ([]records.Prescription, error) {
	return f.prescriptions, f.rxErr
}

func (f *fakeSource) VitalsByPatient(_ context.Context, _ int64) ([]records.VitalsReading, error) {
	return f.vitals, f.vitalsErr
}

func doTimelineRequest(t *testing.T, h *Handler, id string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/patients/:id/timeline")
	c.SetParamNames("id")
	c.SetParamValues(id)

	if err := h.GetTimeline(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func testHandler(src Source) *Handler {
	return NewHandler(src, zerolog.New(os.Stderr))
}

func TestGetTimeline_OK(t *testing.T) {
	src := &fakeSource{
		patient: &records.Patient{ID: 7, PatientID: "P-0007"},
		visits:  []records.Visit{{ID: 1, Patient: 7, Date: "2024-01-10", VisitType: "consultation"}},
		sessions: []records.Session{
			{ID: 2, Patient: 7, StartedAt: "2024-01-10T09:00:00Z", Status: "completed"},
		},
	}

	rec := doTimelineRequest(t, testHandler(src), "7")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var tl Timeline
	if err := json.Unmarshal(rec.Body.Bytes(), &tl); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if tl.Total != 2 || len(tl.Groups) != 1 {
		t.Errorf("unexpected timeline: total=%d groups=%d", tl.Total, len(tl.Groups))
	}
}

func TestGetTimeline_EmptyHistory(t *testing.T) {
	src := &fakeSource{patient: &records.Patient{ID: 7}}

	rec := doTimelineRequest(t, testHandler(src), "7")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var tl Timeline
	if err := json.Unmarshal(rec.Body.Bytes(), &tl); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if tl.Total != 0 || tl.Groups == nil || len(tl.Groups) != 0 {
		t.Errorf("expected empty timeline with non-null groups, got %+v", tl)
	}
}

func TestGetTimeline_InvalidID(t *testing.T) {
	rec := doTimelineRequest(t, testHandler(&fakeSource{}), "abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetTimeline_PatientNotFound(t *testing.T) {
	rec := doTimelineRequest(t, testHandler(&fakeSource{}), "7")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestGetTimeline_Unauthenticated(t *testing.T) {
	src := &fakeSource{patientErr: records.ErrUnauthenticated}
	rec := doTimelineRequest(t, testHandler(src), "7")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestGetTimeline_UnauthenticatedOnCategoryFetch(t *testing.T) {
	src := &fakeSource{
		patient: &records.Patient{ID: 7},
		labErr:  records.ErrUnauthenticated,
	}
	rec := doTimelineRequest(t, testHandler(src), "7")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestGetTimeline_DegradedFetchStillRenders(t *testing.T) {
	src := &fakeSource{
		patient:    &records.Patient{ID: 7},
		visits:     []records.Visit{{ID: 1, Patient: 7, Date: "2024-01-10"}},
		vitalsErr:  errors.New("nursing subsystem down"),
		imagingErr: errors.New("radiology subsystem down"),
	}

	rec := doTimelineRequest(t, testHandler(src), "7")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite degraded sources, got %d", rec.Code)
	}
	var tl Timeline
	if err := json.Unmarshal(rec.Body.Bytes(), &tl); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if tl.Total != 1 {
		t.Errorf("expected the surviving visit event, got total %d", tl.Total)
	}
}
