// Package records is the read-only client for the hospital's clinical
// records API. Each clinical subsystem (records, nursing, consultation,
// laboratory, pharmacy, radiology) is independently owned upstream; this
// client only models the slices of their contracts that the journey and
// timeline reconstructions need.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/emr/journey/internal/platform/auth"
)

// Client talks to the records API over HTTP. It is safe for concurrent
// use; the caller's bearer token travels in the request context.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// listEnvelope is the upstream pagination envelope for list endpoints.
type listEnvelope[T any] struct {
	Results []T `json:"results"`
	Count   int `json:"count"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := auth.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("records api: %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("records api: %s: %w", path, ErrUnauthenticated)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("records api: %s: %w", path, ErrNotFound)
	case resp.StatusCode >= 400:
		return &StatusError{Status: resp.StatusCode, Path: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("records api: decode %s: %w", path, err)
	}
	return nil
}

// VisitByID fetches one visit by its numeric identifier.
func (c *Client) VisitByID(ctx context.Context, id int64) (*Visit, error) {
	var v Visit
	if err := c.get(ctx, fmt.Sprintf("/visits/%d/", id), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// SearchVisits performs a bounded text search over visits. pageSize caps
// the result set; there is no follow-the-next-page behavior here.
func (c *Client) SearchVisits(ctx context.Context, search string, pageSize int) ([]Visit, error) {
	q := url.Values{}
	q.Set("search", search)
	q.Set("page_size", strconv.Itoa(pageSize))
	var env listEnvelope[Visit]
	if err := c.get(ctx, "/visits/", q, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// VisitsByPatient fetches all visits belonging to one patient.
func (c *Client) VisitsByPatient(ctx context.Context, patientID int64) ([]Visit, error) {
	q := url.Values{}
	q.Set("patient", strconv.FormatInt(patientID, 10))
	var env listEnvelope[Visit]
	if err := c.get(ctx, "/visits/", q, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// PatientByID fetches the patient summary.
func (c *Client) PatientByID(ctx context.Context, id int64) (*Patient, error) {
	var p Patient
	if err := c.get(ctx, fmt.Sprintf("/patients/%d/", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// VitalsByPatient fetches all vitals readings for a patient. The nursing
// endpoint returns a bare array, not a pagination envelope.
func (c *Client) VitalsByPatient(ctx context.Context, patientID int64) ([]VitalsReading, error) {
	var readings []VitalsReading
	if err := c.get(ctx, fmt.Sprintf("/patients/%d/vitals/", patientID), nil, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

// SessionsByPatient fetches consultation sessions for a patient.
func (c *Client) SessionsByPatient(ctx context.Context, patientID int64) ([]Session, error) {
	q := url.Values{}
	q.Set("patient", strconv.FormatInt(patientID, 10))
	var env listEnvelope[Session]
	if err := c.get(ctx, "/consultation/sessions/", q, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// LabOrdersByPatient fetches laboratory orders for a patient.
func (c *Client) LabOrdersByPatient(ctx context.Context, patientID int64) ([]LabOrder, error) {
	q := url.Values{}
	q.Set("patient", strconv.FormatInt(patientID, 10))
	var env listEnvelope[LabOrder]
	if err := c.get(ctx, "/laboratory/orders/", q, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// LabResultsByPatient fetches verified laboratory results for a patient.
func (c *Client) LabResultsByPatient(ctx context.Context, patientID int64) ([]LabResult, error) {
	q := url.Values{}
	q.Set("patient", strconv.FormatInt(patientID, 10))
	var env listEnvelope[LabResult]
	if err := c.get(ctx, "/laboratory/verification/", q, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// PrescriptionsByPatient fetches pharmacy prescriptions for a patient.
func (c *Client) PrescriptionsByPatient(ctx context.Context, patientID int64) ([]Prescription, error) {
	q := url.Values{}
	q.Set("patient", strconv.FormatInt(patientID, 10))
	var env listEnvelope[Prescription]
	if err := c.get(ctx, "/pharmacy/prescriptions/", q, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// ImagingByPatient fetches radiology study results for a patient.
func (c *Client) ImagingByPatient(ctx context.Context, patientID int64) ([]ImagingResult, error) {
	q := url.Values{}
	q.Set("patient", strconv.FormatInt(patientID, 10))
	var env listEnvelope[ImagingResult]
	if err := c.get(ctx, "/radiology/results/", q, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}
