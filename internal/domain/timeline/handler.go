package timeline

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/emr/journey/internal/platform/cache"
	"github.com/emr/journey/internal/records"
)

// Source is the slice of the records API the timeline consumes. The
// records.Client satisfies it.
type Source interface {
	PatientByID(ctx context.Context, id int64) (*records.Patient, error)
	VisitsByPatient(ctx context.Context, patientID int64) ([]records.Visit, error)
	SessionsByPatient(ctx context.Context, patientID int64) ([]records.Session, error)
	LabResultsByPatient(ctx context.Context, patientID int64) ([]records.LabResult, error)
	ImagingByPatient(ctx context.Context, patientID int64) ([]records.ImagingResult, error)
	PrescriptionsByPatient(ctx context.Context, patientID int64) ([]records.Prescription, error)
	VitalsByPatient(ctx context.Context, patientID int64) ([]records.VitalsReading, error)
}

type Handler struct {
	src    Source
	logger zerolog.Logger
	kv     cache.KVStore
	ttl    time.Duration
}

func NewHandler(src Source, logger zerolog.Logger) *Handler {
	return &Handler{src: src, logger: logger}
}

// SetCache enables the short-lived snapshot cache, bounding timeline
// staleness by ttl.
func (h *Handler) SetCache(kv cache.KVStore, ttl time.Duration) {
	h.kv = kv
	h.ttl = ttl
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id/timeline", h.GetTimeline)
}

func (h *Handler) GetTimeline(c echo.Context) error {
	ctx := c.Request().Context()
	patientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || patientID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	key := "timeline:" + c.Param("id")

	if h.kv != nil {
		if cached, err := h.kv.Get(ctx, key); err == nil {
			return c.JSONBlob(http.StatusOK, []byte(cached))
		} else if err != cache.ErrMiss {
			h.logger.Warn().Err(err).Msg("timeline cache read failed")
		}
	}

	// The patient lookup is the only gating fetch: a missing patient is a
	// 404, not an empty timeline.
	if _, err := h.src.PatientByID(ctx, patientID); err != nil {
		switch {
		case records.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		case records.IsUnauthenticated(err):
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		default:
			h.logger.Error().Err(err).Int64("patient", patientID).Msg("patient fetch failed")
			return echo.NewHTTPError(http.StatusBadGateway, "records api unavailable")
		}
	}

	collections, err := h.collect(ctx, patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	tl := Aggregate(collections)
	body, err := json.Marshal(tl)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if h.kv != nil {
		if err := h.kv.Set(ctx, key, string(body), h.ttl); err != nil {
			h.logger.Warn().Err(err).Msg("timeline cache write failed")
		}
	}
	return c.JSONBlob(http.StatusOK, body)
}

// collect runs the six category fetches. Each degrades to an empty slice
// on failure; only refused credentials abort.
func (h *Handler) collect(ctx context.Context, patientID int64) (Collections, error) {
	var c Collections
	var err error

	c.Visits, err = h.src.VisitsByPatient(ctx, patientID)
	if err := h.degrade(err, "visits"); err != nil {
		return c, err
	}
	c.Sessions, err = h.src.SessionsByPatient(ctx, patientID)
	if err := h.degrade(err, "sessions"); err != nil {
		return c, err
	}
	c.LabResults, err = h.src.LabResultsByPatient(ctx, patientID)
	if err := h.degrade(err, "lab results"); err != nil {
		return c, err
	}
	c.Imaging, err = h.src.ImagingByPatient(ctx, patientID)
	if err := h.degrade(err, "imaging"); err != nil {
		return c, err
	}
	c.Prescriptions, err = h.src.PrescriptionsByPatient(ctx, patientID)
	if err := h.degrade(err, "prescriptions"); err != nil {
		return c, err
	}
	c.Vitals, err = h.src.VitalsByPatient(ctx, patientID)
	if err := h.degrade(err, "vitals"); err != nil {
		return c, err
	}
	return c, nil
}

func (h *Handler) degrade(err error, source string) error {
	if err == nil {
		return nil
	}
	if records.IsUnauthenticated(err) {
		return err
	}
	h.logger.Warn().Err(err).Str("source", source).Msg("timeline fetch degraded")
	return nil
}
