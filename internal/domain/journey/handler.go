package journey

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/emr/journey/internal/platform/cache"
	"github.com/emr/journey/internal/records"
)

type Handler struct {
	builder *Builder
	logger  zerolog.Logger
	kv      cache.KVStore
	ttl     time.Duration
}

func NewHandler(builder *Builder, logger zerolog.Logger) *Handler {
	return &Handler{builder: builder, logger: logger}
}

// SetCache enables the short-lived snapshot cache. A cached journey may
// lag the upstream by at most ttl.
func (h *Handler) SetCache(kv cache.KVStore, ttl time.Duration) {
	h.kv = kv
	h.ttl = ttl
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/visits/:id/journey", h.GetJourney)
}

func (h *Handler) GetJourney(c echo.Context) error {
	ctx := c.Request().Context()
	identifier := c.Param("id")
	key := "journey:" + identifier

	if h.kv != nil {
		if cached, err := h.kv.Get(ctx, key); err == nil {
			return c.JSONBlob(http.StatusOK, []byte(cached))
		} else if !errors.Is(err, cache.ErrMiss) {
			h.logger.Warn().Err(err).Msg("journey cache read failed")
		}
	}

	j, err := h.builder.Build(ctx, identifier)
	if err != nil {
		var nf *NotFoundError
		switch {
		case errors.As(err, &nf):
			return echo.NewHTTPError(http.StatusNotFound, nf.Error())
		case records.IsUnauthenticated(err):
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		default:
			h.logger.Error().Err(err).Str("visit", identifier).Msg("journey build failed")
			return echo.NewHTTPError(http.StatusBadGateway, "records api unavailable")
		}
	}

	body, err := json.Marshal(j)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if h.kv != nil {
		if err := h.kv.Set(ctx, key, string(body), h.ttl); err != nil {
			h.logger.Warn().Err(err).Msg("journey cache write failed")
		}
	}
	return c.JSONBlob(http.StatusOK, body)
}
