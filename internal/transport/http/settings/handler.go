package settings

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sari-pos/sari/internal/dto"
	"github.com/sari-pos/sari/internal/presentation/http/response"
	service "github.com/sari-pos/sari/internal/service/settings"
	"github.com/sari-pos/sari/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/sari-pos/sari/transport/http/settings")

// Handler exposes the settings-editing surface over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a settings Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/settings")
	g.GET("", h.list)
	g.GET("/:key", h.get)
	g.PUT("/:key", h.save)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.list")
	defer span.End()

	rows, err := h.svc.All(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromSettings(rows)).Build()
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)

	key := c.Param("key")

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.get", trace.WithAttributes(attribute.String("setting.key", key)))
	defer span.End()

	value, err := h.svc.Get(ctx, key)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.SettingResponse{Key: key, Value: value}).Build()
}

type savePayload struct {
	Value string `json:"value"`
}

func (h *Handler) save(c echo.Context) error {
	b := response.New(c)

	key := c.Param("key")

	var payload savePayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.save", trace.WithAttributes(attribute.String("setting.key", key)))
	defer span.End()

	if err := h.svc.Save(ctx, key, payload.Value); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.SettingResponse{Key: key, Value: payload.Value}).Build()
}
