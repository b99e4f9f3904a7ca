package ledger

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sari-pos/sari/internal/dto"
	"github.com/sari-pos/sari/internal/presentation/http/response"
	service "github.com/sari-pos/sari/internal/service/ledger"
	settingssvc "github.com/sari-pos/sari/internal/service/settings"
	"github.com/sari-pos/sari/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/sari-pos/sari/transport/http/ledger")

// Handler exposes order ledger endpoints over HTTP.
type Handler struct {
	svc      *service.Service
	settings *settingssvc.Service
}

// NewHandler constructs a ledger Handler.
func NewHandler(svc *service.Service, settings *settingssvc.Service) *Handler {
	return &Handler{svc: svc, settings: settings}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.POST("", h.submit)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.GET("/:id/lines", h.lines)
	g.PATCH("/:id", h.amend)
}

type submitLinePayload struct {
	ProductID int64           `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"price"`
}

type submitPayload struct {
	Lines      []submitLinePayload `json:"lines" validate:"required,dive"`
	PaidAmount decimal.Decimal     `json:"paid_amount"`
}

func (h *Handler) submit(c echo.Context) error {
	b := response.New(c)

	var payload submitPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.submit", trace.WithAttributes(attribute.Int("lines", len(payload.Lines))))
	defer span.End()

	lines := make([]service.SubmitLine, 0, len(payload.Lines))
	for _, l := range payload.Lines {
		lines = append(lines, service.SubmitLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	order, err := h.svc.Submit(ctx, lines, payload.PaidAmount)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	page := queryInt(c, "page", 1)
	pageSize, err := h.pageSize(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	orders, pageMeta, err := h.svc.List(ctx, c.QueryParam("search"), page, pageSize)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrders(orders)).WithPage(pageMeta).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) lines(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.lines", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	lines, err := h.svc.Lines(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrderLines(lines)).Build()
}

type amendPayload struct {
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Note       string          `json:"note"`
}

func (h *Handler) amend(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var payload amendPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.amend", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Amend(ctx, id, payload.PaidAmount, payload.Note)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) pageSize(c echo.Context) (int, error) {
	if raw := c.QueryParam("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return 0, errorbank.BadRequest("invalid page size")
		}
		return v, nil
	}
	return h.settings.PageSize(c.Request().Context())
}

func queryInt(c echo.Context, name string, fallback int) int {
	if raw := c.QueryParam(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
