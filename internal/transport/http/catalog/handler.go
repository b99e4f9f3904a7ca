package catalog

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
	service "github.com/sari-pos/sari/internal/service/catalog"
	settingssvc "github.com/sari-pos/sari/internal/service/settings"
	"github.com/sari-pos/sari/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/sari-pos/sari/transport/http/catalog")

// Handler exposes catalog endpoints over HTTP.
type Handler struct {
	svc      *service.Service
	settings *settingssvc.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service, settings *settingssvc.Service) *Handler {
	return &Handler{svc: svc, settings: settings}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/products")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/low-stock", h.lowStock)
	g.GET("/quick", h.quickList)
	g.GET("/code/:code", h.getByCode)
	g.GET("/:id", h.getByID)
	g.PUT("/:id", h.update)
}

type createPayload struct {
	Code         string          `json:"product_code"`
	Name         string          `json:"product_name" validate:"required"`
	Stock        int             `json:"stock" validate:"gte=0"`
	Price        decimal.Decimal `json:"price"`
	IsBarcoded   bool            `json:"is_barcoded"`
	DisplayColor string          `json:"display_color"`
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.create", trace.WithAttributes(attribute.String("product.name", payload.Name)))
	defer span.End()

	product, err := h.svc.Create(ctx, service.CreateProductInput{
		Code:         payload.Code,
		Name:         payload.Name,
		Stock:        payload.Stock,
		Price:        payload.Price,
		IsBarcoded:   payload.IsBarcoded,
		DisplayColor: payload.DisplayColor,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.FromProduct(product)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.getByID", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromProduct(product)).Build()
}

// getByCode serves the barcode-scan lookup: the capture surface decodes the
// code string and the client resolves it here.
func (h *Handler) getByCode(c echo.Context) error {
	b := response.New(c)

	code := c.Param("code")

	ctx, span := httpTracer.Start(c.Request().Context(), "products.getByCode", trace.WithAttributes(attribute.String("product.code", code)))
	defer span.End()

	product, err := h.svc.GetByCode(ctx, code)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromProduct(product)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "products.list")
	defer span.End()

	page := queryInt(c, "page", 1)
	pageSize, err := h.pageSize(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	products, pageMeta, err := h.svc.List(ctx, c.QueryParam("search"), page, pageSize)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromProducts(products)).WithPage(pageMeta).Build()
}

func (h *Handler) lowStock(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "products.lowStock")
	defer span.End()

	threshold, err := h.settings.LowStockThreshold(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	if raw := c.QueryParam("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return b.WithError(errorbank.BadRequest("invalid threshold")).Build()
		}
		threshold = v
	}

	products, err := h.svc.LowStock(ctx, threshold)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromProducts(products)).WithMeta("threshold", threshold).Build()
}

func (h *Handler) quickList(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "products.quickList")
	defer span.End()

	products, err := h.svc.QuickList(ctx, queryInt(c, "limit", 0))
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromProducts(products)).Build()
}

type updatePayload struct {
	Name         string          `json:"product_name" validate:"required"`
	Stock        int             `json:"stock" validate:"gte=0"`
	Price        decimal.Decimal `json:"price"`
	DisplayColor string          `json:"display_color"`
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var payload updatePayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.Update(ctx, id, service.UpdateProductInput{
		Name:         payload.Name,
		Stock:        payload.Stock,
		Price:        payload.Price,
		DisplayColor: payload.DisplayColor,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromProduct(product)).Build()
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
