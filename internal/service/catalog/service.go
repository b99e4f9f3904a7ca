package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sari-pos/sari/internal/cache"
	"github.com/sari-pos/sari/internal/config"
	"github.com/sari-pos/sari/internal/entity"
	"github.com/sari-pos/sari/internal/pagination"
	"github.com/sari-pos/sari/internal/refno"
	repo "github.com/sari-pos/sari/internal/repository/catalog"
	"github.com/sari-pos/sari/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/sari-pos/sari/service/catalog")

// Service owns the product catalog rules: code issuance for manually entered
// products, duplicate-code rejection, paginated lookups, and the stock
// mutations the ledger delegates here.
type Service struct {
	repo     *repo.Repository
	refs     *refno.Generator
	cache    cache.Store
	cacheTTL time.Duration
	quickMax int
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Refs       *refno.Generator
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:     p.Repository,
		refs:     p.Refs,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		quickMax: p.Config.POS.NonBarcodedLimit,
		logger:   p.Logger,
	}
}

// CreateProductInput carries the fields accepted at catalog insertion.
type CreateProductInput struct {
	Code         string
	Name         string
	Stock        int
	Price        decimal.Decimal
	IsBarcoded   bool
	DisplayColor string
}

// Create inserts a new product. Barcoded products must arrive with the
// scanned code; for the rest the code is synthesized from the name and the
// clock. A taken code is a conflict and leaves the catalog unchanged.
func (s *Service) Create(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Create", trace.WithAttributes(attribute.String("product.name", in.Name)))
	defer span.End()

	if in.Name == "" {
		return nil, errorbank.BadRequest("product name is required")
	}
	if in.Stock < 0 {
		return nil, errorbank.BadRequest("stock must not be negative")
	}
	if in.Price.IsNegative() {
		return nil, errorbank.BadRequest("price must not be negative")
	}

	code := in.Code
	color := in.DisplayColor
	if in.IsBarcoded {
		if code == "" {
			return nil, errorbank.BadRequest("barcoded products require the scanned code")
		}
		// Display colors belong to the quick-add tiles only.
		color = ""
	} else if code == "" {
		code = s.refs.ProductCode(in.Name)
	}

	now := time.Now().UTC()
	product := &entity.Product{
		Code:         code,
		Name:         in.Name,
		Stock:        in.Stock,
		Price:        in.Price,
		IsBarcoded:   in.IsBarcoded,
		DisplayColor: color,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.repo.Writer(), product); err != nil {
		if errors.Is(err, repo.ErrDuplicateCode) {
			return nil, errorbank.Conflict("product code already exists", errorbank.WithDetail("code", code))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create product", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, product); err != nil {
		s.logger.Warn("product cache write failed", zap.Int64("id", product.ID), zap.Error(err))
	}

	return product, nil
}

// Get retrieves a product by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Get", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if product, err := s.getFromCache(ctx, id); err == nil {
		return product, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("product cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, product); err != nil {
		s.logger.Warn("product cache write failed", zap.Int64("id", id), zap.Error(err))
	}

	return product, nil
}

// GetByCode retrieves a product by its business code, the scan lookup.
func (s *Service) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetByCode", trace.WithAttributes(attribute.String("product.code", code)))
	defer span.End()

	if code == "" {
		return nil, errorbank.BadRequest("product code is required")
	}

	product, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}
	return product, nil
}

// List returns one page of products filtered by a name substring, along with
// the page metadata the table view needs.
func (s *Service) List(ctx context.Context, search string, page, pageSize int) ([]entity.Product, pagination.Page, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.List", trace.WithAttributes(attribute.Int("page", page)))
	defer span.End()

	if pageSize <= 0 {
		return nil, pagination.Page{}, errorbank.BadRequest("page size must be positive")
	}

	limit, offset := pagination.Paginate(page, pageSize)
	products, total, err := s.repo.List(ctx, search, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, pagination.Page{}, errorbank.Internal("failed to list products", errorbank.WithCause(err))
	}
	return products, pagination.New(page, pageSize, total), nil
}

// LowStock returns every product at or below the threshold.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.LowStock", trace.WithAttributes(attribute.Int("threshold", threshold)))
	defer span.End()

	products, err := s.repo.ListLowStock(ctx, threshold)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list low stock", errorbank.WithCause(err))
	}
	return products, nil
}

// QuickList returns the newest barcode-less products for the quick-add
// surface, capped at limit (or the configured default when limit is zero).
func (s *Service) QuickList(ctx context.Context, limit int) ([]entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.QuickList")
	defer span.End()

	if limit <= 0 {
		limit = s.quickMax
	}
	products, err := s.repo.ListNonBarcoded(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list quick products", errorbank.WithCause(err))
	}
	return products, nil
}

// UpdateProductInput carries the mutable product fields.
type UpdateProductInput struct {
	Name         string
	Stock        int
	Price        decimal.Decimal
	DisplayColor string
}

// Update replaces the mutable fields of a product and refreshes updated_at.
func (s *Service) Update(ctx context.Context, id int64, in UpdateProductInput) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if in.Name == "" {
		return nil, errorbank.BadRequest("product name is required")
	}
	if in.Stock < 0 {
		return nil, errorbank.BadRequest("stock must not be negative")
	}
	if in.Price.IsNegative() {
		return nil, errorbank.BadRequest("price must not be negative")
	}

	product := &entity.Product{
		ID:           id,
		Name:         in.Name,
		Stock:        in.Stock,
		Price:        in.Price,
		DisplayColor: in.DisplayColor,
		UpdatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Update(ctx, s.repo.Writer(), product); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update product", errorbank.WithCause(err))
	}

	s.invalidate(ctx, id)
	return s.Get(ctx, id)
}

// Reconcile decrements a product's stock for one ledger line. It runs inside
// the submission transaction, so a failed decrement unwinds the whole order.
func (s *Service) Reconcile(ctx context.Context, db bun.IDB, productID int64, qty int) error {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Reconcile", trace.WithAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("quantity", qty),
	))
	defer span.End()

	if qty <= 0 {
		return errorbank.BadRequest("quantity must be positive")
	}

	err := s.repo.DecrementStock(ctx, db, productID, qty)
	switch {
	case err == nil:
		s.invalidate(ctx, productID)
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return errorbank.NotFound("product not found", errorbank.WithDetail("product_id", productID))
	case errors.Is(err, repo.ErrInsufficientStock):
		return errorbank.Unprocessable("insufficient stock", errorbank.WithDetail("product_id", productID))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to decrement stock", errorbank.WithCause(err))
	}
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("products:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Product, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var product entity.Product
	if err := json.Unmarshal(bytes, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) storeInCache(ctx context.Context, product *entity.Product) error {
	if s.cache == nil || product == nil {
		return nil
	}
	bytes, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(product.ID), bytes, s.cacheTTL)
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Int64("id", id), zap.Error(err))
	}
}
