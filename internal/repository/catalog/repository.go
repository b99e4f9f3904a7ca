package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sari-pos/sari/internal/database"
	"github.com/sari-pos/sari/internal/entity"
)

var repoTracer = otel.Tracer("github.com/sari-pos/sari/repository/catalog")

var (
	// ErrNotFound is returned when a product is missing.
	ErrNotFound = errors.New("product not found")
	// ErrDuplicateCode is returned when product_code is already taken.
	ErrDuplicateCode = errors.New("product code already exists")
	// ErrInsufficientStock is returned when a decrement would push stock
	// below zero. Reconciliation never writes negative stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Repository encapsulates read/write access for catalog products. Write
// methods accept a bun.IDB so stock reconciliation can run inside the order
// submission transaction.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by the configured database.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Writer exposes the write handle for callers that open transactions.
func (r *Repository) Writer() *bun.DB {
	return r.writer
}

// Insert persists a new product. A duplicate product_code surfaces as
// ErrDuplicateCode; the table is left unchanged.
func (r *Repository) Insert(ctx context.Context, db bun.IDB, product *entity.Product) error {
	if product == nil {
		return errors.New("nil product")
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.Insert", trace.WithAttributes(attribute.String("product.code", product.Code)))
	defer span.End()

	_, err := db.NewInsert().Model(product).Exec(ctx)
	if isUniqueViolation(err) {
		span.SetStatus(codes.Error, "duplicate code")
		return ErrDuplicateCode
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a product by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetByID", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product := new(entity.Product)
	err := r.reader.NewSelect().Model(product).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return product, nil
}

// GetByCode fetches a product by its unique business code, the lookup used
// after a barcode scan.
func (r *Repository) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetByCode", trace.WithAttributes(attribute.String("product.code", code)))
	defer span.End()

	product := new(entity.Product)
	err := r.reader.NewSelect().Model(product).Where("product_code = ?", code).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return product, nil
}

// List returns one page of products newest-id-first plus the total match
// count. A non-empty search narrows by case-insensitive substring on name.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]entity.Product, int, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.List")
	defer span.End()

	var products []entity.Product
	q := r.reader.NewSelect().Model(&products)
	if search != "" {
		q = q.Where("lower(product_name) LIKE lower(?)", "%"+search+"%")
	}
	total, err := q.Order("id DESC").Limit(limit).Offset(offset).ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return products, total, nil
}

// ListLowStock returns every product at or below the stock threshold.
func (r *Repository) ListLowStock(ctx context.Context, threshold int) ([]entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListLowStock", trace.WithAttributes(attribute.Int("threshold", threshold)))
	defer span.End()

	var products []entity.Product
	err := r.reader.NewSelect().Model(&products).
		Where("stock <= ?", threshold).
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// ListNonBarcoded returns the newest barcode-less products, capped at limit.
// They populate the quick-add surface on the selling screen.
func (r *Repository) ListNonBarcoded(ctx context.Context, limit int) ([]entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListNonBarcoded")
	defer span.End()

	var products []entity.Product
	err := r.reader.NewSelect().Model(&products).
		Where("is_barcoded = ?", false).
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// Update replaces the mutable fields of a product and refreshes updated_at.
// Missing rows surface as ErrNotFound; nothing is partially applied.
func (r *Repository) Update(ctx context.Context, db bun.IDB, product *entity.Product) error {
	if product == nil {
		return errors.New("nil product")
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.Update", trace.WithAttributes(attribute.Int64("product.id", product.ID)))
	defer span.End()

	res, err := db.NewUpdate().Model(product).
		Column("product_name", "stock", "price", "display_color", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

// DecrementStock subtracts qty from a product's stock. The guard clause keeps
// stock non-negative: a decrement past zero touches no row and reports
// ErrInsufficientStock so the enclosing transaction rolls back.
func (r *Repository) DecrementStock(ctx context.Context, db bun.IDB, productID int64, qty int) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.DecrementStock", trace.WithAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("quantity", qty),
	))
	defer span.End()

	res, err := db.NewUpdate().Model((*entity.Product)(nil)).
		Set("stock = stock - ?", qty).
		Where("id = ?", productID).
		Where("stock >= ?", qty).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		exists, err := r.exists(ctx, db, productID)
		if err != nil {
			return err
		}
		if !exists {
			span.SetStatus(codes.Error, "not found")
			return ErrNotFound
		}
		span.SetStatus(codes.Error, "insufficient stock")
		return ErrInsufficientStock
	}
	return nil
}

func (r *Repository) exists(ctx context.Context, db bun.IDB, id int64) (bool, error) {
	return db.NewSelect().Model((*entity.Product)(nil)).Where("id = ?", id).Exists(ctx)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
