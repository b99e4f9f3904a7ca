package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sari-pos/sari/internal/database"
	"github.com/sari-pos/sari/internal/entity"
)

var repoTracer = otel.Tracer("github.com/sari-pos/sari/repository/ledger")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// Repository encapsulates read/write access for the order ledger. Write
// methods accept a bun.IDB so a whole submission commits or rolls back as one
// transaction.
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

// InsertOrder persists an order header and fills in its generated id.
func (r *Repository) InsertOrder(ctx context.Context, db bun.IDB, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "LedgerRepository.InsertOrder", trace.WithAttributes(attribute.String("order.ref_no", order.RefNo)))
	defer span.End()

	_, err := db.NewInsert().Model(order).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// InsertLines persists the lines of one order. Lines are immutable after
// this write.
func (r *Repository) InsertLines(ctx context.Context, db bun.IDB, lines []entity.OrderLine) error {
	if len(lines) == 0 {
		return errors.New("no lines")
	}
	ctx, span := repoTracer.Start(ctx, "LedgerRepository.InsertLines", trace.WithAttributes(attribute.Int("lines", len(lines))))
	defer span.End()

	_, err := db.NewInsert().Model(&lines).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order header by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "LedgerRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// List returns one page of orders newest-id-first plus the total match
// count. A non-empty search narrows by substring on the reference number.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]entity.Order, int, error) {
	ctx, span := repoTracer.Start(ctx, "LedgerRepository.List")
	defer span.End()

	var orders []entity.Order
	q := r.reader.NewSelect().Model(&orders)
	if search != "" {
		q = q.Where("ref_no LIKE ?", "%"+search+"%")
	}
	total, err := q.Order("id DESC").Limit(limit).Offset(offset).ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return orders, total, nil
}

// Lines returns the lines of one order joined with the product name for
// display.
func (r *Repository) Lines(ctx context.Context, orderID int64) ([]entity.OrderLine, error) {
	ctx, span := repoTracer.Start(ctx, "LedgerRepository.Lines", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	var lines []entity.OrderLine
	err := r.reader.NewSelect().Model(&lines).
		ColumnExpr("line.*").
		ColumnExpr("p.product_name AS product_name").
		Join("JOIN products AS p ON p.id = line.product_id").
		Where("line.order_id = ?", orderID).
		Order("line.id ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return lines, nil
}

// Amend updates the two mutable header fields, paid_amount and note. The
// total and the lines are never touched here.
func (r *Repository) Amend(ctx context.Context, db bun.IDB, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "LedgerRepository.Amend", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	res, err := db.NewUpdate().Model(order).
		Column("paid_amount", "note").
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
