package ledger

import (
	"context"
	"database/sql"
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

	"github.com/sari-pos/sari/internal/config"
	"github.com/sari-pos/sari/internal/entity"
	"github.com/sari-pos/sari/internal/messaging"
	"github.com/sari-pos/sari/internal/pagination"
	"github.com/sari-pos/sari/internal/refno"
	repo "github.com/sari-pos/sari/internal/repository/ledger"
	catalogsvc "github.com/sari-pos/sari/internal/service/catalog"
	"github.com/sari-pos/sari/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/sari-pos/sari/service/ledger")

// Service owns the order ledger: transactional submission with stock
// reconciliation, paginated listing, line retrieval, and header amendment.
type Service struct {
	repo      *repo.Repository
	catalog   *catalogsvc.Service
	refs      *refno.Generator
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Catalog    *catalogsvc.Service
	Refs       *refno.Generator
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:      p.Repository,
		catalog:   p.Catalog,
		refs:      p.Refs,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// SubmitLine is one entry of a submission: the product sold, how many, and
// the unit price captured at the till.
type SubmitLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Submit records an order. The header insert, the line inserts, and every
// stock decrement commit as one transaction; any failure rolls all of it
// back so the ledger and the catalog never drift apart.
func (s *Service) Submit(ctx context.Context, lines []SubmitLine, paidAmount decimal.Decimal) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "LedgerService.Submit", trace.WithAttributes(attribute.Int("lines", len(lines))))
	defer span.End()

	if len(lines) == 0 {
		return nil, errorbank.BadRequest("order has no lines")
	}
	if paidAmount.IsNegative() {
		return nil, errorbank.BadRequest("paid amount must not be negative")
	}

	total := decimal.Zero
	orderLines := make([]entity.OrderLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, errorbank.BadRequest("quantity must be positive", errorbank.WithDetail("product_id", l.ProductID))
		}
		if l.UnitPrice.IsNegative() {
			return nil, errorbank.BadRequest("unit price must not be negative", errorbank.WithDetail("product_id", l.ProductID))
		}
		line := entity.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
		}
		total = total.Add(line.Subtotal())
		orderLines = append(orderLines, line)
	}

	order := &entity.Order{
		RefNo:      s.refs.OrderRef(),
		Total:      total,
		PaidAmount: paidAmount,
		CreatedAt:  time.Now().UTC(),
	}

	err := s.repo.Writer().RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.InsertOrder(ctx, tx, order); err != nil {
			return errorbank.Internal("failed to insert order", errorbank.WithCause(err))
		}
		for i := range orderLines {
			orderLines[i].OrderID = order.ID
		}
		if err := s.repo.InsertLines(ctx, tx, orderLines); err != nil {
			return errorbank.Internal("failed to insert order lines", errorbank.WithCause(err))
		}
		for _, line := range orderLines {
			if err := s.catalog.Reconcile(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission rolled back")
		return nil, errorbank.From(err)
	}

	s.logger.Info("order submitted",
		zap.Int64("id", order.ID),
		zap.String("ref_no", order.RefNo),
		zap.String("total", order.Total.String()),
		zap.Int("lines", len(orderLines)),
	)
	s.publishSubmitted(ctx, order, orderLines)

	return order, nil
}

// List returns one page of orders filtered by a reference-number substring,
// along with the page metadata the transactions view needs.
func (s *Service) List(ctx context.Context, search string, page, pageSize int) ([]entity.Order, pagination.Page, error) {
	ctx, span := serviceTracer.Start(ctx, "LedgerService.List", trace.WithAttributes(attribute.Int("page", page)))
	defer span.End()

	if pageSize <= 0 {
		return nil, pagination.Page{}, errorbank.BadRequest("page size must be positive")
	}

	limit, offset := pagination.Paginate(page, pageSize)
	orders, total, err := s.repo.List(ctx, search, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, pagination.Page{}, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, pagination.New(page, pageSize, total), nil
}

// Get retrieves one order header.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "LedgerService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	return order, nil
}

// Lines retrieves the lines of one order joined with product names.
func (s *Service) Lines(ctx context.Context, orderID int64) ([]entity.OrderLine, error) {
	ctx, span := serviceTracer.Start(ctx, "LedgerService.Lines", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	if _, err := s.Get(ctx, orderID); err != nil {
		return nil, err
	}

	lines, err := s.repo.Lines(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order lines", errorbank.WithCause(err))
	}
	return lines, nil
}

// Amend updates an order's paid amount and note. The total and the lines
// stay exactly as they were written at submission.
func (s *Service) Amend(ctx context.Context, id int64, paidAmount decimal.Decimal, note string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "LedgerService.Amend", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if paidAmount.IsNegative() {
		return nil, errorbank.BadRequest("paid amount must not be negative")
	}

	order := &entity.Order{
		ID:         id,
		PaidAmount: paidAmount,
		Note:       note,
	}
	if err := s.repo.Amend(ctx, s.repo.Writer(), order); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to amend order", errorbank.WithCause(err))
	}
	return s.Get(ctx, id)
}

func (s *Service) publishSubmitted(ctx context.Context, order *entity.Order, lines []entity.OrderLine) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderSubmittedEvent{
		ID:        order.ID,
		RefNo:     order.RefNo,
		Total:     order.Total.String(),
		CreatedAt: order.CreatedAt,
	}
	for _, line := range lines {
		event.Lines = append(event.Lines, OrderSubmittedLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order submitted", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		s.logger.Error("publish order submitted", zap.Error(err))
	}
}

// OrderSubmittedEvent is emitted after a submission commits.
type OrderSubmittedEvent struct {
	ID        int64                `json:"id"`
	RefNo     string               `json:"ref_no"`
	Total     string               `json:"total"`
	Lines     []OrderSubmittedLine `json:"lines"`
	CreatedAt time.Time            `json:"created_at"`
}

// OrderSubmittedLine is one ledger line inside an OrderSubmittedEvent.
type OrderSubmittedLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
