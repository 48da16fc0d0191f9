package order_repo

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/domain/order"
	"storefront/pkg/postgres"

	"github.com/Masterminds/squirrel"
)

var orderColumns = []string{
	"id", "user_id", "items", "amount", "address",
	"payment_method", "payment", "bank_slip_url", "status", "created_at",
}

// PgOrderRepo is the main repository
type PgOrderRepo struct {
	pg *postgres.Postgres
	repo
}

func NewPgOrderRepo(pg *postgres.Postgres) order.OrderRepo {
	return &PgOrderRepo{
		pg:   pg,
		repo: repo{db: pg.Pool, builder: pg.Builder},
	}
}

func (r *PgOrderRepo) InTransaction(ctx context.Context, fn func(repo order.TxOrderRepo) error) error {
	return r.pg.InTransaction(ctx, func(tx postgres.Executor) error {
		txRepo := &repo{db: tx, builder: r.pg.Builder}
		return fn(txRepo)
	})
}

type repo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

func (r *repo) GetOrders(ctx context.Context, query *order.OrdersQuery) ([]order.Order, error) {
	sql, args := r.buildOrdersQuery(query)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	return parseOrderRows(rows)
}

func (r *repo) CreateOrder(ctx context.Context, o order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	address, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}

	query, args, err := r.builder.Insert("orders").
		Columns(orderColumns...).
		Values(o.ID, o.UserID, items, o.Amount, address,
			string(o.PaymentMethod), o.Payment, o.BankSlipURL, string(o.Status), o.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("order %s already exists: %w", o.ID, err)
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *repo) MarkPaid(ctx context.Context, id string, status order.Status) error {
	query, args, err := r.builder.Update("orders").
		Set("payment", true).
		Set("status", string(status)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark paid query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	return nil
}

func (r *repo) UpdateStatus(ctx context.Context, id string, status order.Status, markPaid bool) (bool, error) {
	update := r.builder.Update("orders").
		Set("status", string(status)).
		Where(squirrel.Eq{"id": id})
	if markPaid {
		update = update.Set("payment", true)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) DeleteOrder(ctx context.Context, id string) (bool, error) {
	query, args, err := r.builder.Delete("orders").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) CreateEvent(ctx context.Context, e order.Event) error {
	query, args, err := r.builder.Insert("order_events").
		Columns("id", "order_id", "actor_id", "kind", "detail", "created_at").
		Values(e.ID, e.OrderID, e.ActorID, string(e.Kind), e.Detail, e.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert event query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create order event: %w", err)
	}
	return nil
}

func (r *repo) GetEvents(ctx context.Context, orderID string) ([]order.Event, error) {
	query, args, err := r.builder.Select("id", "order_id", "actor_id", "kind", "detail", "created_at").
		From("order_events").
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build events query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query order events: %w", err)
	}

	return parseEventRows(rows)
}

func (r *repo) buildOrdersQuery(q *order.OrdersQuery) (string, []interface{}) {
	query := r.builder.Select(orderColumns...).From("orders")

	if len(q.IDs) > 0 {
		query = query.Where(squirrel.Eq{"id": q.IDs})
	}

	if len(q.UserIDs) > 0 {
		query = query.Where(squirrel.Eq{"user_id": q.UserIDs})
	}

	if len(q.Methods) > 0 {
		methods := make([]string, len(q.Methods))
		for i, m := range q.Methods {
			methods[i] = string(m)
		}
		query = query.Where(squirrel.Eq{"payment_method": methods})
	}

	if q.Payment != nil {
		query = query.Where(squirrel.Eq{"payment": *q.Payment})
	}

	if q.Search != "" {
		query = query.Where(squirrel.Expr("address::text ILIKE ?", "%"+q.Search+"%"))
	}

	if q.From != nil {
		query = query.Where(squirrel.GtOrEq{"created_at": *q.From})
	}
	if q.To != nil {
		query = query.Where(squirrel.LtOrEq{"created_at": *q.To})
	}

	// Newest first unless the caller asked otherwise.
	if q.SortBy != nil && q.SortOrder != nil {
		query = query.OrderBy(fmt.Sprintf("%s %s", *q.SortBy, *q.SortOrder))
	} else {
		query = query.OrderBy("created_at DESC")
	}

	if q.Pagination != nil {
		offset := (q.Pagination.PageNumber - 1) * q.Pagination.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Limit(uint64(q.Pagination.PageSize)).Offset(uint64(offset))
	}

	sql, args, _ := query.ToSql()
	return sql, args
}
