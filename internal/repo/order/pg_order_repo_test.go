package order_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain/order"
	"storefront/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectOrdersPattern = `SELECT id, user_id, items, amount, address, payment_method, payment, bank_slip_url, status, created_at FROM orders`

// testPgOrderRepo wraps the mock pool to implement the transaction testing
type testPgOrderRepo struct {
	repo
	pool pgxmock.PgxPoolIface
	pg   *postgres.Postgres
}

func (r *testPgOrderRepo) InTransaction(ctx context.Context, fn func(repo order.TxOrderRepo) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &repo{db: tx, builder: r.pg.Builder}

	if err := fn(txRepo); err != nil {
		tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func testOrderJSON(t *testing.T) (items, address []byte) {
	t.Helper()

	items, err := json.Marshal([]order.Item{
		{ProductID: "prod-1", Name: "Vase", Price: 20, Size: "M", Quantity: 1},
	})
	require.NoError(t, err)

	address, err = json.Marshal(order.Address{
		FirstName: "Ada", LastName: "Byron", Email: "ada@example.com",
		Street: "1 King St", City: "London", State: "LDN",
		Zipcode: "E1", Country: "UK", Phone: "555-0101",
	})
	require.NoError(t, err)

	return items, address
}

func TestGetOrders(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &repo{db: mock, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
	ctx := context.Background()

	t.Run("should return orders with basic query", func(t *testing.T) {
		userID := uuid.New()
		createdAt := time.Now()
		items, address := testOrderJSON(t)

		query := &order.OrdersQuery{
			IDs: []string{"order-1", "order-2"},
		}

		rows := mock.NewRows([]string{"id", "user_id", "items", "amount", "address", "payment_method", "payment", "bank_slip_url", "status", "created_at"}).
			AddRow("order-1", userID, items, 30.0, address, "cod", false, nil, "Not Paid", createdAt).
			AddRow("order-2", userID, items, 30.0, address, "hostedCheckout", true, nil, "Paid", createdAt)

		mock.ExpectQuery(selectOrdersPattern+` WHERE id IN \(\$1,\$2\) ORDER BY created_at DESC`).
			WithArgs("order-1", "order-2").
			WillReturnRows(rows)

		result, err := repo.GetOrders(ctx, query)

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, "order-1", result[0].ID)
		assert.Equal(t, "order-2", result[1].ID)
		assert.Equal(t, order.MethodCOD, result[0].PaymentMethod)
		assert.Equal(t, order.StatusPaid, result[1].Status)
		assert.True(t, result[1].Payment)
		assert.Equal(t, "Vase", result[0].Items[0].Name)
		assert.Equal(t, "London", result[0].Address.City)
	})

	t.Run("should filter by owner and payment flag", func(t *testing.T) {
		userID := uuid.New()
		items, address := testOrderJSON(t)
		paid := true

		query := &order.OrdersQuery{
			UserIDs: []string{userID.String()},
			Payment: &paid,
		}

		rows := mock.NewRows([]string{"id", "user_id", "items", "amount", "address", "payment_method", "payment", "bank_slip_url", "status", "created_at"}).
			AddRow("order-1", userID, items, 30.0, address, "cod", true, nil, "Paid", time.Now())

		mock.ExpectQuery(selectOrdersPattern+` WHERE user_id IN \(\$1\) AND payment = \$2 ORDER BY created_at DESC`).
			WithArgs(userID.String(), true).
			WillReturnRows(rows)

		result, err := repo.GetOrders(ctx, query)

		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, userID, result[0].UserID)
	})

	t.Run("should reject rows with unknown payment method", func(t *testing.T) {
		items, address := testOrderJSON(t)

		rows := mock.NewRows([]string{"id", "user_id", "items", "amount", "address", "payment_method", "payment", "bank_slip_url", "status", "created_at"}).
			AddRow("order-1", uuid.New(), items, 30.0, address, "carrierPigeon", false, nil, "Not Paid", time.Now())

		mock.ExpectQuery(selectOrdersPattern + ` ORDER BY created_at DESC`).
			WillReturnRows(rows)

		_, err := repo.GetOrders(ctx, &order.OrdersQuery{})

		require.Error(t, err)
	})
}

func TestCreateOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &repo{db: mock, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
	ctx := context.Background()

	newOrder := func(t *testing.T) (order.Order, []byte, []byte) {
		t.Helper()
		items, address := testOrderJSON(t)
		o := order.Order{
			ID:            "order-1",
			UserID:        uuid.New(),
			Amount:        30,
			PaymentMethod: order.MethodCOD,
			Status:        order.StatusNotPaid,
			CreatedAt:     time.Now(),
		}
		require.NoError(t, json.Unmarshal(items, &o.Items))
		require.NoError(t, json.Unmarshal(address, &o.Address))
		return o, items, address
	}

	t.Run("should create order successfully", func(t *testing.T) {
		o, items, address := newOrder(t)

		mock.ExpectExec(`INSERT INTO orders \(id,user_id,items,amount,address,payment_method,payment,bank_slip_url,status,created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7,\$8,\$9,\$10\)`).
			WithArgs(o.ID, o.UserID, items, o.Amount, address,
				"cod", false, (*string)(nil), "Not Paid", o.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.CreateOrder(ctx, o)

		require.NoError(t, err)
	})

	t.Run("should handle database error", func(t *testing.T) {
		o, _, _ := newOrder(t)

		mock.ExpectExec(`INSERT INTO orders`).
			WillReturnError(assert.AnError)

		err := repo.CreateOrder(ctx, o)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "create order")
	})
}

func TestMarkPaid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &repo{db: mock, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
	ctx := context.Background()

	t.Run("should flip payment flag and status", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET payment = \$1, status = \$2 WHERE id = \$3`).
			WithArgs(true, "Paid", "order-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.MarkPaid(ctx, "order-1", order.StatusPaid)

		require.NoError(t, err)
	})

	t.Run("should handle database error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders`).
			WillReturnError(assert.AnError)

		err := repo.MarkPaid(ctx, "order-1", order.StatusPaid)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "mark order paid")
	})
}

func TestUpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &repo{db: mock, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
	ctx := context.Background()

	t.Run("should set status without touching payment", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET status = \$1 WHERE id = \$2`).
			WithArgs("Not Paid", "order-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		found, err := repo.UpdateStatus(ctx, "order-1", order.StatusNotPaid, false)

		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("should also mark paid when requested", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET status = \$1, payment = \$2 WHERE id = \$3`).
			WithArgs("Paid", true, "order-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		found, err := repo.UpdateStatus(ctx, "order-1", order.StatusPaid, true)

		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("should report missing order", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET status = \$1 WHERE id = \$2`).
			WithArgs("Paid", "nope").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		found, err := repo.UpdateStatus(ctx, "nope", order.StatusPaid, false)

		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestDeleteOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &repo{db: mock, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
	ctx := context.Background()

	t.Run("should delete order", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
			WithArgs("order-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		found, err := repo.DeleteOrder(ctx, "order-1")

		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("should report missing order", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
			WithArgs("nope").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		found, err := repo.DeleteOrder(ctx, "nope")

		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestOrderEvents(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &repo{db: mock, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
	ctx := context.Background()

	t.Run("should record event", func(t *testing.T) {
		actor := uuid.New()
		e := order.NewEvent("order-1", actor, order.EventStatusChanged, "Paid")

		mock.ExpectExec(`INSERT INTO order_events \(id,order_id,actor_id,kind,detail,created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6\)`).
			WithArgs(e.ID, "order-1", actor, "status_changed", "Paid", e.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.CreateEvent(ctx, e)

		require.NoError(t, err)
	})

	t.Run("should list events newest first", func(t *testing.T) {
		actor := uuid.New()
		now := time.Now()

		rows := mock.NewRows([]string{"id", "order_id", "actor_id", "kind", "detail", "created_at"}).
			AddRow("evt-2", "order-1", actor, "payment_confirmed", "", now).
			AddRow("evt-1", "order-1", actor, "placed", "", now.Add(-time.Minute))

		mock.ExpectQuery(`SELECT id, order_id, actor_id, kind, detail, created_at FROM order_events WHERE order_id = \$1 ORDER BY created_at DESC`).
			WithArgs("order-1").
			WillReturnRows(rows)

		events, err := repo.GetEvents(ctx, "order-1")

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, order.EventPaymentConfirmed, events[0].Kind)
		assert.Equal(t, order.EventPlaced, events[1].Kind)
	})
}

func TestInTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	pg := &postgres.Postgres{
		Builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	pgRepo := &testPgOrderRepo{
		repo: repo{db: mock, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)},
		pool: mock,
		pg:   pg,
	}
	ctx := context.Background()

	t.Run("should execute function in transaction successfully", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()

		executed := false
		err := pgRepo.InTransaction(ctx, func(repo order.TxOrderRepo) error {
			executed = true
			assert.NotNil(t, repo)
			return nil
		})

		require.NoError(t, err)
		assert.True(t, executed)
	})

	t.Run("should rollback transaction on function error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		expectedErr := assert.AnError
		err := pgRepo.InTransaction(ctx, func(repo order.TxOrderRepo) error {
			return expectedErr
		})

		require.Error(t, err)
		assert.Equal(t, expectedErr, err)
	})
}
