package order_repo

import (
	"fmt"

	"storefront/internal/domain/order"

	"github.com/jackc/pgx/v5"
)

func parseOrderRows(rows pgx.Rows) ([]order.Order, error) {
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		var m orderRow
		err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Items,
			&m.Amount,
			&m.Address,
			&m.PaymentMethod,
			&m.Payment,
			&m.BankSlipURL,
			&m.Status,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		o, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func parseEventRows(rows pgx.Rows) ([]order.Event, error) {
	defer rows.Close()

	var events []order.Event
	for rows.Next() {
		var m eventRow
		err := rows.Scan(&m.ID, &m.OrderID, &m.ActorID, &m.Kind, &m.Detail, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, m.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return events, nil
}
