// Package delivery_repo persists the customer address book.
package delivery_repo

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/controller/apperror"
	"storefront/internal/domain/delivery"
	"storefront/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var deliveryColumns = []string{
	"id", "user_id", "first_name", "last_name", "email",
	"street", "city", "state", "zipcode", "country", "phone",
	"created_at", "updated_at",
}

type PgDeliveryRepo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

func NewPgDeliveryRepo(pg *postgres.Postgres) delivery.Repo {
	return &PgDeliveryRepo{db: pg.Pool, builder: pg.Builder}
}

func (r *PgDeliveryRepo) Create(ctx context.Context, info delivery.Info) error {
	query, args, err := r.builder.Insert("delivery_addresses").
		Columns(deliveryColumns...).
		Values(info.ID, info.UserID, info.FirstName, info.LastName, info.Email,
			info.Street, info.City, info.State, info.Zipcode, info.Country, info.Phone,
			info.CreatedAt, info.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create delivery info: %w", err)
	}
	return nil
}

func (r *PgDeliveryRepo) FindByID(ctx context.Context, id string) (delivery.Info, error) {
	query, args, err := r.builder.Select(deliveryColumns...).
		From("delivery_addresses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return delivery.Info{}, fmt.Errorf("build select query: %w", err)
	}

	var info delivery.Info
	row := r.db.QueryRow(ctx, query, args...)
	err = row.Scan(&info.ID, &info.UserID, &info.FirstName, &info.LastName, &info.Email,
		&info.Street, &info.City, &info.State, &info.Zipcode, &info.Country, &info.Phone,
		&info.CreatedAt, &info.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return delivery.Info{}, fmt.Errorf("%w: delivery info %s", apperror.ErrNotFound, id)
	}
	if err != nil {
		return delivery.Info{}, fmt.Errorf("find delivery info: %w", err)
	}
	return info, nil
}

func (r *PgDeliveryRepo) FindByOwner(ctx context.Context, userID uuid.UUID) ([]delivery.Info, error) {
	query, args, err := r.builder.Select(deliveryColumns...).
		From("delivery_addresses").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query delivery infos: %w", err)
	}
	defer rows.Close()

	infos := make([]delivery.Info, 0)
	for rows.Next() {
		var info delivery.Info
		if err := rows.Scan(&info.ID, &info.UserID, &info.FirstName, &info.LastName, &info.Email,
			&info.Street, &info.City, &info.State, &info.Zipcode, &info.Country, &info.Phone,
			&info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery info: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery infos: %w", err)
	}
	return infos, nil
}

func (r *PgDeliveryRepo) Update(ctx context.Context, id string, fields delivery.Fields) (bool, error) {
	query, args, err := r.builder.Update("delivery_addresses").
		Set("first_name", fields.FirstName).
		Set("last_name", fields.LastName).
		Set("email", fields.Email).
		Set("street", fields.Street).
		Set("city", fields.City).
		Set("state", fields.State).
		Set("zipcode", fields.Zipcode).
		Set("country", fields.Country).
		Set("phone", fields.Phone).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update delivery info: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgDeliveryRepo) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := r.builder.Delete("delivery_addresses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete delivery info: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
