package order

import (
	"fmt"
	"time"

	"storefront/internal/controller/apperror"
)

type Pagination struct {
	PageSize int

	PageNumber int
}

// OrdersQuery narrows an order listing. The zero query matches
// everything, newest first.
type OrdersQuery struct {
	IDs        []string
	UserIDs    []string
	Methods    []PaymentMethod
	Payment    *bool
	Search     string // free-text match against address fields
	From       *time.Time
	To         *time.Time
	Pagination *Pagination
	SortBy     *string
	SortOrder  *string
}

func (o *OrdersQuery) Validate() error {
	if o.SortBy != nil && *o.SortBy != "created_at" && *o.SortBy != "amount" {
		return fmt.Errorf("invalid sort by: %s", *o.SortBy)
	}
	if o.SortOrder != nil && *o.SortOrder != "asc" && *o.SortOrder != "desc" {
		return fmt.Errorf("invalid sort order: %s", *o.SortOrder)
	}
	if o.From != nil && o.To != nil && o.To.Before(*o.From) {
		return fmt.Errorf("date range ends before it starts")
	}
	return nil
}

type OrdersQueryBuilder struct {
	query *OrdersQuery
}

func NewOrdersQueryBuilder() *OrdersQueryBuilder {
	return &OrdersQueryBuilder{
		query: &OrdersQuery{},
	}
}

func (b *OrdersQueryBuilder) Build() (*OrdersQuery, error) {
	if err := b.query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, err.Error())
	}
	return b.query, nil
}

func (b *OrdersQueryBuilder) WithIDs(ids ...string) *OrdersQueryBuilder {
	b.query.IDs = ids
	return b
}

func (b *OrdersQueryBuilder) WithUserIDs(userIDs ...string) *OrdersQueryBuilder {
	b.query.UserIDs = userIDs
	return b
}

func (b *OrdersQueryBuilder) WithMethods(methods ...PaymentMethod) *OrdersQueryBuilder {
	b.query.Methods = methods
	return b
}

func (b *OrdersQueryBuilder) WithPayment(paid bool) *OrdersQueryBuilder {
	b.query.Payment = &paid
	return b
}

func (b *OrdersQueryBuilder) WithSearch(text string) *OrdersQueryBuilder {
	b.query.Search = text
	return b
}

func (b *OrdersQueryBuilder) WithDateRange(from, to *time.Time) *OrdersQueryBuilder {
	b.query.From = from
	b.query.To = to
	return b
}

func (b *OrdersQueryBuilder) WithSort(sortBy, sortOrder string) *OrdersQueryBuilder {
	b.query.SortBy = &sortBy
	b.query.SortOrder = &sortOrder
	return b
}

func (b *OrdersQueryBuilder) WithPagination(pagination Pagination) *OrdersQueryBuilder {
	b.query.Pagination = &pagination
	return b
}
