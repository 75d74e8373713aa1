//go:generate mockgen -source ./deps.go -destination=./mocks/deps.go -package=mock_dashboard
package dashboard

import (
	"context"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/api"
)

// OrderAPI is the part of the order API the list view and the row mutation
// controller depend on.
type OrderAPI interface {
	ListOrders(ctx context.Context, rawQuery string) (*api.OrderListPage, error)
	GetOrder(ctx context.Context, id int64) (*api.Order, error)
	UpdateOrderLine(ctx context.Context, id int64, status api.LineStatus) (*api.OrderLine, error)
}
