package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/clothing-store-backend/pkg/errors"
	"github.com/angelmondragon/clothing-store-backend/pkg/pagination"
	"github.com/angelmondragon/clothing-store-backend/pkg/types"
)

// DefaultListLimit is the order history page size when none is requested.
const DefaultListLimit = 10

// Service exposes read access to a user's order history.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo     Repository
	products productLoader
}

// NewService constructs the order query service.
func NewService(repo Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	page := pagination.Normalize(params, DefaultListLimit)

	rows, total, err := s.repo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	products, err := s.products.FindByIDs(ctx, ProductIDs(rows...))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order products")
	}

	items := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, NewOrderDTO(row, products))
	}
	return &OrderListResult{
		Orders: items,
		PageMeta: types.PageMeta{
			Count: len(items),
			Total: total,
			Page:  page.Page,
			Pages: pagination.Pages(total, page.Limit),
		},
	}, nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to access this order")
	}

	products, err := s.products.FindByIDs(ctx, ProductIDs(*order))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order products")
	}
	dto := NewOrderDTO(*order, products)
	return &dto, nil
}
