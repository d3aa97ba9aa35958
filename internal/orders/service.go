package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/partshub/autospares-backend/pkg/db"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
)

// Service is the read model over placed orders.
type Service interface {
	// ListByUser returns the user's own orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	// GetByNumber returns one order. Customers may only read their own
	// orders; staff may read any.
	GetByNumber(ctx context.Context, orderNumber string, actor Actor) (*OrderDTO, error)
}

type service struct {
	db *db.Client
}

// ServiceParams bundles the dependencies for the orders service.
type ServiceParams struct {
	DB *db.Client
}

// NewService constructs the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{db: params.DB}, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	records, err := NewRepository(s.db.DB()).ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(records))
	for _, record := range records {
		out = append(out, FromModel(record))
	}
	return out, nil
}

func (s *service) GetByNumber(ctx context.Context, orderNumber string, actor Actor) (*OrderDTO, error) {
	order, err := NewRepository(s.db.DB()).FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !actor.Role.IsStaff() {
		if order.UserID == nil || *order.UserID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
		}
	}
	dto := FromModel(*order)
	return &dto, nil
}
