package service

import (
	"context"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// customerOrderLimit caps the orders shown on a customer's page
const customerOrderLimit = 500

// CustomerService serves customers for the admin back-office
type CustomerService interface {
	List(ctx context.Context, limit int) ([]domain.CustomerSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.CustomerDetail, error)
	UpdateNotes(ctx context.Context, actor, id uuid.UUID, notes string) (*domain.Customer, error)
}

type customerService struct {
	tx           TxRunner
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
	auditRepo    repository.AuditRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(
	tx TxRunner,
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditRepository,
	logger *zap.Logger,
) CustomerService {
	return &customerService{
		tx:           tx,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		auditRepo:    auditRepo,
		logger:       logger,
	}
}

func (s *customerService) List(ctx context.Context, limit int) ([]domain.CustomerSummary, error) {
	return s.customerRepo.List(ctx, limit)
}

// Get returns the customer with their orders and lifetime spend
func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*domain.CustomerDetail, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.List(ctx, domain.OrderFilter{CustomerID: id, Limit: customerOrderLimit})
	if err != nil {
		return nil, err
	}

	detail := &domain.CustomerDetail{Customer: *customer, Orders: orders}
	for _, o := range orders {
		detail.LifetimeTotal += o.Total
	}
	return detail, nil
}

// UpdateNotes replaces the internal notes and records the audit entry in the
// same transaction
func (s *customerService) UpdateNotes(ctx context.Context, actor, id uuid.UUID, notes string) (*domain.Customer, error) {
	var updated *domain.Customer
	err := s.tx.WithinTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		updated, err = s.customerRepo.WithTx(tx).UpdateNotes(ctx, id, notes)
		if err != nil {
			return err
		}

		return recordAudit(ctx, s.auditRepo.WithTx(tx), actor, domain.AuditCustomerNotes, domain.AuditEntityCustomer, id.String(),
			map[string]interface{}{"notes": notes})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Customer notes updated",
		zap.String("actor_admin_id", actor.String()),
		zap.String("customer_id", id.String()),
	)

	return updated, nil
}
