package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var (
	ErrInvalidPaymentStatus     = errors.New("invalid payment status")
	ErrInvalidFulfillmentStatus = errors.New("invalid fulfillment status")
	ErrInvalidTransition        = errors.New("fulfillment transition not allowed")
)

// FulfillmentUpdate sets the fulfillment status with optional tracking details
type FulfillmentUpdate struct {
	Status         domain.FulfillmentStatus
	TrackingNumber string
	Courier        string
}

// OrderService backs the admin order screens. Only status, tracking and notes
// ever change; item, address, payment and total snapshots are left alone.
type OrderService interface {
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, actor, id uuid.UUID, status domain.PaymentStatus) (*domain.Order, error)
	UpdateFulfillment(ctx context.Context, actor, id uuid.UUID, update FulfillmentUpdate) (*domain.Order, error)
	UpdateNotes(ctx context.Context, actor, id uuid.UUID, notes string) (*domain.Order, error)
	Cancel(ctx context.Context, actor, id uuid.UUID) (*domain.Order, error)
}

type orderService struct {
	tx                TxRunner
	orderRepo         repository.OrderRepository
	auditRepo         repository.AuditRepository
	strictTransitions bool
	logger            *zap.Logger
}

// NewOrderService creates a new instance of OrderService. With strictTransitions
// off any fulfillment status may follow any other.
func NewOrderService(tx TxRunner, orderRepo repository.OrderRepository, auditRepo repository.AuditRepository, strictTransitions bool, logger *zap.Logger) OrderService {
	return &orderService{
		tx:                tx,
		orderRepo:         orderRepo,
		auditRepo:         auditRepo,
		strictTransitions: strictTransitions,
		logger:            logger,
	}
}

func (s *orderService) List(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderSummary, error) {
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, ErrInvalidPaymentStatus
	}
	if filter.FulfillmentStatus != "" && !filter.FulfillmentStatus.Valid() {
		return nil, ErrInvalidFulfillmentStatus
	}
	return s.orderRepo.List(ctx, filter)
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, actor, id uuid.UUID, status domain.PaymentStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidPaymentStatus
	}

	return s.mutate(ctx, actor, id, domain.AuditOrderPayment, func(repo repository.OrderRepository, current *domain.Order) (*domain.Order, interface{}, error) {
		updated, err := repo.UpdatePaymentStatus(ctx, id, status)
		return updated, map[string]interface{}{
			"paymentStatus": status,
			"previous":      current.PaymentStatus,
		}, err
	})
}

func (s *orderService) UpdateFulfillment(ctx context.Context, actor, id uuid.UUID, update FulfillmentUpdate) (*domain.Order, error) {
	if !update.Status.Valid() {
		return nil, ErrInvalidFulfillmentStatus
	}

	tracking := optionalText(update.TrackingNumber)
	courier := optionalText(update.Courier)

	return s.mutate(ctx, actor, id, domain.AuditOrderFulfillment, func(repo repository.OrderRepository, current *domain.Order) (*domain.Order, interface{}, error) {
		if err := s.checkTransition(current.FulfillmentStatus, update.Status); err != nil {
			return nil, nil, err
		}
		updated, err := repo.UpdateFulfillment(ctx, id, update.Status, tracking, courier)
		return updated, map[string]interface{}{
			"fulfillmentStatus": update.Status,
			"previous":          current.FulfillmentStatus,
			"trackingNumber":    strings.TrimSpace(update.TrackingNumber),
			"courier":           strings.TrimSpace(update.Courier),
		}, err
	})
}

func (s *orderService) UpdateNotes(ctx context.Context, actor, id uuid.UUID, notes string) (*domain.Order, error) {
	return s.mutate(ctx, actor, id, domain.AuditOrderNotes, func(repo repository.OrderRepository, _ *domain.Order) (*domain.Order, interface{}, error) {
		updated, err := repo.UpdateNotes(ctx, id, notes)
		return updated, map[string]interface{}{"notes": notes}, err
	})
}

// Cancel moves the order to CANCELLED, keeping tracking details. Stock is not
// returned automatically; operators restock through an inventory adjustment.
func (s *orderService) Cancel(ctx context.Context, actor, id uuid.UUID) (*domain.Order, error) {
	return s.mutate(ctx, actor, id, domain.AuditOrderCancel, func(repo repository.OrderRepository, current *domain.Order) (*domain.Order, interface{}, error) {
		if err := s.checkTransition(current.FulfillmentStatus, domain.FulfillmentCancelled); err != nil {
			return nil, nil, err
		}
		updated, err := repo.UpdateFulfillment(ctx, id, domain.FulfillmentCancelled, current.TrackingNumber, current.Courier)
		return updated, map[string]interface{}{
			"fulfillmentStatus": domain.FulfillmentCancelled,
			"previous":          current.FulfillmentStatus,
		}, err
	})
}

func (s *orderService) checkTransition(from, to domain.FulfillmentStatus) error {
	if s.strictTransitions && !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

type orderMutation func(repo repository.OrderRepository, current *domain.Order) (*domain.Order, interface{}, error)

// mutate locks the order row, applies fn and records the audit entry in one transaction
func (s *orderService) mutate(ctx context.Context, actor, id uuid.UUID, action string, fn orderMutation) (*domain.Order, error) {
	var updated *domain.Order
	err := s.tx.WithinTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.orderRepo.WithTx(tx)

		current, err := repo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}

		var diff interface{}
		updated, diff, err = fn(repo, current)
		if err != nil {
			return err
		}

		return recordAudit(ctx, s.auditRepo.WithTx(tx), actor, action, domain.AuditEntityOrder, id.String(), diff)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order updated",
		zap.String("actor_admin_id", actor.String()),
		zap.String("order_id", id.String()),
		zap.String("action", action),
	)

	return updated, nil
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
