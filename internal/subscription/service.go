package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

// Service creates payment orders and activates subscriptions.
type Service struct {
	repo     Repository
	provider Provider
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a subscription service.
func NewService(repo Repository, provider Provider) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		validate: validator.New(),
		now:      time.Now,
	}
}

// CreateOrder opens a payment order for the named plan.
func (s *Service) CreateOrder(ctx context.Context, accountID uuid.UUID, planName string) (*Order, error) {
	if planName != PlanProfessional {
		return nil, fmt.Errorf("%w: invalid plan selected", httpx.ErrValidation)
	}
	receipt := fmt.Sprintf("receipt_%d", s.now().UnixMilli())
	order, err := s.provider.CreateOrder(ctx, ProfessionalAmountPaise, receipt)
	if err != nil {
		return nil, fmt.Errorf("create payment order: %w", err)
	}
	return order, nil
}

// ActivateRequest carries the verified payment references from checkout.
type ActivateRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
}

// Activate upserts an active subscription for one billing period.
func (s *Service) Activate(ctx context.Context, accountID uuid.UUID, req ActivateRequest) (*Subscription, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	now := s.now()
	sub := Subscription{
		AccountID:          accountID,
		PlanType:           PlanTypeProfessional,
		Status:             "active",
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(periodLength),
		RazorpayOrderID:    req.OrderID,
		RazorpayPaymentID:  req.PaymentID,
	}
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}
	return &sub, nil
}

// Status returns the account's subscription together with its access state.
func (s *Service) Status(ctx context.Context, accountID uuid.UUID) (*Subscription, bool, error) {
	sub, err := s.repo.GetByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return sub, sub.Active(s.now()), nil
}
