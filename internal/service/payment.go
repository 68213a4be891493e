package service

import (
	"context"
	"fmt"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/domain/payment"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

// PaymentService manages mirrored payments and the manual payments admins record
// between syncs. Any sync, whatever its strategy, removes manual payments the provider does not return.
type PaymentService interface {
	CreatePayment(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
	UpdatePayment(ctx context.Context, id string, req *dto.UpdatePaymentRequest) (*dto.PaymentResponse, error)
	DeletePayment(ctx context.Context, id string) error
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{ServiceParams: params}
}

func (s *paymentService) CreatePayment(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.CustomerRepo.Get(ctx, req.CustomerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Customer %s does not exist", req.CustomerID).
				Mark(ierr.ErrValidation)
		}
		return nil, err
	}

	p, err := req.ToPayment(ctx, c.DisplayName())
	if err != nil {
		return nil, err
	}
	if p.CurrencyCode == "" {
		p.CurrencyCode = c.CurrencyCode
	}
	if err := s.PaymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	invalidateBalances(ctx, s.ServiceParams)
	s.Logger.Infow("manual payment recorded",
		"payment_id", p.PaymentID,
		"customer_id", p.CustomerID,
		"amount", p.Amount,
	)
	notify(ctx, s.ServiceParams, types.NotificationTypePayment,
		fmt.Sprintf("Payment of %s recorded for %s", formatAmount(p.Amount, p.CurrencyCode), p.CustomerName),
		map[string]string{"payment_id": p.PaymentID, "customer_id": p.CustomerID})

	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	if id == "" {
		return nil, ierr.NewError("payment_id is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation)
	}

	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.QueryFilter.WithDefaults()

	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.PaymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(payments, func(p *payment.Payment, _ int) *dto.PaymentResponse {
		return &dto.PaymentResponse{Payment: p}
	})
	resp := types.NewListResponse(items, total, filter.GetPage(), filter.GetLimit())
	return &resp, nil
}

func (s *paymentService) UpdatePayment(ctx context.Context, id string, req *dto.UpdatePaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.Apply(ctx, p); err != nil {
		return nil, err
	}
	if err := s.PaymentRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	invalidateBalances(ctx, s.ServiceParams)
	notify(ctx, s.ServiceParams, types.NotificationTypePayment,
		fmt.Sprintf("Payment %s updated", p.PaymentID),
		map[string]string{"payment_id": p.PaymentID, "customer_id": p.CustomerID})

	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) DeletePayment(ctx context.Context, id string) error {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.PaymentRepo.Delete(ctx, id); err != nil {
		return err
	}

	invalidateBalances(ctx, s.ServiceParams)
	notify(ctx, s.ServiceParams, types.NotificationTypePayment,
		fmt.Sprintf("Payment %s deleted", p.PaymentID),
		map[string]string{"payment_id": p.PaymentID, "customer_id": p.CustomerID})
	return nil
}
