package service

import (
	"context"
	"fmt"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/domain/customer"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, req *dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error)
	GetCustomers(ctx context.Context, filter *types.CustomerFilter) (*dto.ListCustomersResponse, error)
	UpdateCustomer(ctx context.Context, id string, req *dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id string) error
}

type customerService struct {
	ServiceParams
	aggregation AggregationService
}

func NewCustomerService(params ServiceParams) CustomerService {
	return &customerService{
		ServiceParams: params,
		aggregation:   NewAggregationService(params),
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, req *dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := req.ToCustomer(ctx)
	if err := s.CustomerRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	invalidateBalances(ctx, s.ServiceParams)
	notify(ctx, s.ServiceParams, types.NotificationTypeCustomer,
		fmt.Sprintf("Customer %s added", c.DisplayName()),
		map[string]string{"customer_id": c.ContactID})

	return dto.NewCustomerResponse(c, 0), nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	if id == "" {
		return nil, ierr.NewError("customer_id is required").
			WithHint("Customer ID is required").
			Mark(ierr.ErrValidation)
	}

	c, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	balance, err := s.aggregation.GetOutstanding(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewCustomerResponse(c, balance.Outstanding), nil
}

func (s *customerService) GetCustomers(ctx context.Context, filter *types.CustomerFilter) (*dto.ListCustomersResponse, error) {
	if filter == nil {
		filter = types.NewCustomerFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.QueryFilter.WithDefaults()

	customers, err := s.CustomerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.CustomerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	balances := map[string]float64{}
	if len(customers) > 0 {
		balances, err = s.aggregation.OutstandingByCustomer(ctx)
		if err != nil {
			return nil, err
		}
	}

	items := lo.Map(customers, func(c *customer.Customer, _ int) *dto.CustomerResponse {
		return dto.NewCustomerResponse(c, balances[c.ContactID])
	})
	resp := types.NewListResponse(items, total, filter.GetPage(), filter.GetLimit())
	return &resp, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req *dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(ctx, c)
	if err := s.CustomerRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	invalidateBalances(ctx, s.ServiceParams)

	return s.GetCustomer(ctx, id)
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	c, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.CustomerRepo.Delete(ctx, id); err != nil {
		return err
	}

	invalidateBalances(ctx, s.ServiceParams)
	notify(ctx, s.ServiceParams, types.NotificationTypeCustomer,
		fmt.Sprintf("Customer %s deleted", c.DisplayName()),
		map[string]string{"customer_id": id})
	return nil
}
