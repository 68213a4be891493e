package service

import (
	"testing"
	"time"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/domain/invoice"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/testutil"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type CustomerServiceSuite struct {
	testutil.BaseServiceTestSuite
	customers CustomerService
	payments  PaymentService
	invoices  InvoiceService
}

func TestCustomerService(t *testing.T) {
	suite.Run(t, new(CustomerServiceSuite))
}

func (s *CustomerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestParams(&s.BaseServiceTestSuite)
	s.customers = NewCustomerService(params)
	s.payments = NewPaymentService(params)
	s.invoices = NewInvoiceService(params)
}

func (s *CustomerServiceSuite) createCustomer(id, name string) *dto.CustomerResponse {
	resp, err := s.customers.CreateCustomer(s.GetContext(), &dto.CreateCustomerRequest{
		ContactID:    id,
		ContactName:  name,
		Email:        id + "@Example.com",
		CurrencyCode: "INR",
	})
	s.Require().NoError(err)
	return resp
}

func (s *CustomerServiceSuite) addInvoice(id, customerID string, total float64) {
	s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore).Put(s.GetContext(), id, &invoice.Invoice{
		InvoiceID:  id,
		CustomerID: customerID,
		Status:     "sent",
		Total:      total,
		Date:       time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
	})
}

func (s *CustomerServiceSuite) TestCreateCustomer() {
	testCases := []struct {
		name    string
		request dto.CreateCustomerRequest
		wantErr func(error) bool
	}{
		{
			name:    "generated_contact_id",
			request: dto.CreateCustomerRequest{ContactName: "Meera Nair", Email: "meera@example.com"},
		},
		{
			name:    "missing_name",
			request: dto.CreateCustomerRequest{Email: "x@example.com"},
			wantErr: ierr.IsValidation,
		},
		{
			name:    "invalid_email",
			request: dto.CreateCustomerRequest{ContactName: "X", Email: "not-an-email"},
			wantErr: ierr.IsValidation,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp, err := s.customers.CreateCustomer(s.GetContext(), &tc.request)
			if tc.wantErr != nil {
				s.True(tc.wantErr(err))
				return
			}
			s.Require().NoError(err)
			s.NotEmpty(resp.ContactID)
			s.Equal(types.SourceManual, resp.Source)
			s.Equal("active", resp.Status)
			s.Equal(tc.request.ContactName, resp.CustomerName)
		})
	}
}

func (s *CustomerServiceSuite) TestDuplicateContactID() {
	s.createCustomer("C1", "Asha")

	_, err := s.customers.CreateCustomer(s.GetContext(), &dto.CreateCustomerRequest{ContactID: "C1", ContactName: "Other"})
	s.True(ierr.IsAlreadyExists(err))
	s.Equal(400, ierr.HTTPStatusFromErr(err))
}

func (s *CustomerServiceSuite) TestEmailIsNormalized() {
	resp := s.createCustomer("C1", "Asha")
	s.Equal("c1@example.com", resp.Email)
}

func (s *CustomerServiceSuite) TestGetIncludesOutstanding() {
	s.createCustomer("C1", "Asha")
	s.addInvoice("I1", "C1", 1000)
	_, err := s.payments.CreatePayment(s.GetContext(), &dto.CreatePaymentRequest{CustomerID: "C1", Amount: 250, Date: "2024-05-10"})
	s.Require().NoError(err)

	resp, err := s.customers.GetCustomer(s.GetContext(), "C1")
	s.Require().NoError(err)
	s.Equal(750.0, resp.Outstanding)
	s.False(resp.HasPassword)
}

func (s *CustomerServiceSuite) TestListCustomers() {
	s.createCustomer("C1", "Asha Rao")
	s.createCustomer("C2", "Vikram Iyer")
	s.createCustomer("C3", "Asha Menon")
	s.addInvoice("I1", "C3", 300)

	filter := types.NewCustomerFilter()
	filter.Search = "asha"
	resp, err := s.customers.GetCustomers(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Equal(2, resp.Pagination.Total)

	balances := lo.SliceToMap(resp.Items, func(c *dto.CustomerResponse) (string, float64) { return c.ContactID, c.Outstanding })
	s.Equal(300.0, balances["C3"])
	s.Equal(0.0, balances["C1"])

	filter = types.NewCustomerFilter()
	filter.Limit = lo.ToPtr(2)
	resp, err = s.customers.GetCustomers(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(3, resp.Pagination.Total)
}

func (s *CustomerServiceSuite) TestUpdateCustomer() {
	s.createCustomer("C1", "Asha")

	resp, err := s.customers.UpdateCustomer(s.GetContext(), "C1", &dto.UpdateCustomerRequest{
		Course: lo.ToPtr("Physics"),
		Mobile: lo.ToPtr(" 9000000001 "),
	})
	s.Require().NoError(err)
	s.Equal("Physics", resp.Course)
	s.Equal("9000000001", resp.Mobile)
	s.Equal("Asha", resp.ContactName)

	_, err = s.customers.UpdateCustomer(s.GetContext(), "missing", &dto.UpdateCustomerRequest{})
	s.True(ierr.IsNotFound(err))
}

func (s *CustomerServiceSuite) TestDeleteCustomer() {
	s.createCustomer("C1", "Asha")

	s.Require().NoError(s.customers.DeleteCustomer(s.GetContext(), "C1"))
	_, err := s.customers.GetCustomer(s.GetContext(), "C1")
	s.True(ierr.IsNotFound(err))

	err = s.customers.DeleteCustomer(s.GetContext(), "C1")
	s.True(ierr.IsNotFound(err))
}

func (s *CustomerServiceSuite) TestPaymentLifecycle() {
	s.createCustomer("C1", "Asha")

	created, err := s.payments.CreatePayment(s.GetContext(), &dto.CreatePaymentRequest{
		CustomerID: "C1",
		Amount:     400,
		Date:       "2024-05-10",
	})
	s.Require().NoError(err)
	s.Equal(types.SourceManual, created.Source)
	s.Equal("cash", created.PaymentMode)
	s.Equal("Asha", created.CustomerName)
	s.Equal("INR", created.CurrencyCode)

	updated, err := s.payments.UpdatePayment(s.GetContext(), created.PaymentID, &dto.UpdatePaymentRequest{
		Amount: lo.ToPtr(450.0),
		Date:   lo.ToPtr("2024-05-11"),
	})
	s.Require().NoError(err)
	s.Equal(450.0, updated.Amount)
	s.Equal(time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC), updated.Date)

	filter := types.NewPaymentFilter()
	filter.Month = "2024-05"
	list, err := s.payments.ListPayments(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Equal(1, list.Pagination.Total)

	s.Require().NoError(s.payments.DeletePayment(s.GetContext(), created.PaymentID))
	_, err = s.payments.GetPayment(s.GetContext(), created.PaymentID)
	s.True(ierr.IsNotFound(err))

	// create, update and delete each leave an activity entry, plus the customer creation
	n, err := s.GetStores().NotificationRepo.Count(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Equal(4, n)
}

func (s *CustomerServiceSuite) TestPaymentValidation() {
	s.createCustomer("C1", "Asha")

	testCases := []struct {
		name    string
		request dto.CreatePaymentRequest
	}{
		{name: "unknown_customer", request: dto.CreatePaymentRequest{CustomerID: "ghost", Amount: 10, Date: "2024-05-01"}},
		{name: "zero_amount", request: dto.CreatePaymentRequest{CustomerID: "C1", Amount: 0, Date: "2024-05-01"}},
		{name: "bad_date", request: dto.CreatePaymentRequest{CustomerID: "C1", Amount: 10, Date: "01/05/2024"}},
		{name: "blank_date", request: dto.CreatePaymentRequest{CustomerID: "C1", Amount: 10, Date: "   "}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.payments.CreatePayment(s.GetContext(), &tc.request)
			s.True(ierr.IsValidation(err))
		})
	}

	n, err := s.GetStores().PaymentRepo.Count(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *CustomerServiceSuite) TestPaymentInvalidatesCachedBalance() {
	s.createCustomer("C1", "Asha")
	s.addInvoice("I1", "C1", 1000)
	aggregation := NewAggregationService(newTestParams(&s.BaseServiceTestSuite))

	before, err := aggregation.GetOutstanding(s.GetContext(), "C1")
	s.Require().NoError(err)
	s.Equal(1000.0, before.Outstanding)

	_, err = s.payments.CreatePayment(s.GetContext(), &dto.CreatePaymentRequest{CustomerID: "C1", Amount: 300, Date: "2024-05-10"})
	s.Require().NoError(err)

	after, err := aggregation.GetOutstanding(s.GetContext(), "C1")
	s.Require().NoError(err)
	s.Equal(700.0, after.Outstanding)
}

func (s *CustomerServiceSuite) TestInvoices() {
	s.addInvoice("I1", "C1", 100)
	s.addInvoice("I2", "C2", 200)

	filter := types.NewInvoiceFilter()
	filter.CustomerID = "C2"
	list, err := s.invoices.ListInvoices(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Require().Len(list.Items, 1)
	s.Equal("I2", list.Items[0].InvoiceID)

	_, err = s.invoices.GetInvoice(s.GetContext(), "I9")
	s.True(ierr.IsNotFound(err))
}
