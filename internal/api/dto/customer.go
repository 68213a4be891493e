package dto

import (
	"context"
	"strings"

	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/types"
	"github.com/feesync/feesync/internal/validator"
)

type CreateCustomerRequest struct {
	// ContactID is generated when empty
	ContactID    string `json:"contact_id,omitempty" validate:"omitempty,max=64"`
	ContactName  string `json:"contact_name" validate:"required,max=255"`
	CustomerName string `json:"customer_name,omitempty" validate:"omitempty,max=255"`
	CompanyName  string `json:"company_name,omitempty" validate:"omitempty,max=255"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Mobile       string `json:"mobile,omitempty" validate:"omitempty,max=32"`
	Course       string `json:"course,omitempty" validate:"omitempty,max=255"`
	Batch        string `json:"batch,omitempty" validate:"omitempty,max=255"`
	Status       string `json:"status,omitempty"`
	CurrencyCode string `json:"currency_code,omitempty" validate:"omitempty,len=3"`
}

func (r *CreateCustomerRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateCustomerRequest) ToCustomer(ctx context.Context) *customer.Customer {
	contactID := strings.TrimSpace(r.ContactID)
	if contactID == "" {
		contactID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER)
	}
	customerName := strings.TrimSpace(r.CustomerName)
	if customerName == "" {
		customerName = strings.TrimSpace(r.ContactName)
	}
	status := r.Status
	if status == "" {
		status = "active"
	}
	return &customer.Customer{
		ContactID:    contactID,
		ContactName:  strings.TrimSpace(r.ContactName),
		CustomerName: customerName,
		CompanyName:  r.CompanyName,
		Email:        strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:        strings.TrimSpace(r.Phone),
		Mobile:       strings.TrimSpace(r.Mobile),
		Course:       r.Course,
		Batch:        r.Batch,
		Status:       status,
		CurrencyCode: r.CurrencyCode,
		Source:       types.SourceManual,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

// UpdateCustomerRequest is a partial update; nil fields are left untouched
type UpdateCustomerRequest struct {
	ContactName  *string `json:"contact_name,omitempty" validate:"omitempty,min=1,max=255"`
	CustomerName *string `json:"customer_name,omitempty" validate:"omitempty,max=255"`
	CompanyName  *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Mobile       *string `json:"mobile,omitempty" validate:"omitempty,max=32"`
	Course       *string `json:"course,omitempty" validate:"omitempty,max=255"`
	Batch        *string `json:"batch,omitempty" validate:"omitempty,max=255"`
	Status       *string `json:"status,omitempty"`
}

func (r *UpdateCustomerRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *UpdateCustomerRequest) Apply(ctx context.Context, c *customer.Customer) {
	if r.ContactName != nil {
		c.ContactName = strings.TrimSpace(*r.ContactName)
	}
	if r.CustomerName != nil {
		c.CustomerName = strings.TrimSpace(*r.CustomerName)
	}
	if r.CompanyName != nil {
		c.CompanyName = *r.CompanyName
	}
	if r.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
	if r.Phone != nil {
		c.Phone = strings.TrimSpace(*r.Phone)
	}
	if r.Mobile != nil {
		c.Mobile = strings.TrimSpace(*r.Mobile)
	}
	if r.Course != nil {
		c.Course = *r.Course
	}
	if r.Batch != nil {
		c.Batch = *r.Batch
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	c.Touch(ctx)
}

// CustomerResponse is a customer with its computed balance
type CustomerResponse struct {
	*customer.Customer
	Outstanding float64 `json:"outstanding"`
	HasPassword bool    `json:"has_password"`
}

func NewCustomerResponse(c *customer.Customer, outstanding float64) *CustomerResponse {
	return &CustomerResponse{
		Customer:    c,
		Outstanding: outstanding,
		HasPassword: c.HasPassword(),
	}
}

// ListCustomersResponse represents the response for listing customers
type ListCustomersResponse = types.ListResponse[*CustomerResponse]
