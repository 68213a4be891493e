package types

import (
	"strings"

	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/samber/lo"
)

const (
	FILTER_DEFAULT_LIMIT = 50
	FILTER_MAX_LIMIT     = 1000
	FILTER_DEFAULT_SORT  = "created_at"
	FILTER_DEFAULT_ORDER = "desc"

	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// BaseFilter defines common filtering capabilities
type BaseFilter interface {
	GetLimit() int
	GetPage() int
	GetOffset() int
	GetSort() string
	GetOrder() string
	Validate() error
	IsUnlimited() bool
}

// QueryFilter is the page based pagination shared by every list endpoint
type QueryFilter struct {
	Page  *int    `json:"page,omitempty" form:"page" validate:"omitempty,min=1"`
	Limit *int    `json:"limit,omitempty" form:"limit" validate:"omitempty,min=1,max=1000"`
	Sort  *string `json:"sort,omitempty" form:"sort"`
	Order *string `json:"order,omitempty" form:"order" validate:"omitempty,oneof=asc desc"`
}

func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Page:  lo.ToPtr(1),
		Limit: lo.ToPtr(FILTER_DEFAULT_LIMIT),
		Sort:  lo.ToPtr(FILTER_DEFAULT_SORT),
		Order: lo.ToPtr(FILTER_DEFAULT_ORDER),
	}
}

// NewNoLimitQueryFilter returns a filter that returns every matching document
func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{
		Sort:  lo.ToPtr(FILTER_DEFAULT_SORT),
		Order: lo.ToPtr(FILTER_DEFAULT_ORDER),
	}
}

func (f *QueryFilter) IsUnlimited() bool {
	return f == nil || f.Limit == nil
}

func (f *QueryFilter) GetLimit() int {
	if f.IsUnlimited() {
		return 0
	}
	return *f.Limit
}

func (f *QueryFilter) GetPage() int {
	if f == nil || f.Page == nil || *f.Page < 1 {
		return 1
	}
	return *f.Page
}

func (f *QueryFilter) GetOffset() int {
	return (f.GetPage() - 1) * f.GetLimit()
}

func (f *QueryFilter) GetSort() string {
	if f == nil || f.Sort == nil || *f.Sort == "" {
		return FILTER_DEFAULT_SORT
	}
	return *f.Sort
}

func (f *QueryFilter) GetOrder() string {
	if f == nil || f.Order == nil || *f.Order == "" {
		return FILTER_DEFAULT_ORDER
	}
	return *f.Order
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > FILTER_MAX_LIMIT) {
		return ierr.NewError("limit out of range").
			WithHint("Limit must be between 1 and 1000").
			Mark(ierr.ErrValidation)
	}
	if f.Page != nil && *f.Page < 1 {
		return ierr.NewError("page out of range").
			WithHint("Page must be at least 1").
			Mark(ierr.ErrValidation)
	}
	if f.Order != nil && *f.Order != OrderAsc && *f.Order != OrderDesc {
		return ierr.NewError("invalid order").
			WithHint("Order must be asc or desc").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// WithDefaults fills unset page and limit values.
func (f *QueryFilter) WithDefaults() *QueryFilter {
	if f == nil {
		return NewDefaultQueryFilter()
	}
	if f.Page == nil {
		f.Page = lo.ToPtr(1)
	}
	if f.Limit == nil {
		f.Limit = lo.ToPtr(FILTER_DEFAULT_LIMIT)
	}
	return f
}

// CustomerFilter filters the mirrored customers
type CustomerFilter struct {
	*QueryFilter
	Search     string   `json:"search,omitempty" form:"search"`
	ContactIDs []string `json:"contact_ids,omitempty" form:"contact_ids"`
	Source     *Source  `json:"source,omitempty" form:"source"`
}

func NewCustomerFilter() *CustomerFilter {
	return &CustomerFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitCustomerFilter() *CustomerFilter {
	return &CustomerFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *CustomerFilter) Validate() error {
	if f == nil {
		return nil
	}
	f.Search = strings.TrimSpace(f.Search)
	return f.QueryFilter.Validate()
}

// InvoiceFilter filters the mirrored invoices
type InvoiceFilter struct {
	*QueryFilter
	Search     string `json:"search,omitempty" form:"search"`
	CustomerID string `json:"customer_id,omitempty" form:"customer_id"`
	Status     string `json:"status,omitempty" form:"status"`
	Month      string `json:"month,omitempty" form:"month"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *InvoiceFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Month != "" {
		if _, err := ParseMonth(f.Month); err != nil {
			return err
		}
	}
	return f.QueryFilter.Validate()
}

// PaymentFilter filters the mirrored payments
type PaymentFilter struct {
	*QueryFilter
	Search     string  `json:"search,omitempty" form:"search"`
	CustomerID string  `json:"customer_id,omitempty" form:"customer_id"`
	Month      string  `json:"month,omitempty" form:"month"`
	Source     *Source `json:"source,omitempty" form:"source"`
}

func NewPaymentFilter() *PaymentFilter {
	return &PaymentFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitPaymentFilter() *PaymentFilter {
	return &PaymentFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *PaymentFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Month != "" {
		if _, err := ParseMonth(f.Month); err != nil {
			return err
		}
	}
	return f.QueryFilter.Validate()
}

// NotificationFilter filters the admin notification log
type NotificationFilter struct {
	*QueryFilter
	UnreadOnly bool              `json:"unread_only,omitempty" form:"unread_only"`
	Type       *NotificationType `json:"type,omitempty" form:"type"`
}

func NewNotificationFilter() *NotificationFilter {
	return &NotificationFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *NotificationFilter) Validate() error {
	if f == nil {
		return nil
	}
	return f.QueryFilter.Validate()
}

// SyncLogFilter filters recorded sync runs
type SyncLogFilter struct {
	*QueryFilter
	Status *SyncStatus `json:"status,omitempty" form:"status"`
}

func NewSyncLogFilter() *SyncLogFilter {
	return &SyncLogFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *SyncLogFilter) Validate() error {
	if f == nil {
		return nil
	}
	return f.QueryFilter.Validate()
}
