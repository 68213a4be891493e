package service

import (
	"github.com/feesync/feesync/internal/auth"
	"github.com/feesync/feesync/internal/cache"
	"github.com/feesync/feesync/internal/config"
	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/domain/notification"
	"github.com/feesync/feesync/internal/domain/payment"
	"github.com/feesync/feesync/internal/domain/synclog"
	"github.com/feesync/feesync/internal/domain/token"
	"github.com/feesync/feesync/internal/domain/user"
	"github.com/feesync/feesync/internal/email"
	"github.com/feesync/feesync/internal/integration/zoho"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/messaging"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Cache  cache.Cache

	// Repositories
	CustomerRepo     customer.Repository
	InvoiceRepo      invoice.Repository
	PaymentRepo      payment.Repository
	TokenRepo        token.Repository
	NotificationRepo notification.Repository
	UserRepo         user.Repository
	SyncLogRepo      synclog.Repository

	// Integrations
	ZohoClient      zoho.ZohoClient
	EmailSender     email.Sender
	MessagingSender messaging.Sender
	AuthProvider    auth.Provider
}

// NewServiceParams is the fx constructor for ServiceParams
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	cache cache.Cache,
	customerRepo customer.Repository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	tokenRepo token.Repository,
	notificationRepo notification.Repository,
	userRepo user.Repository,
	syncLogRepo synclog.Repository,
	zohoClient zoho.ZohoClient,
	emailSender email.Sender,
	messagingSender messaging.Sender,
	authProvider auth.Provider,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		Cache:            cache,
		CustomerRepo:     customerRepo,
		InvoiceRepo:      invoiceRepo,
		PaymentRepo:      paymentRepo,
		TokenRepo:        tokenRepo,
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		SyncLogRepo:      syncLogRepo,
		ZohoClient:       zohoClient,
		EmailSender:      emailSender,
		MessagingSender:  messagingSender,
		AuthProvider:     authProvider,
	}
}
