package testutil

import (
	"context"
	"time"

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
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/types"
	"github.com/feesync/feesync/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	CustomerRepo     customer.Repository
	InvoiceRepo      invoice.Repository
	PaymentRepo      payment.Repository
	TokenRepo        token.Repository
	NotificationRepo notification.Repository
	UserRepo         user.Repository
	SyncLogRepo      synclog.Repository
}

// Mocks holds the fake integrations
type Mocks struct {
	Zoho      *MockZohoClient
	Email     *MockEmailSender
	Messaging *MockMessagingSender
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	mocks  Mocks
	cache  cache.Cache
	auth   auth.Provider
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "test-secret-for-unit-tests-only"
	cfg.Auth.FrontendURL = "https://portal.example.com"
	cfg.Zoho.OrganizationID = "org_test"
	cfg.Reminder.WhatsAppInterval = 0
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = time.Minute
	s.config = cfg
	s.logger = logger.NewNopLogger()
	s.auth = auth.NewProvider(cfg)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext("", types.RoleAdmin)
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		CustomerRepo:     NewInMemoryCustomerStore(),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		PaymentRepo:      NewInMemoryPaymentStore(),
		TokenRepo:        NewInMemoryTokenStore(),
		NotificationRepo: NewInMemoryNotificationStore(),
		UserRepo:         NewInMemoryUserStore(),
		SyncLogRepo:      NewInMemorySyncLogStore(),
	}
	s.mocks = Mocks{
		Zoho:      NewMockZohoClient(),
		Email:     NewMockEmailSender(),
		Messaging: NewMockMessagingSender(),
	}
	s.cache = cache.NewInMemoryCache(s.config, s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.CustomerRepo.(*InMemoryCustomerStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.TokenRepo.(*InMemoryTokenStore).Clear()
	s.stores.NotificationRepo.(*InMemoryNotificationStore).Clear()
	s.stores.UserRepo.(*InMemoryUserStore).Clear()
	s.stores.SyncLogRepo.(*InMemorySyncLogStore).Clear()
	s.mocks.Zoho.Reset()
	s.cache.Flush(context.Background())
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// SetContext replaces the test context, for tests acting as another principal
func (s *BaseServiceTestSuite) SetContext(ctx context.Context) {
	s.ctx = ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetMocks returns the fake integrations
func (s *BaseServiceTestSuite) GetMocks() Mocks {
	return s.mocks
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetAuthProvider() auth.Provider {
	return s.auth
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}
