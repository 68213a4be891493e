package repository

import (
	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/domain/notification"
	"github.com/feesync/feesync/internal/domain/payment"
	"github.com/feesync/feesync/internal/domain/synclog"
	"github.com/feesync/feesync/internal/domain/token"
	"github.com/feesync/feesync/internal/domain/user"
	"github.com/feesync/feesync/internal/logger"
	mongoRepo "github.com/feesync/feesync/internal/repository/mongo"
	"go.mongodb.org/mongo-driver/mongo"
)

func NewCustomerRepository(db *mongo.Database, logger *logger.Logger) customer.Repository {
	return mongoRepo.NewCustomerRepository(db, logger)
}

func NewInvoiceRepository(db *mongo.Database, logger *logger.Logger) invoice.Repository {
	return mongoRepo.NewInvoiceRepository(db, logger)
}

func NewPaymentRepository(db *mongo.Database, logger *logger.Logger) payment.Repository {
	return mongoRepo.NewPaymentRepository(db, logger)
}

func NewTokenRepository(db *mongo.Database, logger *logger.Logger) token.Repository {
	return mongoRepo.NewTokenRepository(db, logger)
}

func NewNotificationRepository(db *mongo.Database, logger *logger.Logger) notification.Repository {
	return mongoRepo.NewNotificationRepository(db, logger)
}

func NewUserRepository(db *mongo.Database, logger *logger.Logger) user.Repository {
	return mongoRepo.NewUserRepository(db, logger)
}

func NewSyncLogRepository(db *mongo.Database, logger *logger.Logger) synclog.Repository {
	return mongoRepo.NewSyncLogRepository(db, logger)
}
