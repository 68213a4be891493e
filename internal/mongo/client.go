package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/feesync/feesync/internal/config"
	"github.com/feesync/feesync/internal/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
)

// Collection names of the mirror store
const (
	CollectionCustomers     = "customers"
	CollectionInvoices      = "invoices"
	CollectionPayments      = "payments"
	CollectionTokens        = "tokens"
	CollectionNotifications = "notifications"
	CollectionUsers         = "users"
	CollectionSyncLogs      = "synclogs"
)

// Client owns the driver connection and the application database handle
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logger.Logger
}

// Module provides the mongo client and database to the fx graph
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewClient,
			NewDatabase,
		),
		fx.Invoke(RegisterHooks),
	)
}

// NewClient connects to the configured deployment and waits until it answers a ping.
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	timeout := cfg.Mongo.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := ping(client, cfg.Mongo.StartupRetry, log); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo is not reachable: %w", err)
	}

	log.Infow("connected to mongo", "database", cfg.Mongo.Database)

	return &Client{
		client: client,
		db:     client.Database(cfg.Mongo.Database),
		logger: log,
	}, nil
}

// ping retries with exponential backoff until maxElapsed passes
func ping(client *mongo.Client, maxElapsed time.Duration, log *logger.Logger) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsed

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			log.Warnw("mongo ping failed", "attempt", attempt, "error", err)
			return err
		}
		return nil
	}, b)
}

// NewDatabase exposes the application database to repositories
func NewDatabase(c *Client) *mongo.Database {
	return c.db
}

func (c *Client) Database() *mongo.Database {
	return c.db
}

func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// RegisterHooks ensures indexes on start and disconnects on stop
func RegisterHooks(lc fx.Lifecycle, c *Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return EnsureIndexes(ctx, c.db, c.logger)
		},
		OnStop: func(ctx context.Context) error {
			c.logger.Info("disconnecting from mongo")
			return c.Disconnect(ctx)
		},
	})
}

// Ping reports whether the primary answers
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}
