package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/feesync/feesync/internal/config"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/mongo"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Print the indexes without creating them")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if *dryRun {
		logger.Info("Dry run mode - printing indexes without creating them")
		printIndexes()
		return
	}

	logger.Infow("Connecting to database", "database", cfg.Mongo.Database)
	client, err := mongo.NewClient(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to mongo", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer func() { _ = client.Disconnect(context.Background()) }()

	logger.Info("Ensuring collection indexes...")
	if err := mongo.EnsureIndexes(ctx, client.Database(), logger); err != nil {
		logger.Fatalw("Failed to create indexes", "error", err)
	}

	fmt.Println("Migration process completed")
}

func printIndexes() {
	indexes := mongo.Indexes()
	collections := lo.Keys(indexes)
	sort.Strings(collections)

	for _, collection := range collections {
		for _, model := range indexes[collection] {
			keys, err := bson.MarshalExtJSON(model.Keys, false, false)
			if err != nil {
				log.Fatalf("Failed to render index keys: %v", err)
			}
			name := ""
			unique := false
			if model.Options != nil {
				name = lo.FromPtr(model.Options.Name)
				unique = lo.FromPtr(model.Options.Unique)
			}
			fmt.Printf("%s\t%s\t%s\tunique=%t\n", collection, name, keys, unique)
		}
	}
}
