package main

import (
	"context"
	"log"
	"net/http"

	"cybertrack/api"
	"cybertrack/config"
	"cybertrack/dedup"
	"cybertrack/ingest"
	"cybertrack/orchestrator"
	"cybertrack/store"
	"cybertrack/types"
)

func main() {
	cfg := config.Load()

	articleStore, err := store.NewRedisStore(store.RedisConfig{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: cfg.RedisKeyPrefix,
	})
	if err != nil {
		log.Fatalf("failed to initialize article store: %v", err)
	}
	defer articleStore.Close()

	engine, err := dedup.NewDeduplicator(articleStore, dedup.Config{
		SimilarityThreshold: cfg.SimilarityThreshold,
		WindowDuration:      cfg.WindowDuration,
		WindowLimit:         cfg.WindowLimit,
		StoreTimeout:        cfg.StoreTimeout,
		Workers:             cfg.Workers,
	})
	if err != nil {
		log.Fatalf("failed to initialize deduplicator: %v", err)
	}

	pipeline := orchestrator.NewPipeline(engine, articleStore, nil, "", "")

	// Optional Kafka source: scraped articles arrive as JSON messages and
	// flow through the same pipeline as the HTTP endpoints.
	if len(cfg.KafkaBrokers) > 0 {
		consumer, err := ingest.NewConsumer(ingest.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
			Handler: func(ctx context.Context, article *types.Article) error {
				_, err := pipeline.ProcessArticle(ctx, article)
				return err
			},
		})
		if err != nil {
			log.Fatalf("failed to initialize Kafka consumer: %v", err)
		}
		defer consumer.Close()

		if err := consumer.Start(context.Background()); err != nil {
			log.Fatalf("failed to start Kafka consumer: %v", err)
		}
	}

	addr := ":" + cfg.Port
	r := api.NewRouter(api.Deps{
		Pipeline: pipeline,
		Articles: articleStore,
		Config:   cfg,
	})

	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET    /api/health")
	log.Println("  POST   /api/deduplication/check")
	log.Println("  POST   /api/deduplication/check-batch")
	log.Println("  POST   /api/deduplication/process")
	log.Println("  GET    /api/deduplication/count")
	log.Println("  DELETE /api/deduplication/clear")
	log.Println("  POST   /api/scrape/run")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
