package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"studytrack/internal/config"
	"studytrack/internal/queue"
	"studytrack/internal/store"
	"studytrack/internal/study"
)

// Worker consumes session-saved messages and re-warms the owner's streak in
// the aggregate cache, so the next streak read is a cache hit. Skipping a
// message is harmless: reads recompute on a cache miss.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	cache := store.NewAggCache(redisClient.Client, cfg.AggCacheTTL)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "studytrack:sessions")
	}

	svc := study.NewService(study.NewRepository(db.Client), cache, nil)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "session.saved" {
			continue
		}
		ownerID := string(msg.Body)
		streak, err := svc.WarmStreak(ctx, ownerID)
		if err != nil {
			log.Printf("warm streak for %s failed: %v", ownerID, err)
			continue
		}
		log.Printf("warmed streak for %s: %d day(s)", ownerID, streak)
	}

	log.Println("worker stopped")
}
